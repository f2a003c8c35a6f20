package nodeclient

import (
	"net/http"
	"strconv"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/walleterr"
)

var Err = er.NewErrorType("nodeclient")

// ErrDaemon carries the daemon's error name as its info.
var ErrDaemon = Err.CodeWithDetail("ErrDaemon", "node daemon error")

// Error names of the daemon which mean the node cannot serve right now.
var notReadyNames = map[string]bool{
	"NotInitialized": true,
	"LockedNode":     true,
	"ChangingState":  true,
	"UnlockedNode":   true,
}

// Error names of the daemon which mean the request itself was bad.
var invalidNames = map[string]bool{
	"InvalidAddress":           true,
	"InvalidAmount":            true,
	"InvalidAssetID":           true,
	"InvalidInvoice":           true,
	"InvalidRecipientID":       true,
	"InvalidPeerInfo":          true,
	"InvalidPubkey":            true,
	"InvalidTicker":            true,
	"InvalidName":              true,
	"InvalidPrecision":         true,
	"InvalidDetails":           true,
	"InvalidFeeRate":           true,
	"InvalidChannelID":         true,
	"InvalidPassword":          true,
	"InvalidBackupPath":        true,
	"InvalidTransportEndpoint": true,
	"InvalidSwapString":        true,
	"InvalidRecipientData":     true,
	"InvalidMediaDigest":       true,
}

// Error names which carry an authentication failure whatever the status.
var authNames = map[string]bool{
	"WrongPassword": true,
	"Unauthorized":  true,
}

// errorFromResponse maps a non-2xx answer onto a walleterr kind. The info
// text of the result is the node's own message so it can be shown as is.
func errorFromResponse(status int, body []byte, path string) er.R {
	var resp ErrorResponse
	if len(body) > 0 {
		_ = json.Unmarshal(body, &resp)
	}
	msg := resp.Error
	if msg == "" {
		msg = http.StatusText(status)
	}
	cause := ErrDaemon.New(resp.Name, er.Errorf("%s returned %d: %s", path, status, msg))
	switch {
	case authNames[resp.Name]:
		return walleterr.Unauthorized.New(msg, cause)
	case notReadyNames[resp.Name]:
		return walleterr.NotReady.New(msg, cause)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return walleterr.Unauthorized.New(msg, cause)
	case status == http.StatusServiceUnavailable || status == http.StatusNotFound:
		return walleterr.NotReady.New(msg, cause)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return walleterr.Timeout.New(msg, cause)
	case invalidNames[resp.Name]:
		return walleterr.InputInvalid.New(msg, cause)
	case status == http.StatusBadRequest && resp.Name == "":
		return walleterr.InputInvalid.New(msg, cause)
	case status >= 400 && status < 600:
		return walleterr.Conflict.New(msg, cause)
	}
	return walleterr.Fatal.New("unexpected status "+strconv.Itoa(status)+" from "+path, cause)
}

// DaemonName returns the error name the daemon put in its response, or the
// empty string when r did not come from a daemon response.
func DaemonName(r er.R) string {
	for ; r != nil; r = r.Wrapped0() {
		if er.CodeOf(r) == ErrDaemon {
			return er.Info(r)
		}
	}
	return ""
}
