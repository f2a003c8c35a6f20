// Package faucet talks to RGB faucets, the services which hand out test
// assets on testnet and regtest.
package faucet

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/walleterr"
	"github.com/sethgrid/pester"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultTimeout = 30 * time.Second
	DefaultRetries = 3
)

// Group is one kind of asset a faucet distributes.
type Group struct {
	Label        string `json:"label"`
	RequestsLeft int    `json:"requests_left"`
}

// Config is what GET /receive/config/<wallet_id> answers.
type Config struct {
	Name   string           `json:"name"`
	Groups map[string]Group `json:"groups"`
}

type Request struct {
	WalletID   string `json:"wallet_id"`
	Invoice    string `json:"invoice"`
	AssetGroup string `json:"asset_group,omitempty"`
}

type Asset struct {
	AssetID string `json:"asset_id"`
	Name    string `json:"name"`
	Amount  uint64 `json:"amount"`
}

type Response struct {
	Asset Asset `json:"asset"`
}

type errorBody struct {
	Error string `json:"error"`
}

type Client struct {
	hc  *http.Client
	get *pester.Client
}

// New creates a client, retries apply to reads only.
func New(timeout time.Duration, retries int) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retries <= 0 {
		retries = DefaultRetries
	}
	hc := &http.Client{Timeout: timeout}
	pc := pester.NewExtendedClient(hc)
	pc.Concurrency = 1
	pc.MaxRetries = retries
	pc.Backoff = pester.ExponentialBackoff
	return &Client{hc: hc, get: pc}
}

func endpoint(base string, parts ...string) (string, er.R) {
	u, errr := url.Parse(strings.TrimRight(base, "/"))
	if errr != nil || u.Host == "" {
		return "", walleterr.InputInvalid.New("url: bad faucet url ["+base+"]", nil)
	}
	for _, p := range parts {
		u.Path += "/" + url.PathEscape(p)
	}
	return u.String(), nil
}

func transportErr(ctx context.Context, errr error) er.R {
	if ctx.Err() == context.Canceled {
		return walleterr.Canceled.New("faucet request", nil)
	}
	if ctx.Err() == context.DeadlineExceeded {
		return walleterr.Timeout.New("faucet did not answer in time", nil)
	}
	return walleterr.NodeUnreachable.New("faucet is unreachable", er.E(errr))
}

func decode(resp *http.Response, v interface{}) er.R {
	defer resp.Body.Close()
	b, errr := io.ReadAll(resp.Body)
	if errr != nil {
		return walleterr.NodeUnreachable.New("reading faucet answer", er.E(errr))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(b, &eb) != nil || eb.Error == "" {
			eb.Error = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode >= 500 {
			return walleterr.NodeUnreachable.New("faucet: "+eb.Error, nil)
		}
		return walleterr.Conflict.New("faucet: "+eb.Error, nil)
	}
	if errr := json.Unmarshal(b, v); errr != nil {
		return walleterr.Conflict.New("faucet sent a malformed answer", er.E(errr))
	}
	return nil
}

// Config lists what the faucet at base distributes to walletID.
func (c *Client) Config(ctx context.Context, base, walletID string) (*Config, er.R) {
	u, err := endpoint(base, "receive", "config", walletID)
	if err != nil {
		return nil, err
	}
	req, errr := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if errr != nil {
		return nil, walleterr.InputInvalid.New("url: "+errr.Error(), nil)
	}
	resp, errr := c.get.Do(req)
	if errr != nil {
		return nil, transportErr(ctx, errr)
	}
	var out Config
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	log.Debugf("Faucet [%s] offers [%d] groups", base, len(out.Groups))
	return &out, nil
}

// Receive asks the faucet to send an asset to invoice. It is never retried.
func (c *Client) Receive(ctx context.Context, base string, r *Request) (*Response, er.R) {
	u, err := endpoint(base, "receive", "asset")
	if err != nil {
		return nil, err
	}
	b, errr := json.Marshal(r)
	if errr != nil {
		return nil, walleterr.Fatal.New("encoding faucet request", er.E(errr))
	}
	req, errr := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if errr != nil {
		return nil, walleterr.InputInvalid.New("url: "+errr.Error(), nil)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, errr := c.hc.Do(req)
	if errr != nil {
		return nil, transportErr(ctx, errr)
	}
	var out Response
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
