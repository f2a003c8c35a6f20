// Package nodeclient is a typed facade over the JSON HTTP API of the RGB
// lightning node daemon.
//
// Methods never retry and never cache authentication state. A non-2xx
// response is mapped onto the walleterr kinds so that callers can decide
// how to recover.
package nodeclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/lock"
	"github.com/pkt-cash/iriswallet/metrics"
	"github.com/pkt-cash/iriswallet/walleterr"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultTransferTimeout = 120 * time.Second
	DefaultUnlockTimeout   = 30 * time.Second
	DefaultRateLimit       = 20
	DefaultBurst           = 10
)

type timeoutClass int

const (
	classRead timeoutClass = iota
	classTransfer
	classUnlock
)

type Config struct {
	BaseURL         string
	ReadTimeout     time.Duration
	TransferTimeout time.Duration
	UnlockTimeout   time.Duration
	// RateLimit is requests per second, 0 means DefaultRateLimit and a
	// negative value disables limiting.
	RateLimit  float64
	Burst      int
	AuthToken  string
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
}

type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *rate.Limiter
	base    lock.GenRwLock[string]
}

func New(cfg Config) *Client {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.TransferTimeout <= 0 {
		cfg.TransferTimeout = DefaultTransferTimeout
	}
	if cfg.UnlockTimeout <= 0 {
		cfg.UnlockTimeout = DefaultUnlockTimeout
	}
	limit := rate.Limit(cfg.RateLimit)
	switch {
	case cfg.RateLimit == 0:
		limit = DefaultRateLimit
	case cfg.RateLimit < 0:
		limit = rate.Inf
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		cfg:     cfg,
		hc:      hc,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		base:    lock.NewGenRwLock(strings.TrimRight(cfg.BaseURL, "/"), "nodeclient.base"),
	}
}

// BaseURL is the endpoint requests currently go to.
func (c *Client) BaseURL() string {
	var out string
	c.base.R(func(s *string) er.R {
		out = *s
		return nil
	})
	return out
}

// SetBaseURL points the client at another daemon, in flight requests are
// not affected.
func (c *Client) SetBaseURL(u string) {
	c.base.W(func(s *string) er.R {
		*s = strings.TrimRight(u, "/")
		return nil
	})
}

func (c *Client) timeout(class timeoutClass) time.Duration {
	switch class {
	case classTransfer:
		return c.cfg.TransferTimeout
	case classUnlock:
		return c.cfg.UnlockTimeout
	}
	return c.cfg.ReadTimeout
}

// ctxErr maps a finished context onto Canceled or Timeout.
func ctxErr(parent, ctx context.Context, endpoint string) er.R {
	if parent.Err() == context.Canceled {
		return walleterr.Canceled.New(endpoint, nil)
	}
	if ctx.Err() == context.DeadlineExceeded || parent.Err() == context.DeadlineExceeded {
		return walleterr.Timeout.New(endpoint+" did not answer in time", nil)
	}
	return nil
}

// rawResponse is the status and body of a completed exchange.
type rawResponse struct {
	status int
	body   []byte
}

func (c *Client) exchange(parent context.Context, class timeoutClass, e Endpoint, req interface{}) (*rawResponse, er.R) {
	if errr := c.limiter.Wait(parent); errr != nil {
		if err := ctxErr(parent, parent, e.Path); err != nil {
			return nil, err
		}
		return nil, walleterr.Timeout.New("rate limit: "+errr.Error(), nil)
	}
	ctx, cancel := context.WithTimeout(parent, c.timeout(class))
	defer cancel()

	var body io.Reader
	if req != nil {
		b, errr := json.Marshal(req)
		if errr != nil {
			return nil, walleterr.Fatal.New("encoding request for "+e.Path, er.E(errr))
		}
		body = bytes.NewReader(b)
	} else if e.Method == http.MethodPost {
		body = strings.NewReader("{}")
	}
	hreq, err := c.newRequest(ctx, e, body)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, errr := c.hc.Do(hreq)
	if errr != nil {
		if err := ctxErr(parent, ctx, e.Path); err != nil {
			c.cfg.Metrics.NodeRequest(e.Path, "canceled")
			return nil, err
		}
		c.cfg.Metrics.NodeRequest(e.Path, "unreachable")
		return nil, walleterr.NodeUnreachable.New(errr.Error(), nil)
	}
	defer resp.Body.Close()
	b, errr := io.ReadAll(resp.Body)
	if errr != nil {
		if err := ctxErr(parent, ctx, e.Path); err != nil {
			return nil, err
		}
		return nil, walleterr.NodeUnreachable.New("reading response: "+errr.Error(), nil)
	}
	log.Tracef("%s %s -> %d in %s", e.Method, e.Path, resp.StatusCode, time.Since(start))
	return &rawResponse{status: resp.StatusCode, body: b}, nil
}

func (c *Client) newRequest(ctx context.Context, e Endpoint, body io.Reader) (*http.Request, er.R) {
	hreq, errr := http.NewRequestWithContext(ctx, e.Method, c.BaseURL()+e.Path, body)
	if errr != nil {
		return nil, walleterr.InputInvalid.New("bad node endpoint ["+c.BaseURL()+"]", er.E(errr))
	}
	if body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.AuthToken != "" {
		hreq.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	}
	return hreq, nil
}

// NewProbeRequest builds GET /nodeinfo for callers which poll the node
// with their own HTTP client.
func (c *Client) NewProbeRequest(ctx context.Context) (*http.Request, er.R) {
	return c.newRequest(ctx, EpNodeInfo, nil)
}

func (c *Client) call(ctx context.Context, class timeoutClass, e Endpoint, req, resp interface{}) er.R {
	raw, err := c.exchange(ctx, class, e, req)
	if err != nil {
		return err
	}
	if raw.status < 200 || raw.status > 299 {
		c.cfg.Metrics.NodeRequest(e.Path, "error")
		return errorFromResponse(raw.status, raw.body, e.Path)
	}
	c.cfg.Metrics.NodeRequest(e.Path, "ok")
	if resp == nil || len(bytes.TrimSpace(raw.body)) == 0 {
		return nil
	}
	if errr := json.Unmarshal(raw.body, resp); errr != nil {
		return walleterr.Fatal.New("malformed response from "+e.Path, er.E(errr))
	}
	return nil
}
