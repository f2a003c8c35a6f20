package nodemgr

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/walleterr"
	"github.com/sethgrid/pester"
)

// backoff is base*2^(attempt-1), never more than max.
func backoff(base, max time.Duration) pester.BackoffStrategy {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		d := base
		for i := 1; i < attempt && d < max; i++ {
			d *= 2
		}
		if d > max {
			d = max
		}
		return d
	}
}

type probeResult struct {
	resp *http.Response
	errr error
}

// probe polls GET /nodeinfo until the daemon answers with anything other
// than a transport error or a 5xx, then classifies the answer.
func (m *Manager) probe(ctx context.Context) (nodeclient.ProbeState, er.R) {
	req, err := m.client.NewProbeRequest(ctx)
	if err != nil {
		return 0, err
	}
	pc := pester.NewExtendedClient(&http.Client{Timeout: m.cfg.ProbeTimeout})
	pc.Concurrency = 1
	pc.MaxRetries = m.cfg.StartAttempts
	pc.Backoff = backoff(m.cfg.ProbeBase, m.cfg.ProbeCap)
	pc.KeepLog = true

	ch := make(chan probeResult, 1)
	go func() {
		resp, errr := pc.Do(req)
		ch <- probeResult{resp: resp, errr: errr}
	}()
	var r probeResult
	select {
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.resp != nil {
				r.resp.Body.Close()
			}
		}()
		return 0, walleterr.Canceled.New("readiness probe", nil)
	case r = <-ch:
	}
	if r.errr != nil {
		log.Debugf("Readiness probe log:\n%s", pc.LogString())
		return 0, walleterr.NodeUnreachable.New(
			"node did not answer after "+strconv.Itoa(m.cfg.StartAttempts)+" attempts", er.E(r.errr))
	}
	defer r.resp.Body.Close()
	body, errr := io.ReadAll(r.resp.Body)
	if errr != nil {
		return 0, walleterr.NodeUnreachable.New("reading probe answer", er.E(errr))
	}
	return nodeclient.ClassifyProbe(r.resp.StatusCode, body)
}
