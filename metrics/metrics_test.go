package metrics_test

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/pkt-cash/iriswallet/metrics"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNilIsSafe(t *testing.T) {
	var m *metrics.Metrics
	m.TaskQueued(1)
	m.TaskDone("ok", time.Second)
	m.Operation("assets", "get_assets", "ok")
}

func TestCounters(t *testing.T) {
	m := metrics.New()
	m.Operation("assets", "get_assets", "ok")
	m.Operation("assets", "get_assets", "ok")
	m.TaskQueued(3)
	m.TaskQueued(-1)
	require.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("assets", "get_assets", "ok")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.TasksQueued))
}

func TestServe(t *testing.T) {
	m := metrics.New()
	m.SetNodeState(6)
	srv, err := m.Serve("127.0.0.1:0")
	util.RequireNoErr(t, err)
	defer srv.Close()

	resp, errr := http.Get("http://" + srv.Addr + "/metrics")
	require.NoError(t, errr)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, errr := io.ReadAll(resp.Body)
	require.NoError(t, errr)
	require.Contains(t, string(body), "iris_node_state 6")
}
