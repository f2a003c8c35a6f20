// Package nodetest is a scriptable fake node daemon for tests.
//
// Every route the client knows answers 200 with an empty object until a
// test installs its own handler. Calls are counted per path and the last
// request body of each path is kept.
package nodetest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkt-cash/iriswallet/nodeclient"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Handler answers one request, resp is encoded as JSON.
type Handler func(body []byte) (status int, resp interface{})

type Node struct {
	Server *httptest.Server

	m        sync.Mutex
	handlers map[string]Handler
	calls    map[string]int
	bodies   map[string][]byte
	gates    map[string]chan struct{}
}

// DefaultNodeInfo is what /nodeinfo answers unless overridden.
var DefaultNodeInfo = nodeclient.NodeInfoResponse{
	Pubkey:                   "02" + strings.Repeat("1", 64),
	ChannelCapacityMinSat:    10000,
	ChannelCapacityMaxSat:    500000,
	RgbChannelCapacityMinSat: 30000,
	ChannelAssetMinAmount:    1,
	ChannelAssetMaxAmount:    1000000,
	BlockHeight:              100,
	PeerBestHeight:           100,
}

// New starts the fake node, it is closed when the test ends.
func New(t testing.TB) *Node {
	n := &Node{
		handlers: make(map[string]Handler),
		calls:    make(map[string]int),
		bodies:   make(map[string][]byte),
		gates:    make(map[string]chan struct{}),
	}
	r := mux.NewRouter()
	for _, e := range nodeclient.Endpoints {
		r.HandleFunc(e.Path, n.serve(e.Path)).Methods(e.Method)
	}
	n.Respond(nodeclient.EpNodeInfo.Path, DefaultNodeInfo)
	n.Server = httptest.NewServer(r)
	t.Cleanup(n.Server.Close)
	return n
}

func (n *Node) URL() string {
	return n.Server.URL
}

func (n *Node) serve(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		n.m.Lock()
		n.calls[path]++
		n.bodies[path] = body
		h := n.handlers[path]
		gate := n.gates[path]
		n.m.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		status, resp := http.StatusOK, interface{}(struct{}{})
		if h != nil {
			status, resp = h(body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if resp != nil {
			b, _ := json.Marshal(resp)
			_, _ = w.Write(b)
		}
	}
}

// On installs a handler for path.
func (n *Node) On(path string, h Handler) {
	n.m.Lock()
	n.handlers[path] = h
	n.m.Unlock()
}

// Respond makes path answer 200 with resp.
func (n *Node) Respond(path string, resp interface{}) {
	n.On(path, func([]byte) (int, interface{}) { return http.StatusOK, resp })
}

// Fail makes path answer with the daemon's error body.
func (n *Node) Fail(path string, status int, name, msg string) {
	n.On(path, func([]byte) (int, interface{}) {
		return status, nodeclient.ErrorResponse{Error: msg, Code: status, Name: name}
	})
}

// Gate holds every request to path until the returned function is called.
func (n *Node) Gate(path string) (release func()) {
	ch := make(chan struct{})
	n.m.Lock()
	n.gates[path] = ch
	n.m.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			n.m.Lock()
			delete(n.gates, path)
			n.m.Unlock()
			close(ch)
		})
	}
}

// Calls is how many requests path received.
func (n *Node) Calls(path string) int {
	n.m.Lock()
	defer n.m.Unlock()
	return n.calls[path]
}

// LastBody is the body of the latest request to path.
func (n *Node) LastBody(path string) []byte {
	n.m.Lock()
	defer n.m.Unlock()
	return n.bodies[path]
}

// Decode unmarshals the latest request body of path into v.
func (n *Node) Decode(path string, v interface{}) error {
	return json.Unmarshal(n.LastBody(path), v)
}
