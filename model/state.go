package model

// NodeState is the lifecycle state of the node daemon.
type NodeState int

const (
	NodeStopped NodeState = iota
	NodeStarting
	NodeInitializing
	NodeLocked
	NodeUnlocking
	NodeSyncing
	NodeReady
	NodeError
	NodeStopping
)

var nodeStateNames = [...]string{
	NodeStopped:      "stopped",
	NodeStarting:     "starting",
	NodeInitializing: "initializing",
	NodeLocked:       "locked",
	NodeUnlocking:    "unlocking",
	NodeSyncing:      "syncing",
	NodeReady:        "ready",
	NodeError:        "error",
	NodeStopping:     "stopping",
}

func (s NodeState) String() string {
	if int(s) >= 0 && int(s) < len(nodeStateNames) {
		return nodeStateNames[s]
	}
	return "unknown"
}

// Reachable is true for states where the daemon answers HTTP requests.
func (s NodeState) Reachable() bool {
	switch s {
	case NodeInitializing, NodeLocked, NodeUnlocking, NodeSyncing, NodeReady:
		return true
	}
	return false
}
