//go:build windows

package nodemgr

import (
	"os"

	"github.com/pkt-cash/iriswallet/er"
)

// There is no SIGTERM to deliver on windows.
func terminate(p *os.Process) er.R {
	return er.E(p.Kill())
}
