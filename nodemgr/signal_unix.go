//go:build !windows

package nodemgr

import (
	"os"

	"github.com/pkt-cash/iriswallet/er"
	"golang.org/x/sys/unix"
)

func terminate(p *os.Process) er.R {
	return er.E(p.Signal(unix.SIGTERM))
}
