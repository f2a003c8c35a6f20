//go:build !windows

package instancelock

import (
	"os"

	"github.com/pkt-cash/iriswallet/er"
	"golang.org/x/sys/unix"
)

func tryLock(f *os.File) (bool, er.R) {
	errr := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if errr == unix.EWOULDBLOCK {
		return false, nil
	}
	if errr != nil {
		return false, er.E(errr)
	}
	return true, nil
}

func unlock(f *os.File) er.R {
	return er.E(unix.Flock(int(f.Fd()), unix.LOCK_UN))
}
