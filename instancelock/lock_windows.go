//go:build windows

package instancelock

import (
	"os"

	"github.com/pkt-cash/iriswallet/er"
	"golang.org/x/sys/windows"
)

func tryLock(f *os.File) (bool, er.R) {
	ol := new(windows.Overlapped)
	errr := windows.LockFileEx(windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY, 0, 1, 0, ol)
	if errr == windows.ERROR_LOCK_VIOLATION {
		return false, nil
	}
	if errr != nil {
		return false, er.E(errr)
	}
	return true, nil
}

func unlock(f *os.File) er.R {
	ol := new(windows.Overlapped)
	return er.E(windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, ol))
}
