// Package instancelock keeps two wallets from running over the same data
// directory.
package instancelock

import (
	"os"
	"path/filepath"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/walleterr"
)

const FileName = ".lock"

type Lock struct {
	path string
	f    *os.File
}

// Acquire takes an exclusive lock on <dataDir>/.lock without blocking. If
// another process holds it, the error is Conflict.
func Acquire(dataDir string) (*Lock, er.R) {
	if errr := os.MkdirAll(dataDir, 0700); errr != nil {
		return nil, walleterr.Fatal.New("data directory ["+dataDir+"] is not writable", er.E(errr))
	}
	path := filepath.Join(dataDir, FileName)
	f, errr := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if errr != nil {
		return nil, walleterr.Fatal.New("data directory ["+dataDir+"] is not writable", er.E(errr))
	}
	held, err := tryLock(f)
	if err != nil {
		f.Close()
		return nil, walleterr.Fatal.New("locking ["+path+"]", err)
	}
	if !held {
		f.Close()
		return nil, walleterr.Conflict.New("another wallet is running on ["+dataDir+"]", nil)
	}
	log.Debugf("Took instance lock [%s]", path)
	return &Lock{path: path, f: f}, nil
}

func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock, it is safe to call more than once.
func (l *Lock) Release() er.R {
	if l == nil || l.f == nil {
		return nil
	}
	err := unlock(l.f)
	if errr := l.f.Close(); err == nil && errr != nil {
		err = er.E(errr)
	}
	l.f = nil
	return err
}
