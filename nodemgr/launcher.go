package nodemgr

import (
	"bufio"
	"io"
	"net"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/walleterr"
)

// StderrLines is how much of the daemon's stderr is kept for a crash report.
const StderrLines = 20

// LaunchSpec is one start of the daemon.
type LaunchSpec struct {
	Dir  string
	Args []string
	// ListenAddr must be free before launching, empty skips the check.
	ListenAddr string
}

// Process is a running daemon.
type Process interface {
	// Terminate asks the process to exit.
	Terminate() er.R
	Kill() er.R
	// Exited is closed once the process is gone.
	Exited() <-chan struct{}
	// ExitCode is valid once Exited is closed.
	ExitCode() int
	StderrTail() []string
}

type Launcher interface {
	Launch(ls LaunchSpec) (Process, er.R)
}

// ExecLauncher runs the daemon binary as a child process.
type ExecLauncher struct {
	Bin string
}

var _ Launcher = (*ExecLauncher)(nil)

// CheckPort fails with ErrPortInUse if addr can not be listened on.
func CheckPort(addr string) er.R {
	l, errr := net.Listen("tcp", addr)
	if errr != nil {
		return walleterr.Fatal.New("cannot listen on ["+addr+"]", ErrPortInUse.New(addr, er.E(errr)))
	}
	l.Close()
	return nil
}

// CheckBinary resolves the daemon binary, it fails with ErrBinaryMissing.
func CheckBinary(name string) (string, er.R) {
	bin, errr := exec.LookPath(name)
	if errr != nil {
		return "", walleterr.Fatal.New("node binary ["+name+"] not found", ErrBinaryMissing.New(name, er.E(errr)))
	}
	return bin, nil
}

func (el *ExecLauncher) Launch(ls LaunchSpec) (Process, er.R) {
	bin, err := CheckBinary(el.Bin)
	if err != nil {
		return nil, err
	}
	if ls.ListenAddr != "" {
		if err := CheckPort(ls.ListenAddr); err != nil {
			return nil, err
		}
	}
	if errr := os.MkdirAll(ls.Dir, 0700); errr != nil {
		return nil, walleterr.Fatal.New("node directory ["+ls.Dir+"] is not writable", er.E(errr))
	}
	cmd := exec.Command(bin, ls.Args...)
	cmd.Dir = ls.Dir
	stdout, errr := cmd.StdoutPipe()
	if errr != nil {
		return nil, walleterr.Fatal.New("node stdout", er.E(errr))
	}
	stderr, errr := cmd.StderrPipe()
	if errr != nil {
		return nil, walleterr.Fatal.New("node stderr", er.E(errr))
	}
	log.Infof("Launching %s %s", bin, strings.Join(ls.Args, " "))
	if errr := cmd.Start(); errr != nil {
		return nil, walleterr.Fatal.New("starting node", er.E(errr))
	}
	p := &execProcess{
		cmd:    cmd,
		exited: make(chan struct{}),
		tail:   doublylinkedlist.New(),
	}
	var wg sync.WaitGroup
	wg.Add(2)
	go p.pump(&wg, stdout, false)
	go p.pump(&wg, stderr, true)
	go func() {
		wg.Wait()
		errr := cmd.Wait()
		code := 0
		if cmd.ProcessState != nil {
			code = cmd.ProcessState.ExitCode()
		}
		if errr != nil {
			log.Debugf("Node process ended: %v", errr)
		}
		p.m.Lock()
		p.code = code
		p.m.Unlock()
		close(p.exited)
	}()
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	exited chan struct{}

	m    sync.Mutex
	code int
	tail *doublylinkedlist.List
}

func (p *execProcess) pump(wg *sync.WaitGroup, r io.Reader, isStderr bool) {
	defer wg.Done()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !isStderr {
			log.Tracef("node: %s", line)
			continue
		}
		log.Debugf("node: %s", line)
		p.m.Lock()
		p.tail.Append(line)
		for p.tail.Size() > StderrLines {
			p.tail.Remove(0)
		}
		p.m.Unlock()
	}
}

func (p *execProcess) Terminate() er.R {
	select {
	case <-p.exited:
		return nil
	default:
	}
	return terminate(p.cmd.Process)
}

func (p *execProcess) Kill() er.R {
	select {
	case <-p.exited:
		return nil
	default:
	}
	return er.E(p.cmd.Process.Kill())
}

func (p *execProcess) Exited() <-chan struct{} {
	return p.exited
}

func (p *execProcess) ExitCode() int {
	p.m.Lock()
	defer p.m.Unlock()
	return p.code
}

func (p *execProcess) StderrTail() []string {
	p.m.Lock()
	defer p.m.Unlock()
	out := make([]string, 0, p.tail.Size())
	it := p.tail.Iterator()
	for it.Next() {
		out = append(out, it.Value().(string))
	}
	return out
}
