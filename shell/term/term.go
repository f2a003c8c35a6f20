// Package term is the terminal view shell. Lists are printed as tables and
// the user drives the page on screen from a prompt.
package term

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/c-bata/go-prompt"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/shell"
	"github.com/pkt-cash/iriswallet/viewmodel"
	"golang.org/x/crypto/ssh/terminal"
)

// Caller runs f on the UI loop and waits for it.
type Caller interface {
	Call(f func())
}

type Config struct {
	// Out defaults to stdout.
	Out io.Writer
	UI  Caller
	Bus *nav.Bus
	// ReadPassword reads a secret without echo, it defaults to the
	// controlling terminal.
	ReadPassword func(label string) (string, er.R)
}

type Shell struct {
	cfg Config

	out     sync.Mutex
	m       sync.Mutex
	frame   nav.Frame
	loader  shell.LoaderCount
	sidebar bool
	dialog  func()
	done    chan struct{}
	once    sync.Once
}

var _ shell.Shell = (*Shell)(nil)

func New(cfg Config) *Shell {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.ReadPassword == nil {
		cfg.ReadPassword = stdinPassword(cfg.Out)
	}
	return &Shell{cfg: cfg, done: make(chan struct{})}
}

func stdinPassword(out io.Writer) func(string) (string, er.R) {
	return func(label string) (string, er.R) {
		fmt.Fprintf(out, "%s: ", label)
		b, errr := terminal.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(out)
		if errr != nil {
			return "", er.E(errr)
		}
		return string(b), nil
	}
}

func (s *Shell) printf(format string, args ...interface{}) {
	s.out.Lock()
	fmt.Fprintf(s.cfg.Out, format, args...)
	s.out.Unlock()
}

// write hands w to f while holding the output, tables are rendered in one
// piece.
func (s *Shell) write(f func(w io.Writer)) {
	s.out.Lock()
	f(s.cfg.Out)
	s.out.Unlock()
}

// Done is closed once the user left the prompt.
func (s *Shell) Done() <-chan struct{} {
	return s.done
}

func (s *Shell) Exit() {
	s.once.Do(func() { close(s.done) })
}

func (s *Shell) current() nav.Frame {
	s.m.Lock()
	defer s.m.Unlock()
	return s.frame
}

func (s *Shell) Show(f nav.Frame) {
	s.m.Lock()
	s.frame = f
	s.m.Unlock()
	s.printf("\n%s== %s ==%s\n", log.Bright, f.Page, log.Reset)
	if v, ok := f.View.(*viewmodel.View); ok {
		attach(s, v)
	}
}

func (s *Shell) ToggleSidebar(visible bool) {
	s.m.Lock()
	changed := s.sidebar != visible
	s.sidebar = visible
	s.m.Unlock()
	if visible && changed {
		tags := make([]string, 0, len(sidebarPages))
		for _, p := range sidebarPages {
			tags = append(tags, p.String())
		}
		s.printf("menu: %s\n", strings.Join(tags, " "))
	}
}

func (s *Shell) ShowLoader(text string) {
	s.m.Lock()
	first := s.loader.Show(text)
	s.m.Unlock()
	if first || text != "" {
		if text == "" {
			text = "Working"
		}
		s.printf("... %s\n", text)
	}
}

func (s *Shell) HideLoader() {
	s.m.Lock()
	s.loader.Hide()
	s.m.Unlock()
}

func (s *Shell) LoaderVisible() bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.loader.Visible()
}

func severityMark(sev nav.Severity) string {
	switch sev {
	case nav.SuccessSeverity:
		return "[ok]"
	case nav.Warning:
		return "[!]"
	case nav.Error:
		return "[error]"
	}
	return "[i]"
}

func (s *Shell) ShowToast(sev nav.Severity, text string) {
	s.printf("%s %s\n", severityMark(sev), text)
}

// ShowErrorDialog prints the error, the dialog stays open until the user
// types ok.
func (s *Shell) ShowErrorDialog(url, text string, dismissed func()) {
	s.m.Lock()
	s.dialog = dismissed
	s.m.Unlock()
	s.printf("%s[error]%s %s\nPlease report it at %s\nType ok to continue.\n", log.Bright, log.Reset, text, url)
}

// dismiss closes the open dialog, on the UI loop.
func (s *Shell) dismiss() bool {
	s.m.Lock()
	f := s.dialog
	s.dialog = nil
	s.m.Unlock()
	if f == nil {
		return false
	}
	f()
	return true
}

func (s *Shell) prefix() (string, bool) {
	p := s.current().Page
	if !p.Valid() {
		return "iris> ", true
	}
	return "iris:" + p.String() + "> ", true
}

// Run reads commands until the user exits, it blocks.
func (s *Shell) Run() {
	defer s.Exit()
	p := prompt.New(
		s.Execute,
		s.Complete,
		prompt.OptionTitle("Iris Wallet"),
		prompt.OptionPrefix("iris> "),
		prompt.OptionLivePrefix(s.prefix),
		prompt.OptionPrefixTextColor(prompt.Yellow),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && isExit(in)
		}),
	)
	p.Run()
}

func isExit(in string) bool {
	in = strings.TrimSpace(in)
	return in == "exit" || in == "quit"
}

// Complete suggests the commands of the page on screen.
func (s *Shell) Complete(d prompt.Document) []prompt.Suggest {
	if strings.Contains(d.TextBeforeCursor(), " ") {
		return nil
	}
	var out []prompt.Suggest
	for _, c := range s.commands() {
		out = append(out, prompt.Suggest{Text: c.name, Description: c.desc})
	}
	return prompt.FilterHasPrefix(out, d.GetWordBeforeCursor(), true)
}

// Execute runs one command line. Secrets are read here, the command itself
// runs on the UI loop.
func (s *Shell) Execute(line string) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return
	}
	if isExit(line) {
		s.Exit()
		return
	}
	var cmd *command
	for _, c := range s.commands() {
		if c.name == args[0] {
			c := c
			cmd = &c
			break
		}
	}
	if cmd == nil {
		s.printf("Unknown command [%s], try help\n", args[0])
		return
	}
	args = args[1:]
	if len(args) < cmd.minArgs {
		s.printf("Usage: %s %s\n", cmd.name, cmd.usage)
		return
	}
	for _, label := range cmd.secrets {
		pw, err := s.cfg.ReadPassword(label)
		if err != nil {
			s.printf("[error] %s\n", err.Message())
			return
		}
		args = append(args, pw)
	}
	var err er.R
	s.cfg.UI.Call(func() { err = cmd.run(s, args) })
	if ErrArgs.Is(err) {
		s.printf("[error] %s\n", err.Message())
	} else if err != nil {
		log.Debugf("Command [%s] failed: %s", cmd.name, err.Message())
	}
}
