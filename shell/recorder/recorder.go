// Package recorder is a view shell which only remembers what it was asked
// to do. Tests assert on it and the headless mode runs on it.
package recorder

import (
	"sync"

	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/shell"
)

type Method string

const (
	Show            Method = "show"
	ToggleSidebar   Method = "toggle_sidebar"
	ShowLoader      Method = "show_loader"
	HideLoader      Method = "hide_loader"
	ShowToast       Method = "show_toast"
	ShowErrorDialog Method = "show_error_dialog"
)

// Call is one recorded call, only the fields of its method are set.
type Call struct {
	Method   Method
	Frame    nav.Frame
	Visible  bool
	Text     string
	Severity nav.Severity
	URL      string
}

type Shell struct {
	// AutoDismiss closes error dialogs as soon as they open.
	AutoDismiss bool

	m       sync.Mutex
	calls   []Call
	loader  shell.LoaderCount
	sidebar bool
	dialogs []func()
}

var _ shell.Shell = (*Shell)(nil)

func New() *Shell {
	return &Shell{}
}

func (s *Shell) add(c Call) {
	s.m.Lock()
	s.calls = append(s.calls, c)
	s.m.Unlock()
}

func (s *Shell) Show(f nav.Frame) {
	log.Debugf("show [%s]", f.Page)
	s.add(Call{Method: Show, Frame: f})
}

func (s *Shell) ToggleSidebar(visible bool) {
	s.m.Lock()
	s.sidebar = visible
	s.m.Unlock()
	s.add(Call{Method: ToggleSidebar, Visible: visible})
}

func (s *Shell) ShowLoader(text string) {
	s.m.Lock()
	s.loader.Show(text)
	s.m.Unlock()
	s.add(Call{Method: ShowLoader, Text: text})
}

func (s *Shell) HideLoader() {
	s.m.Lock()
	s.loader.Hide()
	s.m.Unlock()
	s.add(Call{Method: HideLoader})
}

func (s *Shell) ShowToast(sev nav.Severity, text string) {
	log.Infof("toast %s: %s", sev, text)
	s.add(Call{Method: ShowToast, Severity: sev, Text: text})
}

func (s *Shell) ShowErrorDialog(url, text string, dismissed func()) {
	log.Warnf("error dialog: %s (%s)", text, url)
	s.add(Call{Method: ShowErrorDialog, URL: url, Text: text})
	if s.AutoDismiss {
		dismissed()
		return
	}
	s.m.Lock()
	s.dialogs = append(s.dialogs, dismissed)
	s.m.Unlock()
}

// Dismiss closes the oldest open error dialog. It must be called on the UI
// loop like any user action, it returns false if no dialog is open.
func (s *Shell) Dismiss() bool {
	s.m.Lock()
	if len(s.dialogs) == 0 {
		s.m.Unlock()
		return false
	}
	f := s.dialogs[0]
	s.dialogs = s.dialogs[1:]
	s.m.Unlock()
	f()
	return true
}

func (s *Shell) OpenDialogs() int {
	s.m.Lock()
	defer s.m.Unlock()
	return len(s.dialogs)
}

func (s *Shell) Calls() []Call {
	s.m.Lock()
	defer s.m.Unlock()
	return append([]Call(nil), s.calls...)
}

// Of returns the calls of one method.
func (s *Shell) Of(m Method) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == m {
			out = append(out, c)
		}
	}
	return out
}

// Pages lists the pages shown so far.
func (s *Shell) Pages() []nav.Page {
	var out []nav.Page
	for _, c := range s.Of(Show) {
		out = append(out, c.Frame.Page)
	}
	return out
}

func (s *Shell) Toasts() []string {
	var out []string
	for _, c := range s.Of(ShowToast) {
		out = append(out, c.Text)
	}
	return out
}

func (s *Shell) LoaderVisible() bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.loader.Visible()
}

func (s *Shell) SidebarVisible() bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.sidebar
}

func (s *Shell) Reset() {
	s.m.Lock()
	s.calls = nil
	s.m.Unlock()
}
