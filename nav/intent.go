package nav

import "github.com/pkt-cash/iriswallet/event"

// Tag routes intents on the bus.
type Tag string

const (
	TagGoTo            Tag = "go_to"
	TagToggleSidebar   Tag = "toggle_sidebar"
	TagShowSuccess     Tag = "show_success"
	TagShowErrorDialog Tag = "show_error_dialog"
	TagLoader          Tag = "loader"
	TagToast           Tag = "toast"
)

// Intent is a request to the navigation controller.
type Intent interface {
	Tag() Tag
}

type Bus = event.Bus[Tag, Intent]

func NewBus(post event.Poster) *Bus {
	return event.NewBus[Tag, Intent](post)
}

// GoTo replaces the current page.
type GoTo struct {
	Page   Page
	Params Params
}

func (GoTo) Tag() Tag { return TagGoTo }

// To is GoTo for pages which take no parameters.
func To(p Page) GoTo { return GoTo{Page: p} }

type ToggleSidebar struct {
	Visible bool
}

func (ToggleSidebar) Tag() Tag { return TagToggleSidebar }

type ShowSuccess struct {
	Params SuccessParams
}

func (ShowSuccess) Tag() Tag { return TagShowSuccess }

// ShowErrorDialog opens the modal error dialog with a link for reporting
// the problem, Then is emitted once the dialog is dismissed.
type ShowErrorDialog struct {
	URL  string
	Text string
	Then Intent
}

func (ShowErrorDialog) Tag() Tag { return TagShowErrorDialog }

type Loader struct {
	Visible bool
	Text    string
}

func (Loader) Tag() Tag { return TagLoader }

type Severity int

const (
	Info Severity = iota
	SuccessSeverity
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case SuccessSeverity:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "info"
}

type Toast struct {
	Severity Severity
	Text     string
}

func (Toast) Tag() Tag { return TagToast }
