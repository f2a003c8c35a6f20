package nav

import "github.com/pkt-cash/iriswallet/er"

// View is a constructed page: the widgets of the shell plus the view-model
// that drives them.
type View interface {
	Page() Page
	// Activate runs once the view is on screen.
	Activate()
	// Cancel stops every task the view-model has in flight.
	Cancel()
	// Dispose detaches every observer, the view is not used afterwards.
	Dispose()
}

// Factory builds the view of one page, params is nil or the page's bundle.
type Factory func(params Params) (View, er.R)

// Frame is what is on screen.
type Frame struct {
	Page           Page
	Params         Params
	SidebarVisible bool
	View           View
}

// Shell is the sink the controller drives. Every method is called on the
// UI loop.
type Shell interface {
	Show(f Frame)
	ToggleSidebar(visible bool)
	// ShowLoader and HideLoader nest, the loader stays up until every
	// ShowLoader got its HideLoader.
	ShowLoader(text string)
	HideLoader()
	ShowToast(s Severity, text string)
	// ShowErrorDialog opens a modal and calls dismissed when it is closed.
	ShowErrorDialog(url, text string, dismissed func())
}
