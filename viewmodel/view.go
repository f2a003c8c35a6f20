package viewmodel

import (
	"github.com/pkt-cash/iriswallet/event"
	"github.com/pkt-cash/iriswallet/nav"
)

// Activator is implemented by view-models which load something as soon as
// their page is on screen.
type Activator interface {
	Activate()
}

// View binds a view-model to its page. The shell keeps its subscriptions
// in Subs, they are dropped when the page is swapped out.
type View struct {
	VM   VM
	Subs event.Subscriptions

	page nav.Page
}

var _ nav.View = (*View)(nil)

func NewView(page nav.Page, vm VM) *View {
	return &View{VM: vm, page: page}
}

func (v *View) Page() nav.Page { return v.page }

func (v *View) Activate() {
	if a, ok := v.VM.(Activator); ok {
		a.Activate()
	}
}

// Cancel stops the work of the view-model.
func (v *View) Cancel() {
	v.VM.Core().Close()
}

// Dispose detaches everything which observes the view-model.
func (v *View) Dispose() {
	v.Subs.CancelAll()
}
