// Package nav is the navigation controller: it owns the single page on
// screen and swaps it when an intent asks for another one.
package nav

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/event"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/metrics"
)

var Err = er.NewErrorType("iris.nav")

var (
	ErrUnknownPage    = Err.CodeWithDetail("ErrUnknownPage", "no such page")
	ErrNotRegistered  = Err.CodeWithDetail("ErrNotRegistered", "page has no factory")
	ErrDuplicate      = Err.CodeWithDetail("ErrDuplicate", "page registered twice")
	ErrParamsMismatch = Err.CodeWithDetail("ErrParamsMismatch", "parameters belong to another page")
	ErrFactory        = Err.CodeWithDetail("ErrFactory", "page could not be built")
)

var dump = spew.ConfigState{
	Indent:                  "  ",
	MaxDepth:                3,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

type Controller struct {
	bus       *Bus
	shell     Shell
	metrics   *metrics.Metrics
	factories map[Page]Factory
	cur       Frame
	subs      event.Subscriptions

	handling bool
	pending  []Intent
}

// NewController subscribes to every intent of bus. Nothing is shown until
// the first GoTo.
func NewController(bus *Bus, shell Shell, m *metrics.Metrics) *Controller {
	c := &Controller{
		bus:       bus,
		shell:     shell,
		metrics:   m,
		factories: make(map[Page]Factory),
	}
	c.subs.Add(bus.SubscribeAll(c.Handle))
	return c
}

// Register sets the factory of a page.
func (c *Controller) Register(p Page, f Factory) er.R {
	if !p.Valid() {
		return ErrUnknownPage.New(p.String(), nil)
	}
	if _, ok := c.factories[p]; ok {
		return ErrDuplicate.New(p.String(), nil)
	}
	c.factories[p] = f
	return nil
}

// Missing lists the pages which have no factory.
func (c *Controller) Missing() []Page {
	var out []Page
	for _, p := range Pages() {
		if _, ok := c.factories[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// Current is the frame on screen, its Page is PageNone before the first
// GoTo.
func (c *Controller) Current() Frame {
	return c.cur
}

func (c *Controller) Bus() *Bus {
	return c.bus
}

// Handle processes one intent. Intents emitted while one is being handled
// are processed after it, in order.
func (c *Controller) Handle(i Intent) {
	if c.handling {
		c.pending = append(c.pending, i)
		return
	}
	c.handling = true
	defer func() { c.handling = false }()
	c.handle(i)
	for len(c.pending) > 0 {
		next := c.pending[0]
		c.pending = c.pending[1:]
		c.handle(next)
	}
}

func (c *Controller) handle(i Intent) {
	switch in := i.(type) {
	case GoTo:
		if err := c.goTo(in.Page, in.Params); err != nil {
			log.Errorf("Navigation to [%s] refused: %s", in.Page, err.Message())
		}
	case ToggleSidebar:
		c.cur.SidebarVisible = in.Visible
		c.shell.ToggleSidebar(in.Visible)
	case ShowSuccess:
		if err := c.goTo(Success, in.Params); err != nil {
			log.Errorf("Success page refused: %s", err.Message())
		}
	case ShowErrorDialog:
		then := in.Then
		c.shell.ShowErrorDialog(in.URL, in.Text, func() {
			if then != nil {
				c.Handle(then)
			}
		})
	case Loader:
		if in.Visible {
			c.shell.ShowLoader(in.Text)
		} else {
			c.shell.HideLoader()
		}
	case Toast:
		c.shell.ShowToast(in.Severity, in.Text)
	default:
		log.Errorf("Unknown intent [%T]", i)
	}
}

// goTo builds the new page first, only once it exists is the old one
// canceled, detached and dropped.
func (c *Controller) goTo(p Page, params Params) er.R {
	if !p.Valid() {
		return ErrUnknownPage.New(p.String(), nil)
	}
	f, ok := c.factories[p]
	if !ok {
		return ErrNotRegistered.New(p.String(), nil)
	}
	if params != nil && params.ForPage() != p {
		return ErrParamsMismatch.New(params.ForPage().String()+" for "+p.String(), nil)
	}
	if params != nil {
		log.Debugf("Go to [%s] with %s", p, dump.Sdump(params))
	} else {
		log.Debugf("Go to [%s]", p)
	}
	v, err := f(params)
	if err != nil {
		return ErrFactory.New(p.String(), err)
	}
	if old := c.cur.View; old != nil {
		old.Cancel()
		old.Dispose()
	}
	prevSidebar := c.cur.SidebarVisible
	first := c.cur.Page == PageNone
	c.cur = Frame{
		Page:           p,
		Params:         params,
		SidebarVisible: p.SidebarVisible(),
		View:           v,
	}
	c.metrics.PageSwap(p.String())
	c.shell.Show(c.cur)
	if first || prevSidebar != c.cur.SidebarVisible {
		c.shell.ToggleSidebar(c.cur.SidebarVisible)
	}
	if v != nil {
		v.Activate()
	}
	return nil
}

// Close disposes the current page and leaves the bus.
func (c *Controller) Close() {
	c.subs.CancelAll()
	if v := c.cur.View; v != nil {
		v.Cancel()
		v.Dispose()
	}
	c.cur = Frame{}
}
