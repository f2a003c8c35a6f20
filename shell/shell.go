// Package shell holds what every view shell implementation shares.
package shell

import "github.com/pkt-cash/iriswallet/nav"

type Shell = nav.Shell

// LoaderCount is the reference count behind ShowLoader and HideLoader.
// The zero value is hidden.
type LoaderCount struct {
	n    int
	text string
}

// Show returns true when the loader just became visible.
func (lc *LoaderCount) Show(text string) bool {
	lc.n++
	if text != "" {
		lc.text = text
	}
	return lc.n == 1
}

// Hide returns true when the loader just went away. Extra hides are
// ignored.
func (lc *LoaderCount) Hide() bool {
	if lc.n == 0 {
		return false
	}
	lc.n--
	if lc.n == 0 {
		lc.text = ""
		return true
	}
	return false
}

func (lc *LoaderCount) Visible() bool {
	return lc.n > 0
}

// Text is the most recent text of a still visible loader.
func (lc *LoaderCount) Text() string {
	return lc.text
}

func (lc *LoaderCount) Depth() int {
	return lc.n
}
