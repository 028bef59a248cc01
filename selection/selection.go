// Package selection keeps the user's selection alive while toolbar controls
// hold input focus.
package selection

import (
	"sync"

	"richedit/document"
)

// Surface is the host's editable surface as seen by the engine.
type Surface interface {
	// Selection returns the native selection and whether its common
	// ancestor lies inside the editable surface.
	Selection() (document.Selection, bool)

	// SetSelection moves the native selection.
	SetSelection(document.Selection)
}

// Bridge caches the last selection made inside the surface so commands
// can restore it after focus moved elsewhere.
type Bridge struct {
	surface Surface
	last    document.Selection
	saved   bool
}

// NewBridge creates a bridge for the given surface. A nil surface is valid
// and makes the bridge rely solely on selections saved by the engine.
func NewBridge(s Surface) *Bridge {
	return &Bridge{surface: s}
}

// Capture stores the native selection when it lies inside the surface and
// addresses blocks of d. Otherwise the stored selection is left untouched.
// It reports whether a new selection was stored.
func (b *Bridge) Capture(d *document.Document) bool {
	if b.surface == nil {
		return false
	}
	sel, inside := b.surface.Selection()
	if !inside || !d.Contains(sel) {
		return false
	}
	b.last = d.Clamp(sel)
	b.saved = true
	return true
}

// Restore re-applies the stored selection to the surface and returns it.
// It is a no-op reporting false when nothing was ever captured.
func (b *Bridge) Restore() (document.Selection, bool) {
	if !b.saved {
		return document.Selection{}, false
	}
	if b.surface != nil {
		b.surface.SetSelection(b.last)
	}
	return b.last, true
}

// Save records a selection produced by the engine itself.
func (b *Bridge) Save(sel document.Selection) {
	b.last = sel
	b.saved = true
}

// Last returns the stored selection without touching the surface.
func (b *Bridge) Last() (document.Selection, bool) {
	return b.last, b.saved
}

// Reset forgets the stored selection.
func (b *Bridge) Reset() {
	b.last = document.Selection{}
	b.saved = false
}

// Static is an in-memory Surface for headless hosts and tests.
type Static struct {
	mu     sync.Mutex
	sel    document.Selection
	inside bool
}

// Selection implements Surface.
func (s *Static) Selection() (document.Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel, s.inside
}

// SetSelection implements Surface. Setting the selection returns focus to
// the surface.
func (s *Static) SetSelection(sel document.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = sel
	s.inside = true
}

// Select places the selection inside the surface, as a user click would.
func (s *Static) Select(sel document.Selection) {
	s.SetSelection(sel)
}

// Blur moves focus out of the surface. The native selection now lives in
// some other control and no longer describes the document.
func (s *Static) Blur() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = document.Selection{}
	s.inside = false
}
