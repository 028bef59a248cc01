// Package format computes which formats are active at a selection so a
// toolbar can reflect and toggle them.
package format

import "richedit/document"

// State is the set of formatting properties active at a selection.
type State struct {
	Bold      bool
	Italic    bool
	Underline bool
	Align     document.Align

	// Heading is the heading level, zero outside headings.
	Heading int
	// Block is the block tag: "p", "h1".."h6", "blockquote" or "li".
	Block string

	InList     bool
	List       document.ListKind
	Blockquote bool

	FontSize   string
	Color      string
	Background string
	Link       string
}

// Default is the state reported when there is no usable selection.
func Default() State {
	return State{Align: document.AlignLeft, Block: "p"}
}

// Compute inspects the block holding the selection anchor. A collapsed
// selection reads the run left of the caret; a range reads the run right
// of its start.
func Compute(d *document.Document, sel document.Selection) State {
	st := Default()
	if d == nil || !d.Contains(sel) {
		return st
	}

	p := sel.Anchor
	before := true
	if !sel.Collapsed() {
		p, _ = d.Ordered(sel)
		before = false
	}
	b := d.Block(p.Block)

	st.Align = b.Align
	st.Block = b.Tag()
	switch b.Kind {
	case document.KindHeading:
		st.Heading = b.Level
	case document.KindBlockquote:
		st.Blockquote = true
	case document.KindListItem:
		if l := b.List(); l != nil {
			st.InList = true
			st.List = l.Kind
		}
	}

	st.FontSize = b.FontSize
	if t := b.TextAt(p.Offset, before); t != nil {
		s := t.Style
		st.Bold = s.Bold
		st.Italic = s.Italic
		st.Underline = s.Underline
		st.Color = s.Color
		st.Background = s.Background
		st.Link = s.Link
		if s.FontSize != "" {
			st.FontSize = s.FontSize
		}
	}
	return st
}

// Overlay applies a pending typing style on top of the state.
func (st State) Overlay(s document.Style) State {
	st.Bold = s.Bold
	st.Italic = s.Italic
	st.Underline = s.Underline
	if s.FontSize != "" {
		st.FontSize = s.FontSize
	}
	if s.Color != "" {
		st.Color = s.Color
	}
	if s.Background != "" {
		st.Background = s.Background
	}
	st.Link = s.Link
	return st
}

// Active reports whether the named toolbar control should be highlighted.
func (st State) Active(control string) bool {
	switch control {
	case "bold":
		return st.Bold
	case "italic":
		return st.Italic
	case "underline":
		return st.Underline
	case "justifyLeft":
		return st.Align == document.AlignLeft
	case "justifyCenter":
		return st.Align == document.AlignCenter
	case "justifyRight":
		return st.Align == document.AlignRight
	case "insertOrderedList":
		return st.InList && st.List == document.Ordered
	case "insertUnorderedList":
		return st.InList && st.List == document.Unordered
	case "blockquote":
		return st.Blockquote
	case "createLink":
		return st.Link != ""
	}
	return false
}
