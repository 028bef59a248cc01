// Package block converts the blocks touched by a selection between
// paragraphs, headings and blockquotes, and handles block alignment and
// the Enter key.
package block

import (
	"errors"
	"fmt"
	"strings"

	"richedit/document"
)

// ErrUnknownFormat is returned for a block format name that is not
// p, h1..h6 or blockquote.
var ErrUnknownFormat = errors.New("unknown block format")

// Format is a target block kind.
type Format struct {
	Kind  document.Kind
	Level int
}

// Paragraph is the default block format.
var Paragraph = Format{Kind: document.KindParagraph}

// Heading returns the format for a heading level.
func Heading(level int) Format {
	return Format{Kind: document.KindHeading, Level: level}
}

// ParseFormat accepts "p", "h1".."h6" and "blockquote", with or without
// angle brackets.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.Trim(strings.TrimSpace(s), "<>"))
	switch name {
	case "p", "paragraph", "div":
		return Paragraph, nil
	case "blockquote", "quote":
		return Format{Kind: document.KindBlockquote}, nil
	}
	if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
		return Heading(int(name[1] - '0')), nil
	}
	return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ensure returns sel when it addresses the document. Otherwise a new
// paragraph is appended and a caret inside it is returned.
func Ensure(d *document.Document, sel document.Selection) document.Selection {
	if d.Contains(sel) {
		return d.Clamp(sel)
	}
	b := document.NewParagraph()
	if last := d.Last(); last != nil && last.IsEmpty() && last.List() == nil {
		b = last
	} else {
		d.Nodes = append(d.Nodes, b)
	}
	return document.Caret(document.Position{Block: b.ID})
}

// Touched returns the leaf blocks covered by the selection.
func Touched(d *document.Document, sel document.Selection) []*document.Block {
	start, end := d.Ordered(sel)
	return d.Between(start, end)
}

// SetKind re-tags every block touched by the selection, keeping inline
// content. Asking for a blockquote toggles it.
func SetKind(d *document.Document, sel document.Selection, f Format) document.Selection {
	if f.Kind == document.KindBlockquote {
		return ToggleBlockquote(d, sel)
	}
	for _, b := range Touched(d, sel) {
		retag(d, b, f)
	}
	return sel
}

// ToggleBlockquote unwraps the touched blocks to paragraphs when the
// anchor is inside a blockquote, and wraps them otherwise.
func ToggleBlockquote(d *document.Document, sel document.Selection) document.Selection {
	f := Format{Kind: document.KindBlockquote}
	if b := d.Block(sel.Anchor.Block); b != nil && b.Kind == document.KindBlockquote {
		f = Paragraph
	}
	for _, b := range Touched(d, sel) {
		retag(d, b, f)
	}
	return sel
}

// Align sets the alignment of the touched blocks. Requesting the
// alignment already active at the anchor resets them to left.
func Align(d *document.Document, sel document.Selection, a document.Align) document.Selection {
	if b := d.Block(sel.Anchor.Block); b != nil && b.Align == a {
		a = document.AlignLeft
	}
	for _, b := range Touched(d, sel) {
		b.Align = a
	}
	return sel
}

// Enter breaks the block at the caret. Inside a heading the heading is
// left intact and a new paragraph follows it; an empty list item leaves
// its list. Any selected content is removed first.
func Enter(d *document.Document, sel document.Selection) document.Selection {
	p := sel.Focus
	if !sel.Collapsed() {
		start, end := d.Ordered(sel)
		p = d.DeleteRange(start, end)
	}
	b := d.Block(p.Block)
	if b == nil {
		return sel
	}
	switch {
	case b.Kind == document.KindHeading:
		nb := document.NewParagraph()
		d.InsertAfter(b, nb)
		return document.Caret(document.Position{Block: nb.ID})
	case b.Kind == document.KindListItem && b.IsEmpty():
		d.Lift(b)
		return document.Caret(document.Position{Block: b.ID})
	}
	nb := d.Split(p)
	return document.Caret(document.Position{Block: nb.ID})
}

func retag(d *document.Document, b *document.Block, f Format) {
	if b.List() != nil {
		d.Lift(b)
	}
	b.Kind = f.Kind
	b.Level = 0
	if f.Kind == document.KindHeading {
		b.Level = min(max(f.Level, 1), 6)
		// Headings carry their own size.
		b.FontSize = ""
	}
}
