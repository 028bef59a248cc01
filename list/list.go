// Package list creates, extends, converts and merges lists.
package list

import (
	"strings"

	"richedit/document"
)

// Toggle applies a list command of the given kind.
//
// A selection spanning several blocks or lines is replaced by a list with
// one item per line. Otherwise the caret decides: inside a list of the
// same kind a new empty item follows the current one, inside a list of
// the other kind the list is converted, and anywhere else a new one-item
// list is placed at the caret.
func Toggle(d *document.Document, sel document.Selection, kind document.ListKind) document.Selection {
	start, end := d.Ordered(sel)
	if !sel.Collapsed() && multiline(d, start, end) {
		return fromLines(d, start, end, kind)
	}

	b := d.Block(start.Block)
	if b == nil {
		return sel
	}
	if l := b.List(); l != nil {
		if l.Kind == kind {
			item := document.NewBlock(document.KindListItem)
			l.InsertAfter(b, item)
			return document.Caret(document.Position{Block: item.ID})
		}
		convert(l, kind)
		return sel
	}

	item := document.NewBlock(document.KindListItem)
	place(d, start, document.NewList(kind, item))
	return document.Caret(document.Position{Block: item.ID})
}

func multiline(d *document.Document, start, end document.Position) bool {
	if start.Block != end.Block {
		return true
	}
	b := d.Block(start.Block)
	return b != nil && strings.Contains(b.TextRange(start.Offset, end.Offset), "\n")
}

// fromLines extracts the selected lines as plain text, deletes the
// selection and inserts a list holding one item per non-blank line.
func fromLines(d *document.Document, start, end document.Position, kind document.ListKind) document.Selection {
	var items []*document.Block
	for _, line := range d.Lines(start, end) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, document.NewParagraph(document.NewText(line)))
	}
	if len(items) == 0 {
		items = append(items, document.NewParagraph())
	}

	p := d.DeleteRange(start, end)
	place(d, p, document.NewList(kind, items...))

	last := items[len(items)-1]
	return document.Caret(document.Position{Block: last.ID, Offset: last.Len()})
}

// convert re-homes every item of l in a container of the other kind,
// keeping item order and content.
func convert(l *document.List, kind document.ListKind) {
	items := l.Items
	l.Items = nil
	l.ID = document.NewID()
	l.Kind = kind
	l.Append(items...)
}

// place inserts n at p. An empty block is replaced; otherwise n goes
// before or after the block, splitting it when p is in the middle.
func place(d *document.Document, p document.Position, n document.Node) {
	b := d.Block(p.Block)
	switch {
	case b == nil:
		d.Nodes = append(d.Nodes, n)
	case b.IsEmpty():
		d.Replace(b, n)
	case p.Offset <= 0:
		d.InsertBefore(b, n)
	case p.Offset >= b.Len():
		d.InsertAfter(b, n)
	default:
		d.Split(p)
		d.InsertAfter(b, n)
	}
}
