package document

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// InsertText inserts s at p and returns the position after it. A nil style
// makes the text continue the run the caret sits in.
func (d *Document) InsertText(p Position, s string, style *Style) Position {
	b := d.Block(p.Block)
	if b == nil || s == "" {
		return p
	}
	s = norm.NFC.String(s)
	t := &Text{Text: s}
	if style != nil {
		t.Style = *style
	} else if cur := b.TextAt(p.Offset, true); cur != nil {
		t.Style = cur.Style
	}
	b.insert(p.Offset, t)
	b.Normalize()
	return Position{Block: b.ID, Offset: p.Offset + t.Len()}
}

// InsertInline places a single inline at p and returns the position after it.
func (d *Document) InsertInline(p Position, in Inline) Position {
	b := d.Block(p.Block)
	if b == nil {
		return p
	}
	b.insert(p.Offset, in)
	b.Normalize()
	return Position{Block: b.ID, Offset: p.Offset + in.Len()}
}

// DeleteRange removes the content between two positions. When they sit in
// different blocks the remainder of the last block is joined onto the
// first and every block in between disappears.
func (d *Document) DeleteRange(start, end Position) Position {
	if d.Compare(start, end) > 0 {
		start, end = end, start
	}
	first, last := d.Block(start.Block), d.Block(end.Block)
	if first == nil || last == nil {
		return start
	}
	if first == last {
		first.cut(start.Offset, end.Offset)
		first.Normalize()
		return start
	}
	span := d.Between(start, end)
	first.cut(start.Offset, first.Len())
	tail := last.cut(end.Offset, last.Len())
	for _, b := range span[1:] {
		d.detach(b)
	}
	first.Inlines = append(first.Inlines, tail...)
	first.Normalize()
	return start
}

// Split breaks the block at p. The content right of p moves into a new
// block of the same kind placed directly after, which is returned.
func (d *Document) Split(p Position) *Block {
	b := d.Block(p.Block)
	if b == nil {
		return nil
	}
	nb := &Block{
		ID:       NewID(),
		Kind:     b.Kind,
		Level:    b.Level,
		Align:    b.Align,
		FontSize: b.FontSize,
		Inlines:  b.cut(p.Offset, b.Len()),
	}
	if l := b.owner; l != nil {
		l.InsertAfter(b, nb)
	} else {
		d.insertAt(d.index(b)+1, nb)
	}
	return nb
}

// InsertAfter places n directly after the leaf b. A list holding b is
// split around the insertion point; an inserted list merges with
// neighbouring lists of the same kind.
func (d *Document) InsertAfter(b *Block, n Node) {
	if l := b.owner; l != nil {
		t := d.index(l)
		i := l.index(b)
		if i+1 < len(l.Items) {
			rest := &List{ID: NewID(), Kind: l.Kind}
			rest.Append(l.Items[i+1:]...)
			l.Items = slices.Clip(l.Items[:i+1])
			d.insertAt(t+1, rest)
		}
		d.insertAt(t+1, n)
	} else {
		d.insertAt(d.index(b)+1, n)
	}
	d.mergeAround(n)
}

// InsertBefore places n directly before the leaf b, splitting b's list
// when needed.
func (d *Document) InsertBefore(b *Block, n Node) {
	if l := b.owner; l != nil {
		t := d.index(l)
		i := l.index(b)
		if i > 0 {
			rest := &List{ID: NewID(), Kind: l.Kind}
			rest.Append(l.Items[i:]...)
			l.Items = slices.Clip(l.Items[:i])
			d.insertAt(t+1, rest)
			t++
		}
		d.insertAt(t, n)
	} else {
		d.insertAt(d.index(b), n)
	}
	d.mergeAround(n)
}

// Replace puts n in the place of the leaf b.
func (d *Document) Replace(b *Block, n Node) {
	i := d.detach(b)
	d.insertAt(i, n)
	d.mergeAround(n)
}

// Lift moves a list item out of its list as a paragraph in the same place.
func (d *Document) Lift(b *Block) {
	if b.owner == nil {
		return
	}
	i := d.detach(b)
	b.Kind = KindParagraph
	d.insertAt(i, b)
}

// Remove deletes the leaf b, keeping at least one block in the document.
func (d *Document) Remove(b *Block) {
	d.detach(b)
	if len(d.Nodes) == 0 {
		d.Nodes = append(d.Nodes, NewParagraph())
	}
}

// Lines returns the plain text between two positions, one entry per line.
// Block boundaries and line breaks both end a line.
func (d *Document) Lines(start, end Position) []string {
	if d.Compare(start, end) > 0 {
		start, end = end, start
	}
	var lines []string
	for _, b := range d.Between(start, end) {
		from, to := 0, b.Len()
		if b.ID == start.Block {
			from = start.Offset
		}
		if b.ID == end.Block {
			to = end.Offset
		}
		lines = append(lines, strings.Split(b.TextRange(from, to), "\n")...)
	}
	return lines
}

// EachText calls fn for every text run between two positions after
// splitting runs at the boundaries, so fn sees exactly the covered text.
func (d *Document) EachText(start, end Position, fn func(b *Block, t *Text)) {
	if d.Compare(start, end) > 0 {
		start, end = end, start
	}
	for _, b := range d.Between(start, end) {
		from, to := 0, b.Len()
		if b.ID == start.Block {
			from = start.Offset
		}
		if b.ID == end.Block {
			to = end.Offset
		}
		if to <= from {
			continue
		}
		i := b.splitAt(from)
		j := b.splitAt(to)
		for _, in := range b.Inlines[i:j] {
			if t, ok := in.(*Text); ok {
				fn(b, t)
			}
		}
	}
}

// Embed returns the embed with the given ID, or nil.
func (d *Document) Embed(id string) *Embed {
	for _, b := range d.Blocks() {
		for _, e := range b.Embeds() {
			if e.ID == id {
				return e
			}
		}
	}
	return nil
}

// PendingEmbeds returns embeds still waiting for their upload.
func (d *Document) PendingEmbeds() []*Embed {
	var out []*Embed
	for _, b := range d.Blocks() {
		for _, e := range b.Embeds() {
			if e.Pending {
				out = append(out, e)
			}
		}
	}
	return out
}

// detach unlinks the leaf b and returns the top-level index where a node
// can be inserted in its place. Lists are split or dropped as required.
func (d *Document) detach(b *Block) int {
	l := b.owner
	if l == nil {
		i := d.index(b)
		if i >= 0 {
			d.Nodes = slices.Delete(d.Nodes, i, i+1)
		}
		return max(i, 0)
	}
	b.owner = nil
	t := d.index(l)
	i := l.index(b)
	head := slices.Clone(l.Items[:i])
	tail := slices.Clone(l.Items[i+1:])
	switch {
	case len(head) == 0 && len(tail) == 0:
		d.Nodes = slices.Delete(d.Nodes, t, t+1)
		return t
	case len(head) == 0:
		l.Items = tail
		return t
	case len(tail) == 0:
		l.Items = head
		return t + 1
	}
	l.Items = head
	rest := &List{ID: NewID(), Kind: l.Kind}
	rest.Append(tail...)
	d.insertAt(t+1, rest)
	return t + 1
}

func (d *Document) insertAt(i int, n Node) {
	i = min(max(i, 0), len(d.Nodes))
	d.Nodes = slices.Insert(d.Nodes, i, n)
}

// mergeAround joins a freshly inserted list with adjacent lists of the
// same kind.
func (d *Document) mergeAround(n Node) {
	l, ok := n.(*List)
	if !ok {
		return
	}
	i := d.index(l)
	if i+1 < len(d.Nodes) {
		if next, ok := d.Nodes[i+1].(*List); ok && next.Kind == l.Kind {
			l.Append(next.Items...)
			d.Nodes = slices.Delete(d.Nodes, i+1, i+2)
		}
	}
	if i > 0 {
		if prev, ok := d.Nodes[i-1].(*List); ok && prev.Kind == l.Kind {
			prev.Append(l.Items...)
			d.Nodes = slices.Delete(d.Nodes, i, i+1)
		}
	}
}
