package document

// Position is a point inside a leaf block, counted in offset units.
type Position struct {
	Block  string
	Offset int
}

// Selection is an anchor/focus pair. It is collapsed when both are equal.
type Selection struct {
	Anchor Position
	Focus  Position
}

// Caret returns a collapsed selection at p.
func Caret(p Position) Selection {
	return Selection{Anchor: p, Focus: p}
}

// Range returns a selection from start to end.
func Range(start, end Position) Selection {
	return Selection{Anchor: start, Focus: end}
}

// Collapsed reports whether the selection is a caret.
func (s Selection) Collapsed() bool { return s.Anchor == s.Focus }

// Start returns the position at the very beginning of the document.
func (d *Document) Start() Position {
	return Position{Block: d.First().ID}
}

// End returns the position at the very end of the document.
func (d *Document) End() Position {
	b := d.Last()
	return Position{Block: b.ID, Offset: b.Len()}
}

// SelectAll returns a selection covering the whole document.
func (d *Document) SelectAll() Selection {
	return Range(d.Start(), d.End())
}

// Contains reports whether both ends of s address existing blocks.
func (d *Document) Contains(s Selection) bool {
	return d.Block(s.Anchor.Block) != nil && d.Block(s.Focus.Block) != nil
}

// Clamp keeps offsets within their blocks. Positions in missing blocks
// move to the end of the document.
func (d *Document) Clamp(s Selection) Selection {
	return Selection{Anchor: d.clampPos(s.Anchor), Focus: d.clampPos(s.Focus)}
}

func (d *Document) clampPos(p Position) Position {
	b := d.Block(p.Block)
	if b == nil {
		return d.End()
	}
	p.Offset = min(max(p.Offset, 0), b.Len())
	return p
}

// Compare orders two positions: -1 when a is before b, 0 when equal, 1
// when after. Positions in unknown blocks sort last.
func (d *Document) Compare(a, b Position) int {
	if a.Block == b.Block {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	}
	for _, blk := range d.Blocks() {
		switch blk.ID {
		case a.Block:
			return -1
		case b.Block:
			return 1
		}
	}
	return 0
}

// Ordered returns the selection's ends in document order.
func (d *Document) Ordered(s Selection) (start, end Position) {
	if d.Compare(s.Anchor, s.Focus) > 0 {
		return s.Focus, s.Anchor
	}
	return s.Anchor, s.Focus
}

// Between returns the leaf blocks from the one holding start to the one
// holding end, inclusive.
func (d *Document) Between(start, end Position) []*Block {
	var out []*Block
	in := false
	for _, b := range d.Blocks() {
		if b.ID == start.Block {
			in = true
		}
		if in {
			out = append(out, b)
		}
		if b.ID == end.Block && in {
			break
		}
	}
	return out
}

// Before returns the leaf preceding b, or nil.
func (d *Document) Before(b *Block) *Block {
	var prev *Block
	for _, c := range d.Blocks() {
		if c == b {
			return prev
		}
		prev = c
	}
	return nil
}

// After returns the leaf following b, or nil.
func (d *Document) After(b *Block) *Block {
	blocks := d.Blocks()
	for i, c := range blocks {
		if c == b && i+1 < len(blocks) {
			return blocks[i+1]
		}
	}
	return nil
}
