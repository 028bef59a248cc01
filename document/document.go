// Package document defines the block/inline tree edited by the engine.
package document

import (
	"strings"

	"github.com/google/uuid"
)

// Kind identifies the variant of a leaf block.
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
	KindBlockquote
	KindListItem
)

func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindBlockquote:
		return "blockquote"
	case KindListItem:
		return "list-item"
	default:
		return "paragraph"
	}
}

// Align is the horizontal alignment of a block.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseAlign maps a CSS text-align value to an Align.
func ParseAlign(s string) (Align, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "start", "justify":
		return AlignLeft, true
	case "center":
		return AlignCenter, true
	case "right", "end":
		return AlignRight, true
	}
	return AlignLeft, false
}

// ListKind distinguishes bulleted from numbered lists.
type ListKind int

const (
	Unordered ListKind = iota
	Ordered
)

func (k ListKind) String() string {
	if k == Ordered {
		return "ordered"
	}
	return "unordered"
}

// Node is a top-level entry of a Document: either a *Block or a *List.
type Node interface {
	NodeID() string
	isNode()
}

// Block is a leaf structural unit holding inline content.
type Block struct {
	ID       string
	Kind     Kind
	Level    int // heading level 1..6, zero for other kinds
	Align    Align
	FontSize string // size inherited by text typed into the block
	Inlines  []Inline

	owner *List
}

// NewBlock creates an empty block of the given kind.
func NewBlock(kind Kind) *Block {
	return &Block{ID: NewID(), Kind: kind}
}

// NewParagraph creates a paragraph holding the given inlines.
func NewParagraph(inlines ...Inline) *Block {
	b := NewBlock(KindParagraph)
	b.Inlines = inlines
	return b
}

// NewHeading creates a heading of the given level, clamped to 1..6.
func NewHeading(level int, inlines ...Inline) *Block {
	b := NewBlock(KindHeading)
	b.Level = clampLevel(level)
	b.Inlines = inlines
	return b
}

func (b *Block) NodeID() string { return b.ID }
func (*Block) isNode()          {}

// List returns the list owning b, or nil when b is not a list item.
func (b *Block) List() *List { return b.owner }

// Len returns the number of offset units in the block.
func (b *Block) Len() int {
	n := 0
	for _, in := range b.Inlines {
		n += in.Len()
	}
	return n
}

// IsEmpty reports whether the block has no content.
func (b *Block) IsEmpty() bool { return b.Len() == 0 }

// Text returns the block's plain text; embeds contribute nothing.
func (b *Block) Text() string {
	return b.TextRange(0, b.Len())
}

// TextRange returns the plain text between two offsets.
func (b *Block) TextRange(from, to int) string {
	var sb strings.Builder
	pos := 0
	for _, in := range b.Inlines {
		n := in.Len()
		t, ok := in.(*Text)
		if ok && pos+n > from && pos < to {
			r := []rune(t.Text)
			lo, hi := max(from-pos, 0), min(to-pos, n)
			sb.WriteString(string(r[lo:hi]))
		}
		pos += n
	}
	return sb.String()
}

// Tag returns "p", "h1".."h6", "blockquote" or "li".
func (b *Block) Tag() string {
	switch b.Kind {
	case KindHeading:
		return "h" + string(rune('0'+clampLevel(b.Level)))
	case KindBlockquote:
		return "blockquote"
	case KindListItem:
		return "li"
	default:
		return "p"
	}
}

func (b *Block) clone() *Block {
	c := *b
	c.owner = nil
	c.Inlines = make([]Inline, len(b.Inlines))
	for i, in := range b.Inlines {
		c.Inlines[i] = in.clone()
	}
	return &c
}

// List is a container of list items. It only exists while it holds items.
type List struct {
	ID    string
	Kind  ListKind
	Items []*Block
}

// NewList creates a list owning the given items.
func NewList(kind ListKind, items ...*Block) *List {
	l := &List{ID: NewID(), Kind: kind}
	l.Append(items...)
	return l
}

func (l *List) NodeID() string { return l.ID }
func (*List) isNode()          {}

// Append adds items to the end of the list.
func (l *List) Append(items ...*Block) {
	for _, it := range items {
		it.Kind = KindListItem
		it.Level = 0
		it.owner = l
		l.Items = append(l.Items, it)
	}
}

// InsertAfter places item directly after ref, or at the end when ref is
// not part of the list.
func (l *List) InsertAfter(ref, item *Block) {
	i := l.index(ref)
	if i < 0 {
		l.Append(item)
		return
	}
	item.Kind = KindListItem
	item.Level = 0
	item.owner = l
	l.Items = append(l.Items[:i+1], append([]*Block{item}, l.Items[i+1:]...)...)
}

func (l *List) index(b *Block) int {
	for i, it := range l.Items {
		if it == b {
			return i
		}
	}
	return -1
}

// Document is an ordered sequence of blocks and lists. It is never empty.
type Document struct {
	Nodes []Node
}

// New returns a document holding a single empty paragraph.
func New() *Document {
	return &Document{Nodes: []Node{NewParagraph()}}
}

// NewID returns a fresh node identifier.
func NewID() string {
	return uuid.NewString()
}

// Blocks returns every leaf block in document order, list items included.
func (d *Document) Blocks() []*Block {
	var out []*Block
	for _, n := range d.Nodes {
		switch n := n.(type) {
		case *Block:
			out = append(out, n)
		case *List:
			out = append(out, n.Items...)
		}
	}
	return out
}

// Block returns the leaf block with the given ID, or nil.
func (d *Document) Block(id string) *Block {
	for _, b := range d.Blocks() {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// First returns the first leaf block.
func (d *Document) First() *Block {
	blocks := d.Blocks()
	if len(blocks) == 0 {
		return nil
	}
	return blocks[0]
}

// Last returns the last leaf block.
func (d *Document) Last() *Block {
	blocks := d.Blocks()
	if len(blocks) == 0 {
		return nil
	}
	return blocks[len(blocks)-1]
}

// Lists returns the top-level lists in document order.
func (d *Document) Lists() []*List {
	var out []*List
	for _, n := range d.Nodes {
		if l, ok := n.(*List); ok {
			out = append(out, l)
		}
	}
	return out
}

// Clone returns a deep copy that keeps every node ID.
func (d *Document) Clone() *Document {
	c := &Document{Nodes: make([]Node, 0, len(d.Nodes))}
	for _, n := range d.Nodes {
		switch n := n.(type) {
		case *Block:
			c.Nodes = append(c.Nodes, n.clone())
		case *List:
			nl := &List{ID: n.ID, Kind: n.Kind}
			for _, it := range n.Items {
				nl.Append(it.clone())
			}
			c.Nodes = append(c.Nodes, nl)
		}
	}
	return c
}

// Normalize restores the document invariants: empty lists are dropped,
// list items point at their owner, inline runs are merged and at least
// one block remains.
func (d *Document) Normalize() {
	nodes := d.Nodes[:0]
	for _, n := range d.Nodes {
		switch n := n.(type) {
		case *Block:
			n.owner = nil
			if n.Kind == KindListItem {
				n.Kind = KindParagraph
			}
			n.Normalize()
			nodes = append(nodes, n)
		case *List:
			if len(n.Items) == 0 {
				continue
			}
			for _, it := range n.Items {
				it.owner = n
				it.Kind = KindListItem
				it.Normalize()
			}
			nodes = append(nodes, n)
		}
	}
	d.Nodes = nodes
	if len(d.Nodes) == 0 {
		d.Nodes = append(d.Nodes, NewParagraph())
	}
}

// index returns the top-level index of n, or -1.
func (d *Document) index(n Node) int {
	for i, c := range d.Nodes {
		if c == n {
			return i
		}
	}
	return -1
}

func clampLevel(level int) int {
	return min(max(level, 1), 6)
}
