package document

import (
	"reflect"
	"testing"
)

func paragraphs(texts ...string) *Document {
	d := &Document{}
	for _, s := range texts {
		d.Nodes = append(d.Nodes, NewParagraph(NewText(s)))
	}
	return d
}

func texts(d *Document) []string {
	var out []string
	for _, b := range d.Blocks() {
		out = append(out, b.Text())
	}
	return out
}

func TestNewDocumentHasOneParagraph(t *testing.T) {
	d := New()
	blocks := d.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Kind != KindParagraph {
		t.Errorf("expected paragraph, got %v", blocks[0].Kind)
	}
	if d.End() != (Position{Block: blocks[0].ID}) {
		t.Errorf("unexpected end position %+v", d.End())
	}
}

func TestInsertTextInheritsRunStyle(t *testing.T) {
	b := NewParagraph(&Text{Text: "bold", Style: Style{Bold: true}}, NewText(" plain"))
	d := &Document{Nodes: []Node{b}}

	p := d.InsertText(Position{Block: b.ID, Offset: 4}, "er", nil)
	if p.Offset != 6 {
		t.Errorf("expected offset 6, got %d", p.Offset)
	}
	if b.Text() != "bolder plain" {
		t.Errorf("unexpected text %q", b.Text())
	}
	if len(b.Inlines) != 2 {
		t.Fatalf("expected runs to merge into 2, got %d", len(b.Inlines))
	}
	if got := b.Inlines[0].(*Text); got.Text != "bolder" || !got.Style.Bold {
		t.Errorf("unexpected first run %+v", got)
	}
}

func TestInsertTextWithExplicitStyle(t *testing.T) {
	b := NewParagraph(NewText("ab"))
	d := &Document{Nodes: []Node{b}}
	d.InsertText(Position{Block: b.ID, Offset: 1}, "X", &Style{Italic: true})
	if len(b.Inlines) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(b.Inlines))
	}
	if mid := b.Inlines[1].(*Text); mid.Text != "X" || !mid.Style.Italic {
		t.Errorf("unexpected middle run %+v", mid)
	}
}

func TestDeleteRangeAcrossBlocks(t *testing.T) {
	d := paragraphs("hello", "middle", "world")
	blocks := d.Blocks()

	p := d.DeleteRange(Position{Block: blocks[0].ID, Offset: 2}, Position{Block: blocks[2].ID, Offset: 3})
	if p != (Position{Block: blocks[0].ID, Offset: 2}) {
		t.Errorf("unexpected position %+v", p)
	}
	if got := texts(d); !reflect.DeepEqual(got, []string{"held"}) {
		t.Errorf("expected [held], got %v", got)
	}
}

func TestDeleteRangeReversedPositions(t *testing.T) {
	d := paragraphs("abcdef")
	b := d.First()
	d.DeleteRange(Position{Block: b.ID, Offset: 4}, Position{Block: b.ID, Offset: 1})
	if b.Text() != "aef" {
		t.Errorf("expected aef, got %q", b.Text())
	}
}

func TestSplitKeepsKindAndAlignment(t *testing.T) {
	h := NewHeading(2, NewText("Title"))
	h.Align = AlignCenter
	d := &Document{Nodes: []Node{h}}

	nb := d.Split(Position{Block: h.ID, Offset: 3})
	if h.Text() != "Tit" || nb.Text() != "le" {
		t.Errorf("unexpected split %q / %q", h.Text(), nb.Text())
	}
	if nb.Kind != KindHeading || nb.Level != 2 || nb.Align != AlignCenter {
		t.Errorf("split block lost attributes: %+v", nb)
	}
	if len(d.Nodes) != 2 || d.Nodes[1] != Node(nb) {
		t.Errorf("split block not placed after original")
	}
}

func TestInsertAfterListItemSplitsList(t *testing.T) {
	a, b, c := NewParagraph(NewText("a")), NewParagraph(NewText("b")), NewParagraph(NewText("c"))
	l := NewList(Unordered, a, b, c)
	d := &Document{Nodes: []Node{l}}

	p := NewParagraph(NewText("between"))
	d.InsertAfter(a, p)

	if len(d.Nodes) != 3 {
		t.Fatalf("expected 3 top-level nodes, got %d", len(d.Nodes))
	}
	if first := d.Nodes[0].(*List); len(first.Items) != 1 || first.Items[0] != a {
		t.Errorf("unexpected head list %+v", first.Items)
	}
	if d.Nodes[1] != Node(p) {
		t.Errorf("paragraph not in the middle")
	}
	rest := d.Nodes[2].(*List)
	if len(rest.Items) != 2 || rest.Kind != Unordered || b.List() != rest || c.List() != rest {
		t.Errorf("tail list not rebuilt: %+v", rest)
	}
}

func TestInsertListMergesWithSameKindNeighbours(t *testing.T) {
	a, b := NewParagraph(NewText("a")), NewParagraph(NewText("b"))
	l := NewList(Ordered, a, b)
	d := &Document{Nodes: []Node{l}}

	x := NewParagraph(NewText("x"))
	d.InsertAfter(a, NewList(Ordered, x))

	if len(d.Nodes) != 1 {
		t.Fatalf("expected lists to merge into one, got %d nodes", len(d.Nodes))
	}
	merged := d.Nodes[0].(*List)
	if got := texts(d); !reflect.DeepEqual(got, []string{"a", "x", "b"}) {
		t.Errorf("unexpected order %v", got)
	}
	for _, it := range merged.Items {
		if it.List() != merged {
			t.Errorf("item %q has stale owner", it.Text())
		}
	}
}

func TestInsertListDoesNotMergeOtherKind(t *testing.T) {
	a := NewParagraph(NewText("a"))
	d := &Document{Nodes: []Node{NewList(Ordered, a)}}
	d.InsertAfter(a, NewList(Unordered, NewParagraph(NewText("u"))))
	if len(d.Nodes) != 2 {
		t.Errorf("expected 2 lists, got %d nodes", len(d.Nodes))
	}
}

func TestLiftMiddleItem(t *testing.T) {
	a, b, c := NewParagraph(NewText("a")), NewParagraph(NewText("b")), NewParagraph(NewText("c"))
	d := &Document{Nodes: []Node{NewList(Unordered, a, b, c)}}

	d.Lift(b)

	if len(d.Nodes) != 3 {
		t.Fatalf("expected list/paragraph/list, got %d nodes", len(d.Nodes))
	}
	if b.Kind != KindParagraph || b.List() != nil {
		t.Errorf("lifted block still a list item: %+v", b)
	}
	if got := texts(d); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("unexpected order %v", got)
	}
}

func TestRemoveLastBlockKeepsDocumentNonEmpty(t *testing.T) {
	d := New()
	d.Remove(d.First())
	if len(d.Blocks()) != 1 {
		t.Errorf("expected replacement paragraph, got %d blocks", len(d.Blocks()))
	}
}

func TestNormalizeDropsEmptyLists(t *testing.T) {
	d := &Document{Nodes: []Node{&List{ID: NewID()}, NewParagraph(NewText("x"), NewText("y"))}}
	d.Normalize()
	if len(d.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(d.Nodes))
	}
	if b := d.First(); len(b.Inlines) != 1 || b.Text() != "xy" {
		t.Errorf("runs not merged: %+v", b.Inlines)
	}

	empty := &Document{}
	empty.Normalize()
	if len(empty.Blocks()) != 1 {
		t.Errorf("normalized empty document should hold one block")
	}
}

func TestCloneKeepsIDsAndIsDeep(t *testing.T) {
	e := NewPendingEmbed(EmbedImage, "cat.png")
	b := NewParagraph(NewText("pic "), e)
	d := &Document{Nodes: []Node{b, NewList(Ordered, NewParagraph(NewText("i")))}}

	c := d.Clone()
	if c.First().ID != b.ID {
		t.Errorf("clone changed block ID")
	}
	ce := c.Embed(e.ID)
	if ce == nil || ce == e {
		t.Fatalf("embed not deep-copied")
	}
	ce.Resolve("https://cdn/cat.png")
	if !e.Pending {
		t.Errorf("resolving clone changed the original")
	}
	if c.Lists()[0].Items[0].List() != c.Lists()[0] {
		t.Errorf("cloned item owner not rewired")
	}
}

func TestLinesSplitsBlocksAndBreaks(t *testing.T) {
	d := paragraphs("one\ntwo", "three")
	blocks := d.Blocks()
	got := d.Lines(Position{Block: blocks[0].ID}, Position{Block: blocks[1].ID, Offset: 5})
	if !reflect.DeepEqual(got, []string{"one", "two", "three"}) {
		t.Errorf("unexpected lines %v", got)
	}
}

func TestEachTextSplitsAtBoundaries(t *testing.T) {
	d := paragraphs("abcdef")
	b := d.First()
	d.EachText(Position{Block: b.ID, Offset: 2}, Position{Block: b.ID, Offset: 4}, func(_ *Block, t *Text) {
		t.Style.Bold = true
	})
	if len(b.Inlines) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(b.Inlines))
	}
	if mid := b.Inlines[1].(*Text); mid.Text != "cd" || !mid.Style.Bold {
		t.Errorf("unexpected middle run %+v", mid)
	}
}

func TestTextAt(t *testing.T) {
	b := NewParagraph(&Text{Text: "ab", Style: Style{Bold: true}}, NewText("cd"))
	tests := []struct {
		off    int
		before bool
		bold   bool
	}{
		{0, true, true},
		{2, true, true},
		{2, false, false},
		{4, true, false},
		{4, false, false},
	}
	for _, tt := range tests {
		got := b.TextAt(tt.off, tt.before)
		if got == nil {
			t.Fatalf("TextAt(%d, %v) = nil", tt.off, tt.before)
		}
		if got.Style.Bold != tt.bold {
			t.Errorf("TextAt(%d, %v).Bold = %v, want %v", tt.off, tt.before, got.Style.Bold, tt.bold)
		}
	}
}

func TestCompare(t *testing.T) {
	d := paragraphs("a", "b")
	blocks := d.Blocks()
	a := Position{Block: blocks[0].ID, Offset: 1}
	b := Position{Block: blocks[1].ID}
	if d.Compare(a, b) != -1 || d.Compare(b, a) != 1 || d.Compare(a, a) != 0 {
		t.Errorf("unexpected ordering")
	}
	start, end := d.Ordered(Range(b, a))
	if start != a || end != b {
		t.Errorf("Ordered did not swap ends")
	}
}
