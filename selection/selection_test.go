package selection

import (
	"testing"

	"richedit/document"
)

func TestCaptureIgnoresSelectionOutsideSurface(t *testing.T) {
	d := document.New()
	s := &Static{}
	b := NewBridge(s)

	caret := document.Caret(document.Position{Block: d.First().ID})
	s.Select(caret)
	if !b.Capture(d) {
		t.Fatal("expected capture inside surface")
	}

	s.Blur()
	if b.Capture(d) {
		t.Error("capture outside surface should be ignored")
	}
	got, ok := b.Last()
	if !ok || got != caret {
		t.Errorf("stored selection changed: %+v", got)
	}
}

func TestCaptureIgnoresUnknownBlocks(t *testing.T) {
	d := document.New()
	s := &Static{}
	b := NewBridge(s)
	s.Select(document.Caret(document.Position{Block: "elsewhere"}))
	if b.Capture(d) {
		t.Error("selection in unknown block should not be stored")
	}
}

func TestCaptureClampsOffsets(t *testing.T) {
	d := &document.Document{Nodes: []document.Node{document.NewParagraph(document.NewText("abc"))}}
	s := &Static{}
	b := NewBridge(s)
	s.Select(document.Caret(document.Position{Block: d.First().ID, Offset: 99}))
	b.Capture(d)
	got, _ := b.Last()
	if got.Anchor.Offset != 3 {
		t.Errorf("expected offset clamped to 3, got %d", got.Anchor.Offset)
	}
}

func TestRestoreReappliesSelection(t *testing.T) {
	d := &document.Document{Nodes: []document.Node{document.NewParagraph(document.NewText("hello"))}}
	s := &Static{}
	b := NewBridge(s)

	r := document.Range(document.Position{Block: d.First().ID, Offset: 1}, document.Position{Block: d.First().ID, Offset: 4})
	s.Select(r)
	b.Capture(d)
	s.Blur()

	got, ok := b.Restore()
	if !ok || got != r {
		t.Fatalf("Restore() = %+v, %v", got, ok)
	}
	native, inside := s.Selection()
	if !inside || native != r {
		t.Errorf("surface selection not restored: %+v inside=%v", native, inside)
	}
}

func TestRestoreWithoutCaptureIsNoop(t *testing.T) {
	s := &Static{}
	b := NewBridge(s)
	if _, ok := b.Restore(); ok {
		t.Error("expected no selection")
	}
	if _, inside := s.Selection(); inside {
		t.Error("surface should be untouched")
	}
}

func TestNilSurface(t *testing.T) {
	b := NewBridge(nil)
	if b.Capture(document.New()) {
		t.Error("nil surface cannot capture")
	}
	sel := document.Caret(document.Position{Block: "x"})
	b.Save(sel)
	if got, ok := b.Restore(); !ok || got != sel {
		t.Errorf("saved selection not restored")
	}
	b.Reset()
	if _, ok := b.Restore(); ok {
		t.Error("reset bridge should have no selection")
	}
}
