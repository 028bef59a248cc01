package inline

import (
	"errors"
	"testing"

	"richedit/document"
)

func single(text string) (*document.Document, *document.Block) {
	b := document.NewParagraph(document.NewText(text))
	return &document.Document{Nodes: []document.Node{b}}, b
}

func span(b *document.Block, from, to int) document.Selection {
	return document.Range(document.Position{Block: b.ID, Offset: from}, document.Position{Block: b.ID, Offset: to})
}

func TestNormalizeSize(t *testing.T) {
	tests := []struct {
		in, want string
		isErr    bool
	}{
		{"18px", "18px", false},
		{" 1.5EM ", "1.5em", false},
		{"3", "16px", false},
		{"20", "20px", false},
		{"large", "", true},
		{"12px;color:red", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeSize(tt.in)
		if tt.isErr {
			if !errors.Is(err, ErrInvalidSize) {
				t.Errorf("NormalizeSize(%q) error = %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("NormalizeSize(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestApplyFontSizeWrapsExactlyTheSelection(t *testing.T) {
	d, b := single("hello world")
	sel := span(b, 6, 11)

	got := ApplyFontSize(d, sel, "24px")

	if got != sel {
		t.Errorf("selection changed: %+v", got)
	}
	if len(b.Inlines) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(b.Inlines))
	}
	head, tail := b.Inlines[0].(*document.Text), b.Inlines[1].(*document.Text)
	if head.Text != "hello " || head.Style.FontSize != "" {
		t.Errorf("head run %+v", head)
	}
	if tail.Text != "world" || tail.Style.FontSize != "24px" {
		t.Errorf("tail run %+v", tail)
	}
}

func TestApplyFontSizeAcrossBlocks(t *testing.T) {
	a := document.NewParagraph(document.NewText("first"))
	b := document.NewParagraph(document.NewText("second"))
	d := &document.Document{Nodes: []document.Node{a, b}}

	ApplyFontSize(d, document.Range(document.Position{Block: b.ID, Offset: 3}, document.Position{Block: a.ID, Offset: 2}), "12pt")

	if got := a.Inlines[1].(*document.Text); got.Text != "rst" || got.Style.FontSize != "12pt" {
		t.Errorf("first block tail %+v", got)
	}
	if got := b.Inlines[0].(*document.Text); got.Text != "sec" || got.Style.FontSize != "12pt" {
		t.Errorf("second block head %+v", got)
	}
}

func TestApplyFontSizeCollapsedSetsBlockDefault(t *testing.T) {
	d, b := single("abc")
	ApplyFontSize(d, document.Caret(document.Position{Block: b.ID, Offset: 1}), "20px")
	if b.FontSize != "20px" {
		t.Errorf("block default not set: %q", b.FontSize)
	}
	if got := b.Inlines[0].(*document.Text); got.Style.FontSize != "" {
		t.Errorf("existing text restyled")
	}
}

func TestApplyFontSizeWithoutBlock(t *testing.T) {
	d, _ := single("abc")
	sel := ApplyFontSize(d, document.Caret(document.Position{Block: "gone"}), "30px")
	nb := d.Block(sel.Anchor.Block)
	if nb == nil || nb.FontSize != "30px" || len(d.Nodes) != 2 {
		t.Errorf("expected new sized block, got %+v", nb)
	}
}

func TestToggleBold(t *testing.T) {
	d, b := single("abcdef")

	if !Toggle(d, span(b, 1, 4), Bold) {
		t.Fatal("toggle on range should apply")
	}
	if got := b.Inlines[1].(*document.Text); got.Text != "bcd" || !got.Style.Bold {
		t.Fatalf("middle run %+v", got)
	}
	if !All(d, span(b, 1, 4), Bold) {
		t.Errorf("All should report bold")
	}

	// Partially bold range becomes fully bold.
	Toggle(d, span(b, 0, 4), Bold)
	if !All(d, span(b, 0, 4), Bold) {
		t.Errorf("mixed range should turn bold")
	}

	Toggle(d, span(b, 0, 4), Bold)
	if All(d, span(b, 0, 6), Bold) || len(b.Inlines) != 1 {
		t.Errorf("bold not removed: %+v", b.Inlines)
	}
}

func TestToggleCollapsed(t *testing.T) {
	d, b := single("abc")
	if Toggle(d, document.Caret(document.Position{Block: b.ID, Offset: 1}), Italic) {
		t.Error("collapsed toggle should be left to the caller")
	}
}

func TestLinkColorAndClear(t *testing.T) {
	d, b := single("link")
	sel := span(b, 0, 4)
	SetLink(d, sel, "https://example.com")
	SetColor(d, sel, "#ff0000")
	SetBackground(d, sel, "yellow")
	st := b.Inlines[0].(*document.Text).Style
	if st.Link != "https://example.com" || st.Color != "#ff0000" || st.Background != "yellow" {
		t.Errorf("unexpected style %+v", st)
	}
	Clear(d, sel)
	if !b.Inlines[0].(*document.Text).Style.IsZero() {
		t.Errorf("styles not cleared")
	}
}
