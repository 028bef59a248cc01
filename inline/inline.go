// Package inline applies character-level styling to a selection.
package inline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"richedit/document"
)

// ErrInvalidSize is returned for a font size that is not a CSS length or
// a legacy 1..7 size.
var ErrInvalidSize = errors.New("invalid font size")

// Flag is a boolean text style.
type Flag int

const (
	Bold Flag = iota
	Italic
	Underline
)

func (f Flag) String() string {
	switch f {
	case Italic:
		return "italic"
	case Underline:
		return "underline"
	default:
		return "bold"
	}
}

// Get reads the flag from a style.
func (f Flag) Get(s document.Style) bool {
	switch f {
	case Italic:
		return s.Italic
	case Underline:
		return s.Underline
	default:
		return s.Bold
	}
}

// Set writes the flag into a style.
func (f Flag) Set(s *document.Style, on bool) {
	switch f {
	case Italic:
		s.Italic = on
	case Underline:
		s.Underline = on
	default:
		s.Bold = on
	}
}

var (
	cssLength = regexp.MustCompile(`^\d+(\.\d+)?(px|pt|em|rem|%)$`)
	bareSize  = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// legacySizes maps the 1..7 scale of the font element to CSS sizes.
var legacySizes = map[string]string{
	"1": "10px", "2": "13px", "3": "16px", "4": "18px",
	"5": "24px", "6": "32px", "7": "48px",
}

// NormalizeSize validates a font size. Bare numbers above 7 are pixels.
func NormalizeSize(size string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(size))
	if px, ok := legacySizes[s]; ok {
		return px, nil
	}
	switch {
	case cssLength.MatchString(s):
		return s, nil
	case bareSize.MatchString(s):
		return s + "px", nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSize, size)
}

// ApplyFontSize sets the font size of the selected text, splitting runs at
// the selection ends, and keeps the selection. With a caret the size
// becomes the block default so text typed next inherits it.
func ApplyFontSize(d *document.Document, sel document.Selection, size string) document.Selection {
	if sel.Collapsed() {
		if b := d.Block(sel.Anchor.Block); b != nil {
			b.FontSize = size
			return sel
		}
		b := document.NewParagraph()
		b.FontSize = size
		d.Nodes = append(d.Nodes, b)
		return document.Caret(document.Position{Block: b.ID})
	}
	apply(d, sel, func(s *document.Style) { s.FontSize = size })
	return sel
}

// Toggle flips a boolean style over the selection: it is removed when
// every selected run already has it and set otherwise. It reports false
// for a collapsed selection, leaving the caller to arm a typing style.
func Toggle(d *document.Document, sel document.Selection, f Flag) bool {
	if sel.Collapsed() {
		return false
	}
	on := !All(d, sel, f)
	apply(d, sel, func(s *document.Style) { f.Set(s, on) })
	return true
}

// All reports whether every text run in the selection carries f.
func All(d *document.Document, sel document.Selection, f Flag) bool {
	start, end := d.Ordered(sel)
	all, seen := true, false
	for _, b := range d.Between(start, end) {
		from, to := 0, b.Len()
		if b.ID == start.Block {
			from = start.Offset
		}
		if b.ID == end.Block {
			to = end.Offset
		}
		pos := 0
		for _, in := range b.Inlines {
			n := in.Len()
			if t, ok := in.(*document.Text); ok && pos < to && pos+n > from {
				seen = true
				all = all && f.Get(t.Style)
			}
			pos += n
		}
	}
	return seen && all
}

// SetColor sets the foreground color of the selected text.
func SetColor(d *document.Document, sel document.Selection, color string) bool {
	return applyRange(d, sel, func(s *document.Style) { s.Color = color })
}

// SetBackground sets the background color of the selected text.
func SetBackground(d *document.Document, sel document.Selection, color string) bool {
	return applyRange(d, sel, func(s *document.Style) { s.Background = color })
}

// SetLink points the selected text at href; an empty href removes links.
func SetLink(d *document.Document, sel document.Selection, href string) bool {
	return applyRange(d, sel, func(s *document.Style) { s.Link = href })
}

// Clear removes every inline style from the selected text.
func Clear(d *document.Document, sel document.Selection) bool {
	return applyRange(d, sel, func(s *document.Style) { *s = document.Style{} })
}

func applyRange(d *document.Document, sel document.Selection, fn func(*document.Style)) bool {
	if sel.Collapsed() {
		return false
	}
	apply(d, sel, fn)
	return true
}

func apply(d *document.Document, sel document.Selection, fn func(*document.Style)) {
	start, end := d.Ordered(sel)
	touched := map[*document.Block]bool{}
	d.EachText(start, end, func(b *document.Block, t *document.Text) {
		fn(&t.Style)
		touched[b] = true
	})
	for b := range touched {
		b.Normalize()
	}
}
