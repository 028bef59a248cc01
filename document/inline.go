package document

import (
	"slices"
	"unicode/utf8"
)

// Inline is content inside a block: a *Text run or an *Embed.
type Inline interface {
	// Len is the number of offset units the inline occupies.
	Len() int
	clone() Inline
}

// Style is the character-level styling carried by a text run.
type Style struct {
	Bold       bool
	Italic     bool
	Underline  bool
	FontSize   string
	Color      string
	Background string
	Link       string
}

// IsZero reports whether no styling is set.
func (s Style) IsZero() bool { return s == Style{} }

// Text is a run of uniformly styled characters.
type Text struct {
	Text  string
	Style Style
}

// NewText creates an unstyled run.
func NewText(s string) *Text { return &Text{Text: s} }

func (t *Text) Len() int { return utf8.RuneCountInString(t.Text) }

func (t *Text) clone() Inline {
	c := *t
	return &c
}

// EmbedKind distinguishes images from videos.
type EmbedKind int

const (
	EmbedImage EmbedKind = iota
	EmbedVideo
)

func (k EmbedKind) String() string {
	if k == EmbedVideo {
		return "video"
	}
	return "image"
}

// Provider names a hosted video service whose player is embedded by URL.
type Provider int

const (
	ProviderNone Provider = iota
	ProviderYouTube
	ProviderVimeo
)

func (p Provider) String() string {
	switch p {
	case ProviderYouTube:
		return "youtube"
	case ProviderVimeo:
		return "vimeo"
	default:
		return "direct"
	}
}

// Embed is an image or video placed inline. While Pending it refers to a
// local file that has not been uploaded yet and is never serialized as
// durable content.
type Embed struct {
	ID       string
	Kind     EmbedKind
	Pending  bool
	File     string // local file name while pending
	Source   string // local path while pending, when the file came from disk
	URL      string
	Provider Provider
}

// NewPendingEmbed creates an embed for a local file awaiting upload.
func NewPendingEmbed(kind EmbedKind, file string) *Embed {
	return &Embed{ID: NewID(), Kind: kind, Pending: true, File: file}
}

// NewResolvedEmbed creates an embed backed by a durable URL.
func NewResolvedEmbed(kind EmbedKind, url string, provider Provider) *Embed {
	return &Embed{ID: NewID(), Kind: kind, URL: url, Provider: provider}
}

func (e *Embed) Len() int { return 1 }

func (e *Embed) clone() Inline {
	c := *e
	return &c
}

// Resolve moves the embed to its durable URL.
func (e *Embed) Resolve(url string) {
	e.Pending = false
	e.URL = url
}

// Normalize drops empty text runs and merges neighbours with equal style.
func (b *Block) Normalize() {
	out := b.Inlines[:0]
	for _, in := range b.Inlines {
		t, ok := in.(*Text)
		if ok && t.Text == "" {
			continue
		}
		if ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*Text); ok && prev.Style == t.Style {
				out[len(out)-1] = &Text{Text: prev.Text + t.Text, Style: prev.Style}
				continue
			}
		}
		out = append(out, in)
	}
	clear(b.Inlines[len(out):])
	b.Inlines = out
}

// TextAt returns the text run a caret at off belongs to. With before set
// the run holding the character left of off wins, which is how a caret at
// the end of a bold word keeps typing bold; otherwise the run right of off.
func (b *Block) TextAt(off int, before bool) *Text {
	pos := 0
	var first, last *Text
	for _, in := range b.Inlines {
		n := in.Len()
		t, ok := in.(*Text)
		if ok {
			if first == nil {
				first = t
			}
			last = t
			if before && off > pos && off <= pos+n {
				return t
			}
			if !before && off >= pos && off < pos+n {
				return t
			}
		}
		pos += n
	}
	switch {
	case off <= 0:
		return first
	case off >= pos:
		return last
	}
	return nil
}

// Embeds returns the embeds held by the block.
func (b *Block) Embeds() []*Embed {
	var out []*Embed
	for _, in := range b.Inlines {
		if e, ok := in.(*Embed); ok {
			out = append(out, e)
		}
	}
	return out
}

// splitAt ensures an inline boundary at off and returns the index of the
// first inline starting there.
func (b *Block) splitAt(off int) int {
	pos := 0
	for i, in := range b.Inlines {
		if pos >= off {
			return i
		}
		n := in.Len()
		if off < pos+n {
			t := in.(*Text)
			r := []rune(t.Text)
			k := off - pos
			left := &Text{Text: string(r[:k]), Style: t.Style}
			right := &Text{Text: string(r[k:]), Style: t.Style}
			b.Inlines = slices.Replace(b.Inlines, i, i+1, Inline(left), Inline(right))
			return i + 1
		}
		pos += n
	}
	return len(b.Inlines)
}

// cut removes the inlines between two offsets and returns them.
func (b *Block) cut(from, to int) []Inline {
	if to <= from {
		return nil
	}
	i := b.splitAt(from)
	j := b.splitAt(to)
	removed := slices.Clone(b.Inlines[i:j])
	b.Inlines = slices.Delete(b.Inlines, i, j)
	return removed
}

// insert places inlines at off.
func (b *Block) insert(off int, ins ...Inline) {
	i := b.splitAt(off)
	b.Inlines = slices.Insert(b.Inlines, i, ins...)
}
