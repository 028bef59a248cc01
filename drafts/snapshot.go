package drafts

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"richedit/document"
)

// Current schema version - increment when the snapshot format changes
const snapshotSchema uint16 = 1

// ErrSchema is returned for snapshots written by an incompatible version.
var ErrSchema = errors.New("unsupported draft schema")

// snapshot is the stored form of a document. Unlike markup it keeps
// pending embeds, so a draft reopened before its uploads finish loses
// nothing.
type snapshot struct {
	Schema uint16     `msgpack:"schema"`
	Nodes  []nodeData `msgpack:"nodes"`
}

type nodeData struct {
	ID       string      `msgpack:"id"`
	List     bool        `msgpack:"list,omitempty"`
	ListKind uint8       `msgpack:"listKind,omitempty"`
	Block    *blockData  `msgpack:"block,omitempty"`
	Items    []blockData `msgpack:"items,omitempty"`
}

type blockData struct {
	ID       string       `msgpack:"id"`
	Kind     uint8        `msgpack:"kind"`
	Level    uint8        `msgpack:"level,omitempty"`
	Align    uint8        `msgpack:"align,omitempty"`
	FontSize string       `msgpack:"fontSize,omitempty"`
	Inlines  []inlineData `msgpack:"inlines"`
}

type inlineData struct {
	Text  *textData  `msgpack:"text,omitempty"`
	Embed *embedData `msgpack:"embed,omitempty"`
}

type textData struct {
	Text       string `msgpack:"t"`
	Bold       bool   `msgpack:"b,omitempty"`
	Italic     bool   `msgpack:"i,omitempty"`
	Underline  bool   `msgpack:"u,omitempty"`
	FontSize   string `msgpack:"size,omitempty"`
	Color      string `msgpack:"color,omitempty"`
	Background string `msgpack:"bg,omitempty"`
	Link       string `msgpack:"href,omitempty"`
}

type embedData struct {
	ID       string `msgpack:"id"`
	Kind     uint8  `msgpack:"kind"`
	Pending  bool   `msgpack:"pending,omitempty"`
	File     string `msgpack:"file,omitempty"`
	Source   string `msgpack:"source,omitempty"`
	URL      string `msgpack:"url,omitempty"`
	Provider uint8  `msgpack:"provider,omitempty"`
}

// Encode serializes a document, pending embeds included.
func Encode(d *document.Document) ([]byte, error) {
	s := snapshot{Schema: snapshotSchema}
	for _, n := range d.Nodes {
		switch n := n.(type) {
		case *document.Block:
			b := encodeBlock(n)
			s.Nodes = append(s.Nodes, nodeData{ID: n.ID, Block: &b})
		case *document.List:
			nd := nodeData{ID: n.ID, List: true, ListKind: uint8(n.Kind)}
			for _, it := range n.Items {
				nd.Items = append(nd.Items, encodeBlock(it))
			}
			s.Nodes = append(s.Nodes, nd)
		}
	}
	return msgpack.Marshal(&s)
}

func encodeBlock(b *document.Block) blockData {
	bd := blockData{
		ID:       b.ID,
		Kind:     uint8(b.Kind),
		Level:    uint8(b.Level),
		Align:    uint8(b.Align),
		FontSize: b.FontSize,
	}
	for _, in := range b.Inlines {
		switch in := in.(type) {
		case *document.Text:
			st := in.Style
			bd.Inlines = append(bd.Inlines, inlineData{Text: &textData{
				Text:       in.Text,
				Bold:       st.Bold,
				Italic:     st.Italic,
				Underline:  st.Underline,
				FontSize:   st.FontSize,
				Color:      st.Color,
				Background: st.Background,
				Link:       st.Link,
			}})
		case *document.Embed:
			bd.Inlines = append(bd.Inlines, inlineData{Embed: &embedData{
				ID:       in.ID,
				Kind:     uint8(in.Kind),
				Pending:  in.Pending,
				File:     in.File,
				Source:   in.Source,
				URL:      in.URL,
				Provider: uint8(in.Provider),
			}})
		}
	}
	return bd
}

// Decode rebuilds a document from Encode's output. Node and embed IDs are
// preserved so uploads still in flight can patch the reopened document.
func Decode(data []byte) (*document.Document, error) {
	var s snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding draft: %w", err)
	}
	if s.Schema != snapshotSchema {
		return nil, fmt.Errorf("%w: %d", ErrSchema, s.Schema)
	}

	d := &document.Document{}
	for _, nd := range s.Nodes {
		switch {
		case nd.List:
			var items []*document.Block
			for _, bd := range nd.Items {
				items = append(items, decodeBlock(bd))
			}
			if len(items) == 0 {
				continue
			}
			l := document.NewList(document.ListKind(nd.ListKind), items...)
			l.ID = nd.ID
			d.Nodes = append(d.Nodes, l)
		case nd.Block != nil:
			d.Nodes = append(d.Nodes, decodeBlock(*nd.Block))
		}
	}
	d.Normalize()
	return d, nil
}

func decodeBlock(bd blockData) *document.Block {
	b := &document.Block{
		ID:       bd.ID,
		Kind:     document.Kind(bd.Kind),
		Level:    int(bd.Level),
		Align:    document.Align(bd.Align),
		FontSize: bd.FontSize,
	}
	if b.ID == "" {
		b.ID = document.NewID()
	}
	if b.Kind == document.KindHeading {
		b.Level = min(max(b.Level, 1), 6)
	}
	for _, in := range bd.Inlines {
		switch {
		case in.Text != nil:
			t := in.Text
			b.Inlines = append(b.Inlines, &document.Text{
				Text: t.Text,
				Style: document.Style{
					Bold:       t.Bold,
					Italic:     t.Italic,
					Underline:  t.Underline,
					FontSize:   t.FontSize,
					Color:      t.Color,
					Background: t.Background,
					Link:       t.Link,
				},
			})
		case in.Embed != nil:
			e := in.Embed
			b.Inlines = append(b.Inlines, &document.Embed{
				ID:       e.ID,
				Kind:     document.EmbedKind(e.Kind),
				Pending:  e.Pending,
				File:     e.File,
				Source:   e.Source,
				URL:      e.URL,
				Provider: document.Provider(e.Provider),
			})
		}
	}
	return b
}
