package html

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"richedit/document"
)

// Render serializes the document as HTML. Pending embeds are left out so the
// markup only ever references durable URLs.
func Render(d *document.Document) string {
	var sb strings.Builder
	for _, n := range d.Nodes {
		var el *html.Node
		switch n := n.(type) {
		case *document.Block:
			el = blockNode(n)
		case *document.List:
			el = listNode(n)
		}
		if el == nil {
			continue
		}
		// Rendering into a strings.Builder only fails for malformed trees,
		// which blockNode and listNode never build.
		_ = html.Render(&sb, el)
	}
	return sb.String()
}

func element(a atom.Atom, attr ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attr}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func listNode(l *document.List) *html.Node {
	tag := atom.Ul
	if l.Kind == document.Ordered {
		tag = atom.Ol
	}
	el := element(tag)
	for _, it := range l.Items {
		el.AppendChild(blockNode(it))
	}
	return el
}

func blockNode(b *document.Block) *html.Node {
	el := element(atom.Lookup([]byte(b.Tag())))
	var style []string
	if b.Align != document.AlignLeft {
		style = append(style, "text-align: "+b.Align.String())
	}
	if b.FontSize != "" {
		style = append(style, "font-size: "+b.FontSize)
	}
	if len(style) > 0 {
		el.Attr = append(el.Attr, attr("style", strings.Join(style, "; ")))
	}

	for _, in := range b.Inlines {
		switch in := in.(type) {
		case *document.Text:
			for _, c := range textNodes(in) {
				el.AppendChild(c)
			}
		case *document.Embed:
			if e := embedNode(in); e != nil {
				el.AppendChild(e)
			}
		}
	}

	// A trailing break keeps an empty block or a final line break visible;
	// the parser drops exactly one.
	if b.IsEmpty() || endsWithBreak(b) {
		el.AppendChild(element(atom.Br))
	}
	return el
}

func endsWithBreak(b *document.Block) bool {
	if len(b.Inlines) == 0 {
		return false
	}
	t, ok := b.Inlines[len(b.Inlines)-1].(*document.Text)
	return ok && strings.HasSuffix(t.Text, "\n")
}

// textNodes wraps a run in its style elements, outermost first: link, span,
// strong, em, u. Line breaks become br elements.
func textNodes(t *document.Text) []*html.Node {
	root := &html.Node{Type: html.DocumentNode}
	parent := root
	wrap := func(n *html.Node) {
		parent.AppendChild(n)
		parent = n
	}

	s := t.Style
	if s.Link != "" {
		wrap(element(atom.A, attr("href", s.Link)))
	}
	var css []string
	if s.FontSize != "" {
		css = append(css, "font-size: "+s.FontSize)
	}
	if s.Color != "" {
		css = append(css, "color: "+s.Color)
	}
	if s.Background != "" {
		css = append(css, "background-color: "+s.Background)
	}
	if len(css) > 0 {
		wrap(element(atom.Span, attr("style", strings.Join(css, "; "))))
	}
	if s.Bold {
		wrap(element(atom.Strong))
	}
	if s.Italic {
		wrap(element(atom.Em))
	}
	if s.Underline {
		wrap(element(atom.U))
	}

	for i, line := range strings.Split(t.Text, "\n") {
		if i > 0 {
			parent.AppendChild(element(atom.Br))
		}
		if line != "" {
			parent.AppendChild(&html.Node{Type: html.TextNode, Data: line})
		}
	}

	var out []*html.Node
	for c := root.FirstChild; c != nil; c = root.FirstChild {
		root.RemoveChild(c)
		out = append(out, c)
	}
	return out
}

func embedNode(e *document.Embed) *html.Node {
	if e.Pending || e.URL == "" {
		return nil
	}
	switch {
	case e.Kind == document.EmbedImage:
		return element(atom.Img, attr("src", e.URL))
	case e.Provider != document.ProviderNone:
		return element(atom.Iframe,
			attr("src", e.URL),
			attr("frameborder", "0"),
			attr("allowfullscreen", ""))
	default:
		return element(atom.Video, attr("src", e.URL), attr("controls", ""))
	}
}
