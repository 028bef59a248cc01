// Package html converts documents to and from HTML markup.
package html

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"richedit/document"
	"richedit/inline"
	"richedit/media"
)

// ErrMalformedMarkup is returned for markup that is not valid UTF-8 or that
// the HTML parser rejects.
var ErrMalformedMarkup = errors.New("malformed markup")

// Parse reads HTML into a document. Unknown elements contribute their
// content; nested lists are flattened into their outermost list.
func Parse(r io.Reader) (*document.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading markup: %w", err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrMalformedMarkup)
	}

	doc, err := goquery.NewDocumentFromReader(norm.NFC.Reader(strings.NewReader(string(raw))))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMarkup, err)
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	p := &parser{}
	p.blocks(body.First(), false)
	p.flush()

	d := &document.Document{Nodes: p.nodes}
	d.Normalize()
	return d, nil
}

// ParseString parses HTML from a string.
func ParseString(s string) (*document.Document, error) {
	return Parse(strings.NewReader(s))
}

type parser struct {
	nodes []document.Node
	loose *document.Block // paragraph collecting inline content found between blocks
}

func (p *parser) add(n document.Node) {
	p.flush()
	p.nodes = append(p.nodes, n)
}

func (p *parser) flush() {
	if p.loose == nil {
		return
	}
	finish(p.loose)
	if !p.loose.IsEmpty() {
		p.nodes = append(p.nodes, p.loose)
	}
	p.loose = nil
}

// blocks walks block-level content. Inside a blockquote every paragraph
// becomes a blockquote block.
func (p *parser) blocks(sel *goquery.Selection, quote bool) {
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		n := c.Get(0)
		switch n.Type {
		case html.TextNode:
			if p.loose == nil && strings.TrimSpace(n.Data) == "" {
				return
			}
			p.inlineContent(c, quote)
			return
		case html.ElementNode:
		default:
			return
		}

		switch name := goquery.NodeName(c); name {
		case "script", "style", "head", "template", "noscript":
		case "p", "h1", "h2", "h3", "h4", "h5", "h6":
			b := p.newBlock(name, quote)
			blockStyle(b, c)
			p.inlines(c, b, document.Style{})
			finish(b)
			p.add(b)
		case "blockquote":
			if hasBlocks(c) {
				p.flush()
				p.blocks(c, true)
				p.flush()
				return
			}
			b := document.NewBlock(document.KindBlockquote)
			blockStyle(b, c)
			p.inlines(c, b, document.Style{})
			finish(b)
			p.add(b)
		case "ul", "ol":
			kind := document.Unordered
			if name == "ol" {
				kind = document.Ordered
			}
			l := document.NewList(kind)
			items(c, l)
			if len(l.Items) > 0 {
				p.add(l)
			}
		default:
			if hasBlocks(c) {
				p.flush()
				p.blocks(c, quote)
				p.flush()
				return
			}
			if name == "div" || name == "section" || name == "article" {
				b := p.newBlock("p", quote)
				blockStyle(b, c)
				p.inlines(c, b, document.Style{})
				finish(b)
				p.add(b)
				return
			}
			p.inlineContent(c, quote)
		}
	})
}

func (p *parser) newBlock(tag string, quote bool) *document.Block {
	switch {
	case len(tag) == 2 && tag[0] == 'h':
		return document.NewHeading(int(tag[1] - '0'))
	case quote:
		return document.NewBlock(document.KindBlockquote)
	default:
		return document.NewParagraph()
	}
}

// inlineContent adds loose inline content to the pending paragraph.
func (p *parser) inlineContent(c *goquery.Selection, quote bool) {
	if p.loose == nil {
		p.loose = p.newBlock("p", quote)
	}
	p.inline(c, p.loose, document.Style{})
}

func (p *parser) inlines(sel *goquery.Selection, b *document.Block, st document.Style) {
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		p.inline(c, b, st)
	})
}

func (p *parser) inline(c *goquery.Selection, b *document.Block, st document.Style) {
	n := c.Get(0)
	switch n.Type {
	case html.TextNode:
		s := collapse(n.Data)
		if s != "" {
			b.Inlines = append(b.Inlines, &document.Text{Text: s, Style: st})
		}
		return
	case html.ElementNode:
	default:
		return
	}

	switch goquery.NodeName(c) {
	case "script", "style", "template", "noscript", "ul", "ol":
		return
	case "br":
		b.Inlines = append(b.Inlines, &document.Text{Text: "\n", Style: st})
		return
	case "img":
		if src, ok := c.Attr("src"); ok && src != "" {
			b.Inlines = append(b.Inlines, document.NewResolvedEmbed(document.EmbedImage, src, document.ProviderNone))
		}
		return
	case "iframe", "video":
		src, _ := c.Attr("src")
		if src == "" {
			src, _ = c.Find("source").Attr("src")
		}
		if src != "" {
			u, provider := media.VideoURL(src)
			b.Inlines = append(b.Inlines, document.NewResolvedEmbed(document.EmbedVideo, u, provider))
		}
		return
	case "strong", "b":
		st.Bold = true
	case "em", "i":
		st.Italic = true
	case "u", "ins":
		st.Underline = true
	case "a":
		if href, ok := c.Attr("href"); ok {
			st.Link = href
		}
	}
	st = inlineStyle(st, c)
	p.inlines(c, b, st)
}

// items appends every li below sel to l. Items of nested lists follow their
// parent item.
func items(sel *goquery.Selection, l *document.List) {
	sel.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		it := document.NewBlock(document.KindListItem)
		blockStyle(it, li)
		var p parser
		li.Contents().Each(func(_ int, c *goquery.Selection) {
			p.inline(c, it, document.Style{})
		})
		finish(it)
		l.Append(it)
		li.Find("ul, ol").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.ParentsFiltered("li").First().IsSelection(li)
		}).Each(func(_ int, nested *goquery.Selection) {
			items(nested, l)
		})
	})
}

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"header": true, "footer": true, "blockquote": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

func hasBlocks(sel *goquery.Selection) bool {
	found := false
	sel.Children().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		found = blockTags[goquery.NodeName(c)]
		return !found
	})
	return found
}

// finish trims the collapsed whitespace at the block edges, drops one
// trailing line break and merges runs.
func finish(b *document.Block) {
	b.Normalize()
	if len(b.Inlines) == 0 {
		return
	}
	if t, ok := b.Inlines[0].(*document.Text); ok {
		t.Text = strings.TrimLeft(t.Text, " ")
	}
	if t, ok := b.Inlines[len(b.Inlines)-1].(*document.Text); ok {
		t.Text = strings.TrimRight(t.Text, " ")
		t.Text = strings.TrimSuffix(t.Text, "\n")
	}
	b.Normalize()
}

func collapse(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
		default:
			sb.WriteRune(r)
			space = false
		}
	}
	return sb.String()
}

func styleAttr(sel *goquery.Selection) map[string]string {
	raw, ok := sel.Attr("style")
	if !ok {
		return nil
	}
	out := make(map[string]string)
	for _, decl := range strings.Split(raw, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

func blockStyle(b *document.Block, sel *goquery.Selection) {
	css := styleAttr(sel)
	if a, ok := document.ParseAlign(css["text-align"]); ok {
		b.Align = a
	}
	if v, _ := sel.Attr("align"); v != "" {
		if a, ok := document.ParseAlign(v); ok {
			b.Align = a
		}
	}
	if size, err := inline.NormalizeSize(css["font-size"]); err == nil && b.Kind != document.KindHeading {
		b.FontSize = size
	}
}

func inlineStyle(st document.Style, sel *goquery.Selection) document.Style {
	css := styleAttr(sel)
	if css == nil {
		return st
	}
	if size, err := inline.NormalizeSize(css["font-size"]); err == nil {
		st.FontSize = size
	}
	if v := css["color"]; v != "" {
		st.Color = v
	}
	if v := css["background-color"]; v != "" {
		st.Background = v
	} else if v := css["background"]; v != "" {
		st.Background = v
	}
	switch css["font-weight"] {
	case "bold", "bolder", "600", "700", "800", "900":
		st.Bold = true
	}
	if css["font-style"] == "italic" {
		st.Italic = true
	}
	if strings.Contains(css["text-decoration"], "underline") {
		st.Underline = true
	}
	return st
}
