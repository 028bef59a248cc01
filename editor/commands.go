package editor

import (
	"strings"

	"richedit/block"
	"richedit/document"
	"richedit/inline"
	"richedit/list"
	"richedit/media"
)

// call carries one command execution.
type call struct {
	doc  *document.Document
	sel  document.Selection
	args []string

	changed    bool // the document was modified
	record     bool // the change is recorded for undo
	keepTyping bool // the armed typing style survives the command
}

func (c *call) arg(i int) (string, error) {
	if i >= len(c.args) || strings.TrimSpace(c.args[i]) == "" {
		return "", ErrMissingArgument
	}
	return strings.TrimSpace(c.args[i]), nil
}

// ensure places the selection inside a block, creating one when the
// selection addresses none.
func (c *call) ensure() {
	c.sel = block.Ensure(c.doc, c.sel)
}

type handler func(e *Editor, c *call) error

var commands = map[string]handler{
	"bold":      toggle(inline.Bold),
	"italic":    toggle(inline.Italic),
	"underline": toggle(inline.Underline),

	"formatBlock":   formatBlock,
	"blockquote":    blockquote,
	"justifyLeft":   justify(document.AlignLeft),
	"justifyCenter": justify(document.AlignCenter),
	"justifyRight":  justify(document.AlignRight),

	"insertOrderedList":   toggleList(document.Ordered),
	"insertUnorderedList": toggleList(document.Unordered),

	"fontSize":     fontSize,
	"foreColor":    color(inline.SetColor, func(s *document.Style, v string) { s.Color = v }),
	"hiliteColor":  color(inline.SetBackground, func(s *document.Style, v string) { s.Background = v }),
	"createLink":   createLink,
	"unlink":       unlink,
	"removeFormat": removeFormat,

	"insertImage": insertURL(document.EmbedImage),
	"insertVideo": insertURL(document.EmbedVideo),

	"insertText":      insertText,
	"insertParagraph": insertParagraph,
	"delete":          deleteBackward,
	"forwardDelete":   deleteForward,
	"selectAll":       selectAll,

	"undo": undo,
	"redo": redo,
}

func toggle(f inline.Flag) handler {
	return func(e *Editor, c *call) error {
		if inline.Toggle(c.doc, c.sel, f) {
			c.changed = true
			return nil
		}
		st := e.caretStyle(c.sel)
		f.Set(&st, !f.Get(st))
		e.arm(c, st)
		return nil
	}
}

func formatBlock(_ *Editor, c *call) error {
	name, err := c.arg(0)
	if err != nil {
		return err
	}
	f, err := block.ParseFormat(name)
	if err != nil {
		return err
	}
	c.ensure()
	c.sel = block.SetKind(c.doc, c.sel, f)
	c.changed = true
	return nil
}

func blockquote(_ *Editor, c *call) error {
	c.ensure()
	c.sel = block.ToggleBlockquote(c.doc, c.sel)
	c.changed = true
	return nil
}

func justify(a document.Align) handler {
	return func(_ *Editor, c *call) error {
		c.ensure()
		c.sel = block.Align(c.doc, c.sel, a)
		c.changed = true
		return nil
	}
}

func toggleList(kind document.ListKind) handler {
	return func(_ *Editor, c *call) error {
		c.ensure()
		c.sel = list.Toggle(c.doc, c.sel, kind)
		c.changed = true
		return nil
	}
}

func fontSize(e *Editor, c *call) error {
	raw, err := c.arg(0)
	if err != nil {
		return err
	}
	size, err := inline.NormalizeSize(raw)
	if err != nil {
		return err
	}
	if c.sel.Collapsed() {
		c.ensure()
		st := e.caretStyle(c.sel)
		st.FontSize = size
		c.sel = inline.ApplyFontSize(c.doc, c.sel, size)
		e.arm(c, st)
	} else {
		c.sel = inline.ApplyFontSize(c.doc, c.sel, size)
	}
	c.changed = true
	return nil
}

func color(apply func(*document.Document, document.Selection, string) bool, set func(*document.Style, string)) handler {
	return func(e *Editor, c *call) error {
		v, err := c.arg(0)
		if err != nil {
			return err
		}
		if apply(c.doc, c.sel, v) {
			c.changed = true
			return nil
		}
		st := e.caretStyle(c.sel)
		set(&st, v)
		e.arm(c, st)
		return nil
	}
}

// createLink links the selected text. With a caret the URL itself is
// inserted as linked text.
func createLink(e *Editor, c *call) error {
	href, err := c.arg(0)
	if err != nil {
		return err
	}
	if inline.SetLink(c.doc, c.sel, href) {
		c.changed = true
		return nil
	}
	st := e.caretStyle(c.sel)
	st.Link = href
	p := c.doc.InsertText(c.sel.Focus, href, &st)
	c.sel = document.Caret(p)
	c.changed = true
	return nil
}

func unlink(e *Editor, c *call) error {
	if inline.SetLink(c.doc, c.sel, "") {
		c.changed = true
		return nil
	}
	st := e.caretStyle(c.sel)
	st.Link = ""
	e.arm(c, st)
	return nil
}

func removeFormat(e *Editor, c *call) error {
	if inline.Clear(c.doc, c.sel) {
		c.changed = true
		return nil
	}
	e.arm(c, document.Style{})
	return nil
}

func insertURL(kind document.EmbedKind) handler {
	return func(e *Editor, c *call) error {
		u, err := c.arg(0)
		if err != nil {
			return err
		}
		_, err = e.insertEmbed(c, kind, media.FromURL(u))
		return err
	}
}

// insertText types text at the caret. Line breaks start new blocks the
// way Enter does.
func insertText(e *Editor, c *call) error {
	if len(c.args) == 0 {
		return ErrMissingArgument
	}
	text := strings.Join(c.args, " ")
	collapse(c)

	var style *document.Style
	if e.typing != nil && c.sel.Focus == e.typingAt {
		st := *e.typing
		style = &st
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			c.sel = block.Enter(c.doc, c.sel)
		}
		p := c.doc.InsertText(c.sel.Focus, line, style)
		c.sel = document.Caret(p)
	}
	if style != nil {
		e.typingAt = c.sel.Focus
		c.keepTyping = true
	}
	c.changed = true
	return nil
}

func insertParagraph(_ *Editor, c *call) error {
	c.sel = block.Enter(c.doc, c.sel)
	c.changed = true
	return nil
}

// deleteBackward removes the selection, or the unit before the caret. At
// the start of a list item the item leaves its list; at the start of
// another block the block joins the one before it.
func deleteBackward(_ *Editor, c *call) error {
	if collapse(c) {
		c.changed = true
		return nil
	}
	p := c.sel.Focus
	b := c.doc.Block(p.Block)
	switch {
	case b == nil:
		return nil
	case p.Offset > 0:
		prev := document.Position{Block: b.ID, Offset: p.Offset - 1}
		c.sel = document.Caret(c.doc.DeleteRange(prev, p))
	case b.List() != nil:
		c.doc.Lift(b)
	default:
		prev := c.doc.Before(b)
		if prev == nil {
			return nil
		}
		end := document.Position{Block: prev.ID, Offset: prev.Len()}
		c.sel = document.Caret(c.doc.DeleteRange(end, p))
	}
	c.changed = true
	return nil
}

// deleteForward removes the selection, or the unit after the caret,
// joining the next block at the end of a block.
func deleteForward(_ *Editor, c *call) error {
	if collapse(c) {
		c.changed = true
		return nil
	}
	p := c.sel.Focus
	b := c.doc.Block(p.Block)
	switch {
	case b == nil:
		return nil
	case p.Offset < b.Len():
		c.doc.DeleteRange(p, document.Position{Block: b.ID, Offset: p.Offset + 1})
	default:
		next := c.doc.After(b)
		if next == nil {
			return nil
		}
		c.doc.DeleteRange(p, document.Position{Block: next.ID})
	}
	c.changed = true
	return nil
}

// collapse deletes selected content and reports whether there was any.
func collapse(c *call) bool {
	if c.sel.Collapsed() {
		return false
	}
	start, end := c.doc.Ordered(c.sel)
	c.sel = document.Caret(c.doc.DeleteRange(start, end))
	return true
}

func selectAll(_ *Editor, c *call) error {
	c.sel = c.doc.SelectAll()
	return nil
}

func undo(e *Editor, c *call) error {
	s, ok := e.hist.back(snapshot{doc: e.doc, sel: c.sel})
	if !ok {
		return ErrNothingToUndo
	}
	e.swap(c, s)
	return nil
}

func redo(e *Editor, c *call) error {
	s, ok := e.hist.forward(snapshot{doc: e.doc, sel: c.sel})
	if !ok {
		return ErrNothingToRedo
	}
	e.swap(c, s)
	return nil
}

func (e *Editor) swap(c *call, s snapshot) {
	e.doc = s.doc
	c.doc = s.doc
	c.sel = s.sel
	c.changed = true
	c.record = false
}

// caretStyle is the style text typed at the caret would get.
func (e *Editor) caretStyle(sel document.Selection) document.Style {
	if e.typing != nil && sel.Focus == e.typingAt {
		return *e.typing
	}
	if b := e.doc.Block(sel.Focus.Block); b != nil {
		if t := b.TextAt(sel.Focus.Offset, true); t != nil {
			return t.Style
		}
	}
	return document.Style{}
}

// arm stores a style for the next text typed at the caret.
func (e *Editor) arm(c *call, st document.Style) {
	if !c.sel.Collapsed() {
		return
	}
	e.log.Debug("typing style armed", "err", ErrEmptySelection)
	e.typing = &st
	e.typingAt = c.sel.Focus
	c.keepTyping = true
}
