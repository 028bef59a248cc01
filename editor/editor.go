// Package editor is the public surface of the editing engine. It maps
// toolbar commands and keyboard shortcuts to the block, list, inline and
// media engines, keeps the selection alive across focus changes and
// serializes the document for the host after every change.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"richedit/document"
	"richedit/format"
	"richedit/html"
	"richedit/media"
	"richedit/selection"
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing command argument")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNothingToRedo   = errors.New("nothing to redo")
	ErrClosed          = errors.New("editor closed")

	// ErrEmptySelection marks a range command invoked with a caret. It is
	// logged, never returned: the command degrades to caret behaviour.
	ErrEmptySelection = errors.New("empty selection")
)

// Options configures an Editor.
type Options struct {
	// Surface is the host's editable surface. Nil runs the editor headless,
	// driven through Select.
	Surface selection.Surface

	// Media configures validation and the upload capability.
	Media media.Options

	// DefaultFontSize is reported by State when no size applies.
	DefaultFontSize string

	// HistoryLimit bounds the undo stack; zero keeps every step.
	HistoryLimit int

	// Keys maps chords such as "ctrl+b" to command lines such as "bold"
	// or "formatBlock p". Nil uses DefaultKeys.
	Keys map[string]string

	// OnError receives asynchronous failures such as uploads.
	OnError func(error)

	// PromptLink asks the user for a link target when createLink is
	// triggered from the keyboard.
	PromptLink func() (string, bool)

	Logger *slog.Logger
}

// Editor owns one document and its editing state. It is safe for use from
// multiple goroutines; callbacks run without the editor lock held.
type Editor struct {
	mu     sync.Mutex
	doc    *document.Document
	bridge *selection.Bridge
	media  *media.Pipeline
	hist   history
	opts   Options
	keys   map[string]string
	log    *slog.Logger

	// typing is the style armed for the next insertText at typingAt.
	typing   *document.Style
	typingAt document.Position

	markup    string
	state     format.State
	stale     bool
	listeners []func(string)
	closed    bool
}

// New creates an editor holding an empty document.
func New(opts Options) *Editor {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Media.Logger == nil {
		opts.Media.Logger = log
	}
	keys := opts.Keys
	if keys == nil {
		keys = DefaultKeys()
	}
	e := &Editor{
		doc:    document.New(),
		bridge: selection.NewBridge(opts.Surface),
		media:  media.NewPipeline(opts.Media),
		hist:   history{limit: opts.HistoryLimit},
		opts:   opts,
		keys:   normalizeKeys(keys),
		log:    log.With("component", "editor"),
		stale:  true,
	}
	e.markup = html.Render(e.doc)
	return e
}

// Markup returns the current document serialized as HTML.
func (e *Editor) Markup() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.markup
}

// SetMarkup replaces the document. Markup that cannot be parsed leaves a
// single empty paragraph and the parse error is returned. History and the
// stored selection are reset.
func (e *Editor) SetMarkup(markup string) error {
	d, err := html.ParseString(markup)
	if err != nil {
		e.log.Warn("markup fallback to empty document", "err", err)
		d = document.New()
	}
	e.Load(d)
	return err
}

// Load replaces the document with d, for example a restored draft. Files
// kept for embeds of the replaced document are dropped; pending embeds of d
// that name a local file are registered for RetryUpload.
func (e *Editor) Load(d *document.Document) {
	d.Normalize()
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range e.media.Held() {
		if d.Embed(id) == nil {
			e.media.Forget(id)
		}
	}
	for _, em := range d.PendingEmbeds() {
		if err := e.media.Adopt(em); err != nil {
			e.log.Warn("pending embed cannot be retried", "embed", em.ID, "file", em.File, "err", err)
		}
	}
	e.doc = d
	e.hist.clear()
	e.bridge.Reset()
	e.typing = nil
	e.markup = html.Render(d)
	e.stale = true
}

// Document returns a deep copy of the current document, pending embeds
// included.
func (e *Editor) Document() *document.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// OnChange registers a callback receiving the markup after every change.
func (e *Editor) OnChange(fn func(markup string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// SelectionChanged is called by the host on every native selection
// change. Selections outside the surface are ignored so the last one made
// inside it survives toolbar clicks.
func (e *Editor) SelectionChanged() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.bridge.Capture(e.doc) {
		return
	}
	sel, _ := e.bridge.Last()
	e.moved(sel)
	e.stale = true
}

// Select sets the selection directly, as a headless host would.
func (e *Editor) Select(sel document.Selection) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sel = e.doc.Clamp(sel)
	e.bridge.Save(sel)
	e.bridge.Restore()
	e.moved(sel)
	e.stale = true
}

// Selection returns the selection commands will apply to.
func (e *Editor) Selection() document.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	sel, _ := e.current()
	return sel
}

// State returns the active formats at the current selection. It is
// recomputed at most once per change.
func (e *Editor) State() format.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stale {
		sel, _ := e.current()
		st := format.Compute(e.doc, sel)
		if e.typing != nil && sel.Collapsed() && sel.Focus == e.typingAt {
			st = st.Overlay(*e.typing)
		}
		if st.FontSize == "" {
			st.FontSize = e.opts.DefaultFontSize
		}
		e.state = st
		e.stale = false
	}
	return e.state
}

// Type inserts text at the caret, replacing any selected content.
func (e *Editor) Type(text string) error {
	return e.Execute("insertText", text)
}

// Execute runs a named command. Arguments are command specific; see
// Commands for the list.
func (e *Editor) Execute(name string, args ...string) error {
	run, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}

	sel := e.restore()
	c := &call{doc: e.doc, sel: sel, args: args, record: true}
	before := snapshot{doc: e.doc.Clone(), sel: sel}
	e.log.Debug("command", "command", name, "collapsed", sel.Collapsed())

	if err := run(e, c); err != nil {
		e.mu.Unlock()
		return fmt.Errorf("%s: %w", name, err)
	}
	if !c.keepTyping {
		e.typing = nil
	}

	var notify func()
	if c.changed {
		if c.record {
			e.hist.save(before)
		}
		e.doc.Normalize()
		e.markup = html.Render(e.doc)
		notify = e.notifier()
	}
	c.sel = e.doc.Clamp(c.sel)
	e.bridge.Save(c.sel)
	e.bridge.Restore()
	e.stale = true
	e.mu.Unlock()

	if notify != nil {
		notify()
	}
	return nil
}

// Commands lists the command names Execute accepts.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Wait blocks until every started upload has finished.
func (e *Editor) Wait() error {
	return e.media.Wait()
}

// Close abandons outstanding uploads without waiting for them. Further
// commands fail with ErrClosed.
func (e *Editor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.media.Close()
}

// restore re-applies the last selection made inside the surface. Without
// one, commands operate at the end of the document.
func (e *Editor) restore() document.Selection {
	sel, ok := e.bridge.Restore()
	if !ok {
		return document.Caret(e.doc.End())
	}
	return e.doc.Clamp(sel)
}

func (e *Editor) current() (document.Selection, bool) {
	sel, ok := e.bridge.Last()
	if !ok {
		return document.Caret(e.doc.End()), false
	}
	return e.doc.Clamp(sel), true
}

// moved drops the typing style once the caret leaves where it was armed.
func (e *Editor) moved(sel document.Selection) {
	if e.typing != nil && (!sel.Collapsed() || sel.Focus != e.typingAt) {
		e.typing = nil
	}
}

// notifier captures the listeners and markup under the lock.
func (e *Editor) notifier() func() {
	markup := e.markup
	listeners := slices.Clone(e.listeners)
	return func() {
		for _, fn := range listeners {
			fn(markup)
		}
	}
}
