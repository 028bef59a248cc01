package editor

import (
	"fmt"

	"richedit/document"
	"richedit/html"
	"richedit/media"
)

// InsertImage inserts an image at the caret. A local file shows up at once
// as a pending embed and is uploaded in the background; a URL is embedded
// directly. Invalid files are rejected before the document changes.
func (e *Editor) InsertImage(src media.Source) error {
	return e.insertMedia(document.EmbedImage, src)
}

// InsertVideo inserts a video at the caret. YouTube and Vimeo links embed
// the provider's player.
func (e *Editor) InsertVideo(src media.Source) error {
	return e.insertMedia(document.EmbedVideo, src)
}

func (e *Editor) insertMedia(kind document.EmbedKind, src media.Source) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	sel := e.restore()
	c := &call{doc: e.doc, sel: sel, record: true}
	before := snapshot{doc: e.doc.Clone(), sel: sel}

	em, err := e.insertEmbed(c, kind, src)
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("insert %s: %w", kind, err)
	}
	e.typing = nil
	e.hist.save(before)
	e.doc.Normalize()
	e.markup = html.Render(e.doc)
	e.bridge.Save(c.sel)
	e.bridge.Restore()
	e.stale = true
	notify := e.notifier()
	e.mu.Unlock()

	notify()
	if em.Pending {
		e.media.Start(em, e)
	}
	return nil
}

// insertEmbed validates src and places the embed at the caret, replacing
// any selected content.
func (e *Editor) insertEmbed(c *call, kind document.EmbedKind, src media.Source) (*document.Embed, error) {
	em, err := e.media.Prepare(kind, src)
	if err != nil {
		return nil, err
	}
	collapse(c)
	c.ensure()
	p := c.doc.InsertInline(c.sel.Focus, em)
	c.sel = document.Caret(p)
	c.changed = true
	e.log.Debug("embed inserted", "embed", em.ID, "kind", kind, "pending", em.Pending)
	return em, nil
}

// ResolveEmbed implements media.Target. The embed is patched by identity
// in the document and in the undo history, wherever edits moved it. It
// reports whether the live document held the embed.
func (e *Editor) ResolveEmbed(id, url string) bool {
	e.mu.Lock()
	e.hist.each(func(d *document.Document) {
		if em := d.Embed(id); em != nil {
			em.Resolve(url)
		}
	})
	em := e.doc.Embed(id)
	if em == nil {
		e.mu.Unlock()
		return false
	}
	em.Resolve(url)
	e.markup = html.Render(e.doc)
	notify := e.notifier()
	e.mu.Unlock()

	notify()
	return true
}

// UploadFailed implements media.Target. The embed stays pending so no
// content is lost; the error goes to the host.
func (e *Editor) UploadFailed(id string, err error) {
	if e.opts.OnError != nil {
		e.opts.OnError(fmt.Errorf("embed %s: %w", id, err))
	}
}

// RetryUpload uploads the file of a pending embed again.
func (e *Editor) RetryUpload(id string) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return e.media.Retry(id, e)
}

// PendingEmbeds returns copies of the embeds still waiting for upload.
func (e *Editor) PendingEmbeds() []document.Embed {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []document.Embed
	for _, em := range e.doc.PendingEmbeds() {
		out = append(out, *em)
	}
	return out
}

// Durable reports whether the markup describes the whole document, that is
// no embed is waiting for its upload.
func (e *Editor) Durable() bool {
	return len(e.PendingEmbeds()) == 0
}
