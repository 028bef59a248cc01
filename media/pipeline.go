package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"richedit/document"
)

// UploadOptions is passed to the upload capability with every file.
type UploadOptions struct {
	Folder string
	Tags   []string
}

// Result is the durable location of an uploaded file.
type Result struct {
	URL string
}

// Uploader is the host's upload capability.
type Uploader interface {
	Upload(ctx context.Context, f File, opts UploadOptions) (Result, error)
}

// UploaderFunc adapts a function to the Uploader interface.
type UploaderFunc func(ctx context.Context, f File, opts UploadOptions) (Result, error)

// Upload implements Uploader.
func (fn UploaderFunc) Upload(ctx context.Context, f File, opts UploadOptions) (Result, error) {
	return fn(ctx, f, opts)
}

// Target receives upload outcomes. Embeds are addressed by ID, so edits
// made while an upload runs never misdirect the patch.
type Target interface {
	ResolveEmbed(id, url string) bool
	UploadFailed(id string, err error)
}

// Options configures a Pipeline.
type Options struct {
	Uploader   Uploader
	Folder     string
	Tags       []string
	ImageTypes []string // accepted image MIME types, empty for any image/*
	VideoTypes []string // accepted video MIME types, empty for any video/*
	MaxBytes   int64    // zero for no limit
	Logger     *slog.Logger
}

// Pipeline validates media sources and runs deferred uploads.
type Pipeline struct {
	opts   Options
	log    *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	mu    sync.Mutex
	files map[string]File // pending embed ID -> file awaiting upload
}

// NewPipeline creates a pipeline.
func NewPipeline(opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		opts:   opts,
		log:    log.With("component", "media"),
		ctx:    ctx,
		cancel: cancel,
		files:  make(map[string]File),
	}
}

// Prepare validates src and builds the embed to insert. Local files give a
// pending embed that Start later uploads; URLs give a resolved embed.
func (p *Pipeline) Prepare(kind document.EmbedKind, src Source) (*document.Embed, error) {
	if src.File != nil {
		f := *src.File
		if err := Validate(kind, f.Type, p.accepted(kind)); err != nil {
			return nil, err
		}
		if p.opts.MaxBytes > 0 && f.Size > p.opts.MaxBytes {
			return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, f.Name, f.Size, p.opts.MaxBytes)
		}
		e := document.NewPendingEmbed(kind, f.Name)
		e.Source = f.Path
		p.mu.Lock()
		p.files[e.ID] = f
		p.mu.Unlock()
		return e, nil
	}

	if src.URL == "" {
		return nil, fmt.Errorf("%w: empty source", ErrInvalidMediaType)
	}
	if kind == document.EmbedVideo {
		u, provider := VideoURL(src.URL)
		return document.NewResolvedEmbed(kind, u, provider), nil
	}
	return document.NewResolvedEmbed(kind, src.URL, document.ProviderNone), nil
}

func (p *Pipeline) accepted(kind document.EmbedKind) []string {
	if kind == document.EmbedVideo {
		return p.opts.VideoTypes
	}
	return p.opts.ImageTypes
}

// Start uploads the file behind a pending embed in the background and
// reports the outcome to t. After Close outcomes are dropped.
func (p *Pipeline) Start(e *document.Embed, t Target) {
	if e == nil || !e.Pending {
		return
	}
	p.mu.Lock()
	f, ok := p.files[e.ID]
	p.mu.Unlock()
	if !ok {
		return
	}
	id := e.ID
	p.group.Go(func() error {
		return p.upload(id, f, t)
	})
}

// Retry starts another upload for a still pending embed.
func (p *Pipeline) Retry(id string, t Target) error {
	p.mu.Lock()
	f, ok := p.files[id]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEmbed, id)
	}
	p.group.Go(func() error {
		return p.upload(id, f, t)
	})
	return nil
}

func (p *Pipeline) upload(id string, f File, t Target) error {
	if p.opts.Uploader == nil {
		err := fmt.Errorf("%w: no uploader configured", ErrUploadFailed)
		t.UploadFailed(id, err)
		return err
	}

	res, err := p.opts.Uploader.Upload(p.ctx, f, UploadOptions{Folder: p.opts.Folder, Tags: p.opts.Tags})
	if p.ctx.Err() != nil {
		// Abandoned by Close.
		return nil
	}
	if err == nil && res.URL == "" {
		err = errors.New("empty URL in upload result")
	}
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrUploadFailed, f.Name, err)
		p.log.Warn("upload failed", "embed", id, "file", f.Name, "err", err)
		t.UploadFailed(id, err)
		return err
	}

	p.mu.Lock()
	delete(p.files, id)
	p.mu.Unlock()
	p.log.Info("upload resolved", "embed", id, "url", res.URL)
	t.ResolveEmbed(id, res.URL)
	return nil
}

// Pending reports whether the pipeline still holds a file for the embed.
func (p *Pipeline) Pending(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.files[id]
	return ok
}

// Adopt registers the file behind a pending embed that came from
// elsewhere, such as a reopened draft, so Retry can upload it. Embeds
// without a local path are left alone.
func (p *Pipeline) Adopt(e *document.Embed) error {
	if e == nil || !e.Pending || e.Source == "" || p.Pending(e.ID) {
		return nil
	}
	f, err := FileFromPath(e.Source)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnknownEmbed, e.ID, err)
	}
	if err := Validate(e.Kind, f.Type, p.accepted(e.Kind)); err != nil {
		return err
	}
	p.mu.Lock()
	p.files[e.ID] = f
	p.mu.Unlock()
	return nil
}

// Held returns the IDs of the embeds whose files the pipeline keeps.
func (p *Pipeline) Held() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.files))
	for id := range p.files {
		ids = append(ids, id)
	}
	return ids
}

// Forget drops the file kept for an embed that was removed.
func (p *Pipeline) Forget(id string) {
	p.mu.Lock()
	delete(p.files, id)
	p.mu.Unlock()
}

// Wait blocks until every started upload has finished. It returns the
// first failure the pipeline ever saw, even when a retry succeeded since.
func (p *Pipeline) Wait() error {
	return p.group.Wait()
}

// Close abandons outstanding uploads without waiting for them.
func (p *Pipeline) Close() {
	p.cancel()
}
