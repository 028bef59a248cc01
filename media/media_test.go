package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"richedit/document"
)

type recorder struct {
	mu       sync.Mutex
	resolved map[string]string
	failed   map[string]error
}

func newRecorder() *recorder {
	return &recorder{resolved: map[string]string{}, failed: map[string]error{}}
}

func (r *recorder) ResolveEmbed(id, url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved[id] = url
	return true
}

func (r *recorder) UploadFailed(id string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[id] = err
}

func TestVideoURL(t *testing.T) {
	tests := []struct {
		in       string
		want     string
		provider document.Provider
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10", "https://www.youtube.com/embed/dQw4w9WgXcQ", document.ProviderYouTube},
		{"https://youtu.be/dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ", document.ProviderYouTube},
		{"https://youtube.com/shorts/dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ", document.ProviderYouTube},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ", document.ProviderYouTube},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ", document.ProviderYouTube},
		{"https://vimeo.com/76979871", "https://player.vimeo.com/video/76979871", document.ProviderVimeo},
		{"https://vimeo.com/channels/staffpicks/76979871", "https://player.vimeo.com/video/76979871", document.ProviderVimeo},
		{"https://cdn.example.com/clip.mp4", "https://cdn.example.com/clip.mp4", document.ProviderNone},
		{"https://www.youtube.com/watch?v=short", "https://www.youtube.com/watch?v=short", document.ProviderNone},
		{"https://vimeo.com/about", "https://vimeo.com/about", document.ProviderNone},
	}
	for _, tt := range tests {
		got, provider := VideoURL(tt.in)
		if got != tt.want || provider != tt.provider {
			t.Errorf("VideoURL(%q) = %q, %v; want %q, %v", tt.in, got, provider, tt.want, tt.provider)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		kind     document.EmbedKind
		typ      string
		accepted []string
		ok       bool
	}{
		{document.EmbedImage, "image/png", nil, true},
		{document.EmbedImage, "video/mp4", nil, false},
		{document.EmbedVideo, "video/mp4", nil, true},
		{document.EmbedVideo, "video/webm; codecs=vp9", nil, true},
		{document.EmbedImage, "image/gif", []string{"image/png", "image/jpeg"}, false},
		{document.EmbedImage, "IMAGE/PNG", []string{"image/png"}, true},
		{document.EmbedImage, "", nil, false},
	}
	for _, tt := range tests {
		err := Validate(tt.kind, tt.typ, tt.accepted)
		if tt.ok && err != nil {
			t.Errorf("Validate(%v, %q) = %v", tt.kind, tt.typ, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidMediaType) {
			t.Errorf("Validate(%v, %q) = %v, want ErrInvalidMediaType", tt.kind, tt.typ, err)
		}
	}
}

func TestPrepareURL(t *testing.T) {
	p := NewPipeline(Options{})
	e, err := p.Prepare(document.EmbedVideo, FromURL("https://youtu.be/dQw4w9WgXcQ"))
	if err != nil {
		t.Fatal(err)
	}
	if e.Pending || e.Provider != document.ProviderYouTube || e.URL != "https://www.youtube.com/embed/dQw4w9WgXcQ" {
		t.Errorf("unexpected embed %+v", e)
	}

	e, err = p.Prepare(document.EmbedImage, FromURL("https://cdn/x.png"))
	if err != nil || e.Pending || e.URL != "https://cdn/x.png" {
		t.Errorf("unexpected image embed %+v, %v", e, err)
	}

	if _, err := p.Prepare(document.EmbedImage, Source{}); !errors.Is(err, ErrInvalidMediaType) {
		t.Errorf("empty source error = %v", err)
	}
}

func TestPrepareRejectsWrongFileType(t *testing.T) {
	p := NewPipeline(Options{})
	_, err := p.Prepare(document.EmbedVideo, FromFile(FileFromBytes("a.png", "image/png", []byte("x"))))
	if !errors.Is(err, ErrInvalidMediaType) {
		t.Errorf("expected ErrInvalidMediaType, got %v", err)
	}
}

func TestPrepareRejectsLargeFile(t *testing.T) {
	p := NewPipeline(Options{MaxBytes: 2})
	_, err := p.Prepare(document.EmbedImage, FromFile(FileFromBytes("a.png", "image/png", []byte("xyz"))))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestUploadResolvesByID(t *testing.T) {
	var got UploadOptions
	up := UploaderFunc(func(_ context.Context, f File, opts UploadOptions) (Result, error) {
		got = opts
		return Result{URL: "https://cdn/" + f.Name}, nil
	})
	p := NewPipeline(Options{Uploader: up, Folder: "news", Tags: []string{"editor"}})
	rec := newRecorder()

	e, err := p.Prepare(document.EmbedImage, FromFile(FileFromBytes("cat.png", "image/png", []byte("png"))))
	if err != nil {
		t.Fatal(err)
	}
	if !e.Pending || e.File != "cat.png" {
		t.Fatalf("expected pending embed, got %+v", e)
	}
	p.Start(e, rec)
	if err := p.Wait(); err != nil {
		t.Fatal(err)
	}

	if rec.resolved[e.ID] != "https://cdn/cat.png" {
		t.Errorf("embed not resolved: %v", rec.resolved)
	}
	if got.Folder != "news" || len(got.Tags) != 1 {
		t.Errorf("upload options not passed: %+v", got)
	}
	if p.Pending(e.ID) {
		t.Errorf("file kept after success")
	}
}

func TestUploadFailureKeepsFileForRetry(t *testing.T) {
	calls := 0
	up := UploaderFunc(func(context.Context, File, UploadOptions) (Result, error) {
		calls++
		if calls == 1 {
			return Result{}, errors.New("503")
		}
		return Result{URL: "https://cdn/ok.mp4"}, nil
	})
	p := NewPipeline(Options{Uploader: up})
	rec := newRecorder()

	e, _ := p.Prepare(document.EmbedVideo, FromFile(FileFromBytes("ok.mp4", "video/mp4", []byte("mp4"))))
	p.Start(e, rec)
	if err := p.Wait(); !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("Wait() = %v, want ErrUploadFailed", err)
	}
	if !errors.Is(rec.failed[e.ID], ErrUploadFailed) {
		t.Errorf("failure not reported: %v", rec.failed)
	}
	if !p.Pending(e.ID) {
		t.Fatalf("file dropped after failure")
	}

	if err := p.Retry(e.ID, rec); err != nil {
		t.Fatal(err)
	}
	p.Wait()
	if rec.resolved[e.ID] != "https://cdn/ok.mp4" {
		t.Errorf("retry did not resolve: %v", rec.resolved)
	}
	if err := p.Retry(e.ID, rec); !errors.Is(err, ErrUnknownEmbed) {
		t.Errorf("retry of resolved embed = %v", err)
	}
}

func TestCloseAbandonsUploads(t *testing.T) {
	started := make(chan struct{})
	up := UploaderFunc(func(ctx context.Context, _ File, _ UploadOptions) (Result, error) {
		close(started)
		<-ctx.Done()
		return Result{}, ctx.Err()
	})
	p := NewPipeline(Options{Uploader: up})
	rec := newRecorder()
	e, _ := p.Prepare(document.EmbedImage, FromFile(FileFromBytes("a.png", "image/png", []byte("a"))))
	p.Start(e, rec)
	<-started
	p.Close()
	if err := p.Wait(); err != nil {
		t.Errorf("abandoned upload reported %v", err)
	}
	if len(rec.failed) != 0 || len(rec.resolved) != 0 {
		t.Errorf("abandoned upload reached the target")
	}
}

func TestNoUploader(t *testing.T) {
	p := NewPipeline(Options{})
	rec := newRecorder()
	e, _ := p.Prepare(document.EmbedImage, FromFile(FileFromBytes("a.png", "image/png", []byte("a"))))
	p.Start(e, rec)
	p.Wait()
	if !errors.Is(rec.failed[e.ID], ErrUploadFailed) {
		t.Errorf("missing uploader should fail the upload")
	}
}

func TestFileFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(path, []byte("\xff\xd8\xff"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := FileFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "photo.jpg" || f.Path != path || f.Type != "image/jpeg" || f.Size != 3 {
		t.Errorf("unexpected file %+v", f)
	}

	noext := filepath.Join(dir, "blob")
	os.WriteFile(noext, []byte("\x89PNG\r\n\x1a\n0000"), 0644)
	f, err = FileFromPath(noext)
	if err != nil || f.Type != "image/png" {
		t.Errorf("sniffed type %q, %v", f.Type, err)
	}
}

func TestAdoptRegistersRestoredEmbed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dot.png")
	if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	up := UploaderFunc(func(_ context.Context, f File, _ UploadOptions) (Result, error) {
		return Result{URL: "https://cdn/" + f.Name}, nil
	})
	p := NewPipeline(Options{Uploader: up})
	rec := newRecorder()

	restored := document.NewPendingEmbed(document.EmbedImage, "dot.png")
	restored.Source = path
	memory := document.NewPendingEmbed(document.EmbedImage, "mem.png")
	video := document.NewPendingEmbed(document.EmbedVideo, "dot.png")
	video.Source = path

	if err := p.Adopt(restored); err != nil {
		t.Fatal(err)
	}
	if err := p.Adopt(memory); err != nil {
		t.Errorf("embed without a path: %v", err)
	}
	if err := p.Adopt(video); !errors.Is(err, ErrInvalidMediaType) {
		t.Errorf("video from png = %v, want ErrInvalidMediaType", err)
	}
	gone := document.NewPendingEmbed(document.EmbedImage, "gone.png")
	gone.Source = filepath.Join(t.TempDir(), "gone.png")
	if err := p.Adopt(gone); !errors.Is(err, ErrUnknownEmbed) {
		t.Errorf("missing file = %v, want ErrUnknownEmbed", err)
	}
	if held := p.Held(); len(held) != 1 || held[0] != restored.ID {
		t.Fatalf("Held() = %v", held)
	}

	if err := p.Retry(restored.ID, rec); err != nil {
		t.Fatal(err)
	}
	p.Wait()
	if rec.resolved[restored.ID] != "https://cdn/dot.png" {
		t.Errorf("resolved = %v", rec.resolved)
	}
	if len(p.Held()) != 0 {
		t.Errorf("file kept after upload")
	}
}

func TestForget(t *testing.T) {
	p := NewPipeline(Options{})
	e, _ := p.Prepare(document.EmbedImage, FromFile(FileFromBytes("a.png", "image/png", []byte("a"))))
	p.Forget(e.ID)
	if p.Pending(e.ID) {
		t.Errorf("file kept after Forget")
	}
	if err := p.Retry(e.ID, newRecorder()); !errors.Is(err, ErrUnknownEmbed) {
		t.Errorf("Retry after Forget = %v", err)
	}
}
