package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"richedit/media"
)

func png() media.File {
	return media.FileFromBytes("photo.PNG", "image/png", []byte("\x89PNG\r\n\x1a\nfake"))
}

func TestNewHTTPRequiresEndpoint(t *testing.T) {
	if _, err := NewHTTP(Options{}); !errors.Is(err, ErrNoEndpoint) {
		t.Errorf("expected ErrNoEndpoint, got %v", err)
	}
}

func TestHTTPUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("User-Agent = %q", ua)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		if got := r.FormValue("upload_preset"); got != "unsigned" {
			t.Errorf("upload_preset = %q", got)
		}
		if got := r.FormValue("folder"); got != "posts" {
			t.Errorf("folder = %q", got)
		}
		if got := r.FormValue("tags"); got != "a,b" {
			t.Errorf("tags = %q", got)
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if hdr.Filename != "photo.PNG" || !strings.HasPrefix(string(data), "\x89PNG") {
			t.Errorf("file = %q %q", hdr.Filename, data)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"public_id":"x","url":"http://cdn/x.png","secure_url":"https://cdn/x.png"}`)
	}))
	defer srv.Close()

	h, err := NewHTTP(Options{Endpoint: srv.URL, Preset: "unsigned", UserAgent: "test-agent"})
	if err != nil {
		t.Fatal(err)
	}
	res, err := h.Upload(context.Background(), png(), media.UploadOptions{Folder: "posts", Tags: []string{"a", "b"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.URL != "https://cdn/x.png" {
		t.Errorf("URL = %q, want secure_url", res.URL)
	}
}

func TestHTTPUploadFallsBackToURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"url":"http://cdn/y.png"}`)
	}))
	defer srv.Close()

	h, _ := NewHTTP(Options{Endpoint: srv.URL})
	res, err := h.Upload(context.Background(), png(), media.UploadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.URL != "http://cdn/y.png" {
		t.Errorf("URL = %q", res.URL)
	}
}

func TestHTTPUploadRejected(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"Upload preset not found"}}`)
	}))
	defer srv.Close()

	h, _ := NewHTTP(Options{Endpoint: srv.URL, Retries: 3})
	_, err := h.Upload(context.Background(), png(), media.UploadOptions{})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "Upload preset not found") {
		t.Errorf("error lost the service message: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("rejection retried: %d calls", calls.Load())
	}
}

func TestHTTPUploadRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `{"secure_url":"https://cdn/z.png"}`)
	}))
	defer srv.Close()

	h, _ := NewHTTP(Options{Endpoint: srv.URL, Retries: 2, Backoff: 1})
	res, err := h.Upload(context.Background(), png(), media.UploadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.URL != "https://cdn/z.png" || calls.Load() != 3 {
		t.Errorf("URL = %q after %d calls", res.URL, calls.Load())
	}
}

func TestHTTPUploadGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h, _ := NewHTTP(Options{Endpoint: srv.URL, Retries: 1, Backoff: 1})
	_, err := h.Upload(context.Background(), png(), media.UploadOptions{})
	if err == nil || !strings.Contains(err.Error(), "failed after 2 attempts") {
		t.Errorf("expected retry exhaustion, got %v", err)
	}
}

func TestHTTPUploadMissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"public_id":"x"}`)
	}))
	defer srv.Close()

	h, _ := NewHTTP(Options{Endpoint: srv.URL})
	if _, err := h.Upload(context.Background(), png(), media.UploadOptions{}); !errors.Is(err, ErrRejected) {
		t.Errorf("expected ErrRejected, got %v", err)
	}
}

func TestHTTPUploadCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"url":"http://cdn/x"}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h, _ := NewHTTP(Options{Endpoint: srv.URL})
	if _, err := h.Upload(ctx, png(), media.UploadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDirUpload(t *testing.T) {
	root := t.TempDir()
	res, err := Dir{Root: root}.Upload(context.Background(), png(), media.UploadOptions{Folder: "posts"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.URL, "file://") || !strings.HasSuffix(res.URL, ".png") {
		t.Fatalf("URL = %q", res.URL)
	}
	path := filepath.FromSlash(strings.TrimPrefix(res.URL, "file://"))
	if filepath.Dir(path) != filepath.Join(root, "posts") {
		t.Errorf("stored in %s", filepath.Dir(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "\x89PNG") {
		t.Errorf("content = %q", data)
	}
}

func TestDirUploadBaseURL(t *testing.T) {
	d := Dir{Root: t.TempDir(), BaseURL: "https://static.example.com/media/"}
	res, err := d.Upload(context.Background(), png(), media.UploadOptions{Folder: "../escape"})
	if err != nil {
		t.Fatal(err)
	}
	rest := strings.TrimPrefix(res.URL, "https://static.example.com/media/")
	if rest == res.URL || strings.Contains(rest, "/") {
		t.Errorf("URL = %q", res.URL)
	}
}

func TestUploadersSatisfyPipeline(t *testing.T) {
	var _ media.Uploader = (*HTTP)(nil)
	var _ media.Uploader = Dir{}
}
