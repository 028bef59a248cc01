// Package upload provides upload capabilities for media embeds: a
// multipart HTTP client for hosted media services and a local directory
// store.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"richedit/media"
)

var (
	// ErrNoEndpoint is returned when an HTTP uploader has no endpoint.
	ErrNoEndpoint = errors.New("no upload endpoint configured")

	// ErrRejected is returned when the service answers with an error.
	ErrRejected = errors.New("upload rejected")
)

// Options configures the HTTP uploader.
type Options struct {
	Endpoint       string
	Preset         string // unsigned upload preset sent as upload_preset
	UserAgent      string
	TimeoutSeconds int
	Retries        int           // extra attempts after a server error
	Backoff        time.Duration // the nth retry waits Backoff*n
	Client         *http.Client  // nil builds one from TimeoutSeconds
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		UserAgent:      "richedit/1.0",
		TimeoutSeconds: 60,
		Retries:        2,
		Backoff:        time.Second,
	}
}

// HTTP posts files as multipart forms and reads the durable URL from the
// JSON reply.
type HTTP struct {
	opts   Options
	client *http.Client
}

// NewHTTP creates an HTTP uploader. Zero options fall back to defaults.
func NewHTTP(o Options) (*HTTP, error) {
	if strings.TrimSpace(o.Endpoint) == "" {
		return nil, ErrNoEndpoint
	}
	def := DefaultOptions()
	if o.UserAgent == "" {
		o.UserAgent = def.UserAgent
	}
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = def.TimeoutSeconds
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	client := o.Client
	if client == nil {
		client = &http.Client{
			Timeout: time.Duration(o.TimeoutSeconds) * time.Second,
		}
	}
	return &HTTP{opts: o, client: client}, nil
}

// Upload implements media.Uploader. Server errors and transport failures
// are retried; rejections are not.
func (h *HTTP) Upload(ctx context.Context, f media.File, uo media.UploadOptions) (media.Result, error) {
	var lastErr error
	attempts := 0
	for i := 0; i <= h.opts.Retries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return media.Result{}, ctx.Err()
			case <-time.After(h.opts.Backoff * time.Duration(i)):
			}
		}
		attempts++
		res, retry, err := h.post(ctx, f, uo)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	if attempts > 1 {
		return media.Result{}, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
	}
	return media.Result{}, lastErr
}

// post sends one attempt and reports whether a failure is worth retrying.
func (h *HTTP) post(ctx context.Context, f media.File, uo media.UploadOptions) (media.Result, bool, error) {
	body, contentType, err := form(f, h.opts.Preset, uo)
	if err != nil {
		return media.Result{}, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.opts.Endpoint, body)
	if err != nil {
		return media.Result{}, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", h.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return media.Result{}, true, fmt.Errorf("uploading %s: %w", f.Name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return media.Result{}, true, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(data, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode >= 500 {
			return media.Result{}, true, fmt.Errorf("server error %d: %s", resp.StatusCode, msg)
		}
		return media.Result{}, false, fmt.Errorf("%w: %d: %s", ErrRejected, resp.StatusCode, msg)
	}

	if !gjson.ValidBytes(data) {
		return media.Result{}, false, fmt.Errorf("%w: response is not JSON", ErrRejected)
	}
	u := gjson.GetBytes(data, "secure_url").String()
	if u == "" {
		u = gjson.GetBytes(data, "url").String()
	}
	if u == "" {
		return media.Result{}, false, fmt.Errorf("%w: response has no url", ErrRejected)
	}
	return media.Result{URL: u}, false, nil
}

// form builds the multipart body: file, upload_preset, folder and tags.
func form(f media.File, preset string, uo media.UploadOptions) (io.Reader, string, error) {
	if f.Open == nil {
		return nil, "", fmt.Errorf("opening %s: no reader", f.Name)
	}
	src, err := f.Open()
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer src.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", f.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", f.Name, err)
	}
	fields := map[string]string{
		"upload_preset": preset,
		"folder":        uo.Folder,
		"tags":          strings.Join(uo.Tags, ","),
	}
	for _, k := range []string{"upload_preset", "folder", "tags"} {
		if fields[k] == "" {
			continue
		}
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
