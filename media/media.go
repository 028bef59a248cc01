// Package media inserts images and videos as embeds. Local files appear at
// once as pending embeds and are uploaded in the background; URLs resolve
// immediately, with player URLs for known video providers.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"richedit/document"
)

var (
	// ErrInvalidMediaType is returned before any mutation when a file's
	// type does not match the requested embed kind.
	ErrInvalidMediaType = errors.New("invalid media type")

	// ErrUploadFailed wraps errors from the upload capability.
	ErrUploadFailed = errors.New("upload failed")

	// ErrUnknownEmbed is returned when retrying an embed that is not
	// pending in this pipeline.
	ErrUnknownEmbed = errors.New("unknown embed")

	// ErrTooLarge is returned for files over the configured size limit.
	ErrTooLarge = errors.New("media file too large")
)

// File is a local file handle chosen by the user.
type File struct {
	Name string
	Path string // empty for in-memory files
	Type string // MIME type
	Size int64
	Open func() (io.ReadCloser, error)
}

// FileFromPath describes a file on disk. The MIME type comes from the
// extension, falling back to content sniffing.
func FileFromPath(path string) (File, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return File{}, fmt.Errorf("reading media file: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("reading media file: %w", err)
	}
	typ := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if typ == "" {
		typ, err = sniff(path)
		if err != nil {
			return File{}, fmt.Errorf("reading media file: %w", err)
		}
	}
	return File{
		Name: filepath.Base(path),
		Path: path,
		Type: typ,
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// FileFromBytes describes an in-memory file.
func FileFromBytes(name, typ string, data []byte) File {
	if typ == "" {
		typ = http.DetectContentType(data)
	}
	return File{
		Name: name,
		Type: typ,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

// Source is what the user picked: a local file or a URL.
type Source struct {
	File *File
	URL  string
}

// FromFile wraps a local file.
func FromFile(f File) Source { return Source{File: &f} }

// FromURL wraps a URL.
func FromURL(u string) Source { return Source{URL: strings.TrimSpace(u)} }

// Validate checks a MIME type against the embed kind. An empty accepted
// list allows every image/* or video/* type respectively.
func Validate(kind document.EmbedKind, typ string, accepted []string) error {
	base, _, err := mime.ParseMediaType(typ)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMediaType, typ)
	}
	if len(accepted) > 0 {
		for _, a := range accepted {
			if strings.EqualFold(a, base) {
				return nil
			}
		}
		return fmt.Errorf("%w: %s not accepted for %s", ErrInvalidMediaType, base, kind)
	}
	if !strings.HasPrefix(base, kind.String()+"/") {
		return fmt.Errorf("%w: %s is not a valid %s type", ErrInvalidMediaType, base, kind)
	}
	return nil
}
