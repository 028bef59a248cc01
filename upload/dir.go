package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"richedit/media"
)

// Dir stores uploads in a local directory. Files land in the folder named
// by the upload options, under a fresh name that keeps the extension.
type Dir struct {
	Root    string
	BaseURL string // "file://" or empty for file URLs, otherwise a URL prefix for Root
}

// Upload implements media.Uploader.
func (d Dir) Upload(ctx context.Context, f media.File, uo media.UploadOptions) (media.Result, error) {
	if err := ctx.Err(); err != nil {
		return media.Result{}, err
	}
	if f.Open == nil {
		return media.Result{}, fmt.Errorf("opening %s: no reader", f.Name)
	}

	folder := filepath.Clean(filepath.FromSlash(strings.Trim(uo.Folder, "/")))
	if folder == "." || strings.HasPrefix(folder, "..") {
		folder = ""
	}
	dir := filepath.Join(d.Root, folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return media.Result{}, fmt.Errorf("creating upload dir: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(f.Name))
	dst := filepath.Join(dir, name)
	if err := copyFile(ctx, f, dst); err != nil {
		os.Remove(dst)
		return media.Result{}, err
	}

	if d.BaseURL == "" || d.BaseURL == "file://" {
		abs, err := filepath.Abs(dst)
		if err != nil {
			return media.Result{}, err
		}
		return media.Result{URL: "file://" + filepath.ToSlash(abs)}, nil
	}
	return media.Result{URL: strings.TrimSuffix(d.BaseURL, "/") + "/" + path.Join(filepath.ToSlash(folder), name)}, nil
}

func copyFile(ctx context.Context, f media.File, dst string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return ctx.Err()
}
