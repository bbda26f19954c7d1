package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FetchResult describes what a fetch did
type FetchResult struct {
	Skipped bool
	Bytes   int64
}

// CompletionFunc runs after a stream has been written to path
type CompletionFunc func(ctx context.Context, path string) error

// Downloader writes streams to disk
type Downloader interface {
	// Fetch writes stream to dest. When skipExisting is set and dest exists
	// nothing is downloaded and onComplete is not called. Errors from
	// onComplete are returned unchanged.
	Fetch(ctx context.Context, stream StreamHandle, dest string, skipExisting bool, onComplete CompletionFunc) (FetchResult, error)
}

// FileDownloader streams into a temporary part file next to the
// destination and renames it into place once complete.
type FileDownloader struct {
	ui UIManager
}

// NewFileDownloader creates a downloader reporting progress through ui
func NewFileDownloader(ui UIManager) *FileDownloader {
	return &FileDownloader{ui: ui}
}

func (d *FileDownloader) Fetch(ctx context.Context, stream StreamHandle, dest string, skipExisting bool, onComplete CompletionFunc) (FetchResult, error) {
	if skipExisting && FileExists(dest) {
		return FetchResult{Skipped: true}, nil
	}

	n, err := d.download(ctx, stream, dest)
	if err != nil {
		return FetchResult{}, fmt.Errorf("%w: %w", ErrDownload, err)
	}

	if onComplete != nil {
		if err := onComplete(ctx, dest); err != nil {
			return FetchResult{Bytes: n}, err
		}
	}
	return FetchResult{Bytes: n}, nil
}

func (d *FileDownloader) download(ctx context.Context, stream StreamHandle, dest string) (int64, error) {
	r, err := stream.Open(ctx)
	if err != nil {
		return 0, fmt.Errorf("opening stream: %w", err)
	}
	defer r.Close()

	part := filepath.Join(filepath.Dir(dest), "."+uuid.NewString()+".part")
	f, err := os.Create(part)
	if err != nil {
		return 0, fmt.Errorf("creating part file: %w", err)
	}

	bar := d.ui.NewBytesBar(stream.Size(), filepath.Base(dest))
	n, err := io.Copy(io.MultiWriter(f, bar), &contextReader{ctx: ctx, r: r})
	bar.Finish()
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(part)
		return n, fmt.Errorf("writing %s: %w", dest, err)
	}

	if err := os.Rename(part, dest); err != nil {
		_ = os.Remove(part)
		return n, fmt.Errorf("moving part file into place: %w", err)
	}
	return n, nil
}

// contextReader stops a copy once ctx is cancelled
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
