package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// ImageFormat is the container hint stored with cover artwork
type ImageFormat int

const (
	ImageJPEG ImageFormat = iota
	ImagePNG
)

func (f ImageFormat) String() string {
	if f == ImageJPEG {
		return "jpeg"
	}
	return "png"
}

// Cover is embedded artwork
type Cover struct {
	Data   []byte
	Format ImageFormat
}

// TagSet is everything written into a file's tag block
type TagSet struct {
	Title   string
	Album   string
	Artist  string
	Comment string
	Cover   *Cover
}

// TagWriter writes a tag block into one container format, in place
type TagWriter interface {
	WriteTags(path string, tags TagSet) error
}

// CoverFetcher retrieves cover artwork
type CoverFetcher interface {
	FetchCover(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// HTTPCoverFetcher fetches covers with a plain GET
type HTTPCoverFetcher struct {
	client *http.Client
}

// NewHTTPCoverFetcher creates a cover fetcher with the given request timeout
func NewHTTPCoverFetcher(timeout time.Duration) *HTTPCoverFetcher {
	return &HTTPCoverFetcher{client: &http.Client{Timeout: timeout}}
}

// maxCoverSize bounds how much of a thumbnail response is read
const maxCoverSize = 10 << 20

func (f *HTTPCoverFetcher) FetchCover(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetching cover: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize))
	if err != nil {
		return nil, "", fmt.Errorf("reading cover: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// Tagger stamps downloaded files with title, album, artist, comment and cover
type Tagger struct {
	writers map[string]TagWriter
	fetcher CoverFetcher
	comment *CommentManager
	ui      UIManager
}

// TaggerOption customizes Tagger creation
type TaggerOption func(*Tagger)

// WithTagWriter registers a writer for a file extension (including the dot)
func WithTagWriter(ext string, w TagWriter) TaggerOption {
	return func(t *Tagger) {
		t.writers[strings.ToLower(ext)] = w
	}
}

// WithCoverFetcher replaces the cover fetcher
func WithCoverFetcher(f CoverFetcher) TaggerOption {
	return func(t *Tagger) {
		t.fetcher = f
	}
}

// NewTagger creates a tagger with the MP4 writer registered for .m4a files
func NewTagger(fetcher CoverFetcher, comment *CommentManager, ui UIManager, options ...TaggerOption) *Tagger {
	t := &Tagger{
		writers: map[string]TagWriter{".m4a": &MP4TagWriter{}},
		fetcher: fetcher,
		comment: comment,
		ui:      ui,
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// Tag writes metadata into the file at path. A cover that cannot be fetched
// is reported as a warning and the file is tagged without it. Only IO
// failures are returned.
func (t *Tagger) Tag(ctx context.Context, path, title, album, artist, coverURL string) error {
	writer, ok := t.writers[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return &TagError{Kind: TagIOFailure, Path: path, Err: fmt.Errorf("no tag writer for %q files", filepath.Ext(path))}
	}

	comment, err := t.comment.Render(CommentData{Title: title, Album: album, Artist: artist})
	if err != nil {
		return &TagError{Kind: TagIOFailure, Path: path, Err: err}
	}

	tags := TagSet{
		Title:   title,
		Album:   album,
		Artist:  artist,
		Comment: comment,
	}

	if coverURL != "" {
		cover, err := t.fetchCover(ctx, path, coverURL)
		if err != nil {
			t.ui.Warnf("%v; tagging without cover\n", err)
			RunLogWarn("%v", err)
		} else {
			tags.Cover = cover
		}
	}

	if err := writer.WriteTags(path, tags); err != nil {
		return &TagError{Kind: TagIOFailure, Path: path, Err: err}
	}
	return nil
}

func (t *Tagger) fetchCover(ctx context.Context, path, coverURL string) (*Cover, error) {
	data, contentType, err := t.fetcher.FetchCover(ctx, coverURL)
	if err != nil {
		return nil, &TagError{Kind: TagCoverFetchFailure, Path: path, Err: err}
	}

	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "jpeg") || strings.Contains(ct, "jpg") {
		return &Cover{Data: data, Format: ImageJPEG}, nil
	}

	t.ui.Warnf("cover for %s has content type %q, storing as PNG\n", filepath.Base(path), contentType)
	return &Cover{Data: data, Format: ImagePNG}, nil
}
