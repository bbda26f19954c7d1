package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// recordingUI captures warnings and errors instead of printing them
type recordingUI struct {
	mu       sync.Mutex
	warnings []string
	errors   []string
}

func (r *recordingUI) NewBytesBar(total int64, description string) ProgressBar {
	return &SilentProgressBar{}
}

func (r *recordingUI) Verbose(format string, args ...any) {}
func (r *recordingUI) Printf(format string, args ...any)  {}
func (r *recordingUI) Println(args ...any)                {}

func (r *recordingUI) Warnf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func (r *recordingUI) Errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingUI) warned(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

// fakeStream serves fixed bytes
type fakeStream struct {
	ext     string
	data    []byte
	openErr error
	opened  int
}

func (s *fakeStream) Ext() string { return s.ext }
func (s *fakeStream) Size() int64 { return int64(len(s.data)) }

func (s *fakeStream) Open(ctx context.Context) (io.ReadCloser, error) {
	s.opened++
	if s.openErr != nil {
		return nil, s.openErr
	}
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

// fakeSource resolves a fixed playlist. Items without an entry in streams
// fail stream selection.
type fakeSource struct {
	playlist    *Playlist
	playlistErr error
	streams     map[string]*fakeStream
	authSeen    []bool
	listAuth    []bool
}

func (s *fakeSource) Playlist(ctx context.Context, playlistURL string, useAuth bool) (*Playlist, error) {
	s.listAuth = append(s.listAuth, useAuth)
	if s.playlistErr != nil {
		return nil, s.playlistErr
	}
	return s.playlist, nil
}

func (s *fakeSource) AudioStream(ctx context.Context, item Item, useAuth bool) (StreamHandle, error) {
	s.authSeen = append(s.authSeen, useAuth)
	stream, ok := s.streams[item.ID]
	if !ok {
		return nil, ErrStreamSelection
	}
	return stream, nil
}

// fakeWriter records tag writes by path
type fakeWriter struct {
	mu     sync.Mutex
	writes map[string]TagSet
	calls  int
	err    error
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{writes: make(map[string]TagSet)}
}

func (w *fakeWriter) WriteTags(path string, tags TagSet) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.err != nil {
		return w.err
	}
	w.writes[path] = tags
	return nil
}

// countingFetcher returns a fixed cover and counts requests
type countingFetcher struct {
	mu          sync.Mutex
	contentType string
	err         error
	urls        []string
}

func (f *countingFetcher) FetchCover(ctx context.Context, url string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, "", f.err
	}
	return []byte("cover:" + url), f.contentType, nil
}

func (f *countingFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.urls)
}

var errBoom = errors.New("boom")
