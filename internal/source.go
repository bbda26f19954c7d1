package internal

import (
	"context"
	"io"
)

// Source resolves playlists and the audio streams of their items
type Source interface {
	Playlist(ctx context.Context, playlistURL string, useAuth bool) (*Playlist, error)
	AudioStream(ctx context.Context, item Item, useAuth bool) (StreamHandle, error)
}

// StreamHandle is a selected audio-only stream that has not been opened yet
type StreamHandle interface {
	// Ext is the file extension without the dot
	Ext() string
	// Size is the expected length in bytes, or 0 when unknown
	Size() int64
	Open(ctx context.Context) (io.ReadCloser, error)
}

// watchURL builds the canonical watch URL of a video ID
func watchURL(id string) string {
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + id
}
