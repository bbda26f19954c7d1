package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
)

// YouTubeSource resolves playlists and streams natively, without yt-dlp
type YouTubeSource struct {
	client     *youtube.Client
	authClient *youtube.Client
}

// NewYouTubeSource creates a native source. jar, when not nil, is attached
// to the client used for authenticated requests.
func NewYouTubeSource(timeout time.Duration, jar http.CookieJar) *YouTubeSource {
	client := &youtube.Client{
		HTTPClient: &http.Client{Timeout: timeout},
	}
	authClient := client
	if jar != nil {
		authClient = &youtube.Client{
			HTTPClient: &http.Client{Timeout: timeout, Jar: jar},
		}
	}
	return &YouTubeSource{client: client, authClient: authClient}
}

// clientFor returns the client carrying cookies when useAuth is set
func (s *YouTubeSource) clientFor(useAuth bool) *youtube.Client {
	if useAuth {
		return s.authClient
	}
	return s.client
}

// Playlist resolves a playlist URL or ID into its ordered items
func (s *YouTubeSource) Playlist(ctx context.Context, playlistURL string, useAuth bool) (*Playlist, error) {
	pl, err := s.clientFor(useAuth).GetPlaylistContext(ctx, playlistURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching playlist: %w", ErrResolution, describeAccessError(err))
	}
	return playlistFromYouTube(pl, playlistURL), nil
}

// playlistFromYouTube maps resolved entries to items. Entries that could not
// be resolved are dropped and the remaining items are numbered densely so
// Index always matches the position a Window selects.
func playlistFromYouTube(pl *youtube.Playlist, playlistURL string) *Playlist {
	playlist := &Playlist{
		ID:    pl.ID,
		Title: pl.Title,
		URL:   playlistURL,
		Items: make([]Item, 0, len(pl.Videos)),
	}
	for _, entry := range pl.Videos {
		if entry == nil {
			continue
		}
		playlist.Items = append(playlist.Items, Item{
			ID:           entry.ID,
			Index:        len(playlist.Items),
			Title:        entry.Title,
			Author:       entry.Author,
			ThumbnailURL: largestThumbnail(entry.Thumbnails),
			WatchURL:     watchURL(entry.ID),
			Duration:     entry.Duration,
		})
	}
	return playlist
}

// AudioStream selects the highest bitrate audio-only mp4 stream of item
func (s *YouTubeSource) AudioStream(ctx context.Context, item Item, useAuth bool) (StreamHandle, error) {
	client := s.clientFor(useAuth)
	video, err := client.GetVideoContext(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching video: %w", ErrResolution, describeAccessError(err))
	}

	format := pickAudioFormat(video.Formats)
	if format == nil {
		return nil, ErrStreamSelection
	}

	return &youtubeStream{client: client, video: video, format: format}, nil
}

// pickAudioFormat returns the best audio-only mp4 format, or nil
func pickAudioFormat(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "audio/mp4") || f.Width > 0 {
			continue
		}
		if best == nil || bitrateForFormat(f) > bitrateForFormat(best) {
			best = f
		}
	}
	return best
}

func bitrateForFormat(f *youtube.Format) int {
	if f.Bitrate > 0 {
		return f.Bitrate
	}
	return f.AverageBitrate
}

func largestThumbnail(thumbs youtube.Thumbnails) string {
	url := ""
	var area uint
	for _, t := range thumbs {
		if a := t.Width * t.Height; url == "" || a > area {
			url, area = t.URL, a
		}
	}
	return url
}

// describeAccessError adds a login hint to errors caused by restricted videos
func describeAccessError(err error) error {
	switch {
	case errors.Is(err, youtube.ErrLoginRequired),
		errors.Is(err, youtube.ErrVideoPrivate),
		errors.Is(err, youtube.ErrNotPlayableInEmbed):
		return fmt.Errorf("%w (try --auth with a cookies file)", err)
	}
	var statusErr youtube.ErrUnexpectedStatusCode
	if errors.As(err, &statusErr) && int(statusErr) == http.StatusForbidden {
		return fmt.Errorf("%w (try --auth with a cookies file)", err)
	}
	return err
}

type youtubeStream struct {
	client *youtube.Client
	video  *youtube.Video
	format *youtube.Format
}

func (s *youtubeStream) Ext() string {
	return "m4a"
}

func (s *youtubeStream) Size() int64 {
	return s.format.ContentLength
}

func (s *youtubeStream) Open(ctx context.Context) (io.ReadCloser, error) {
	stream, _, err := s.client.GetStreamContext(ctx, s.video, s.format)
	if err != nil {
		return nil, describeAccessError(err)
	}
	return stream, nil
}
