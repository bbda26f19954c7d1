package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"
	"github.com/tidwall/gjson"
)

// audioFormatSelector picks an audio-only m4a stream
const audioFormatSelector = "bestaudio[ext=m4a]"

// YTDLPSource resolves playlists and streams through the yt-dlp binary
type YTDLPSource struct {
	tempDir            string
	cookiesFile        string
	cookiesFromBrowser string
	verbose            bool
}

// NewYTDLPSource creates a yt-dlp backed source. Streams are staged in tempDir.
func NewYTDLPSource(tempDir, cookiesFile, cookiesFromBrowser string, verbose bool) *YTDLPSource {
	return &YTDLPSource{
		tempDir:            tempDir,
		cookiesFile:        cookiesFile,
		cookiesFromBrowser: cookiesFromBrowser,
		verbose:            verbose,
	}
}

// command returns a yt-dlp command with authentication applied when requested
func (s *YTDLPSource) command(useAuth bool) *ytdlp.Command {
	dl := ytdlp.New().NoWarnings()
	if useAuth {
		if s.cookiesFile != "" {
			dl = dl.Cookies(s.cookiesFile)
		}
		if s.cookiesFromBrowser != "" {
			dl = dl.CookiesFromBrowser(s.cookiesFromBrowser)
		}
	}
	return dl
}

// Playlist resolves a playlist with a flat extraction
func (s *YTDLPSource) Playlist(ctx context.Context, playlistURL string, useAuth bool) (*Playlist, error) {
	dl := s.command(useAuth).
		FlatPlaylist().
		DumpSingleJSON().
		SkipDownload()

	result, err := dl.Run(ctx, playlistURL)
	if err != nil {
		if s.verbose && result != nil {
			fmt.Printf("Stderr: %s\n", result.Stderr)
		}
		return nil, fmt.Errorf("%w: yt-dlp playlist extraction: %w", ErrResolution, err)
	}

	return parsePlaylistJSON(result.Stdout, playlistURL)
}

// parsePlaylistJSON converts yt-dlp's flat playlist dump into a Playlist
func parsePlaylistJSON(data, playlistURL string) (*Playlist, error) {
	if !gjson.Valid(data) {
		return nil, fmt.Errorf("%w: invalid yt-dlp output", ErrResolution)
	}

	root := gjson.Parse(data)
	if root.Get("_type").String() != "playlist" {
		return nil, fmt.Errorf("%w: %s is not a playlist", ErrResolution, playlistURL)
	}

	playlist := &Playlist{
		ID:    root.Get("id").String(),
		Title: root.Get("title").String(),
		URL:   playlistURL,
	}

	for i, entry := range root.Get("entries").Array() {
		id := entry.Get("id").String()
		author := entry.Get("channel").String()
		if author == "" {
			author = entry.Get("uploader").String()
		}
		thumbs := entry.Get("thumbnails").Array()
		thumb := ""
		if len(thumbs) > 0 {
			thumb = thumbs[len(thumbs)-1].Get("url").String()
		}
		playlist.Items = append(playlist.Items, Item{
			ID:           id,
			Index:        i,
			Title:        entry.Get("title").String(),
			Author:       author,
			ThumbnailURL: thumb,
			WatchURL:     watchURL(id),
			Duration:     time.Duration(entry.Get("duration").Float() * float64(time.Second)),
		})
	}
	return playlist, nil
}

// AudioStream asks yt-dlp which audio-only m4a stream it would download
func (s *YTDLPSource) AudioStream(ctx context.Context, item Item, useAuth bool) (StreamHandle, error) {
	dl := s.command(useAuth).
		Format(audioFormatSelector).
		DumpSingleJSON().
		NoPlaylist().
		SkipDownload()

	result, err := dl.Run(ctx, item.WatchURL)
	if err != nil {
		if result != nil && strings.Contains(result.Stderr, "Requested format is not available") {
			return nil, ErrStreamSelection
		}
		return nil, fmt.Errorf("%w: yt-dlp video extraction: %w", ErrResolution, err)
	}

	info := gjson.Parse(result.Stdout)
	size := info.Get("filesize").Int()
	if size == 0 {
		size = info.Get("filesize_approx").Int()
	}
	ext := info.Get("ext").String()
	if ext == "" {
		ext = "m4a"
	}

	return &ytdlpStream{
		source:  s,
		useAuth: useAuth,
		url:     item.WatchURL,
		id:      item.ID,
		ext:     ext,
		size:    size,
	}, nil
}

type ytdlpStream struct {
	source  *YTDLPSource
	useAuth bool
	url     string
	id      string
	ext     string
	size    int64
}

func (s *ytdlpStream) Ext() string {
	return s.ext
}

func (s *ytdlpStream) Size() int64 {
	return s.size
}

// Open downloads the stream into the staging directory and returns a reader
// that deletes the staged file on Close.
func (s *ytdlpStream) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := EnsureDirs(s.source.tempDir); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	staged := filepath.Join(s.source.tempDir, s.id+"."+uuid.NewString()+"."+s.ext)
	dl := s.source.command(s.useAuth).
		Format(audioFormatSelector).
		NoPlaylist().
		ForceOverwrites().
		Output(staged)

	result, err := dl.Run(ctx, s.url)
	if err != nil {
		_ = os.Remove(staged)
		stderr := ""
		if result != nil {
			stderr = result.Stderr
		}
		return nil, fmt.Errorf("yt-dlp download failed: %w\nOutput: %s", err, stderr)
	}

	f, err := os.Open(staged)
	if err != nil {
		return nil, fmt.Errorf("opening staged download: %w", err)
	}
	return &stagedFile{File: f}, nil
}

type stagedFile struct {
	*os.File
}

func (f *stagedFile) Close() error {
	err := f.File.Close()
	_ = os.Remove(f.Name())
	return err
}

// InstallYTDLP makes sure a yt-dlp binary is available
func InstallYTDLP(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("installing yt-dlp: %w", err)
	}
	return nil
}
