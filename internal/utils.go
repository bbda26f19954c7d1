package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var playlistIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ParsePlaylistArg normalizes a playlist URL or bare playlist ID into a
// playlist URL and its ID
func ParsePlaylistArg(arg string) (string, string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", "", errors.New("no playlist given")
	}

	if strings.HasPrefix(arg, "https://") || strings.HasPrefix(arg, "http://") {
		id, err := getPlaylistID(arg)
		if err != nil {
			return "", "", err
		}
		return "https://www.youtube.com/playlist?list=" + id, id, nil
	}

	if IsValidPlaylistID(arg) {
		return "https://www.youtube.com/playlist?list=" + arg, arg, nil
	}

	return "", "", fmt.Errorf("'%s' doesn't look like a playlist URL or ID", arg)
}

// IsValidPlaylistID checks if a string looks like a valid YouTube playlist ID
func IsValidPlaylistID(id string) bool {
	if !playlistIDPattern.MatchString(id) {
		return false
	}

	// Common playlist prefixes: PL, UU, FL, RD, etc.
	playlistPrefixes := []string{"PL", "UU", "FL", "RD", "LP", "BP", "QL", "SV", "EL", "LL", "UC"}
	for _, prefix := range playlistPrefixes {
		if strings.HasPrefix(id, prefix) {
			// 16 or 32 characters after PL, 22 after UU and the other channel prefixes
			return len(id) == 18 || len(id) == 24 || len(id) == 34 || len(id) == 36
		}
	}

	// Music album playlists (OLAK5uy_, RDCLAK5uy_)
	if strings.HasPrefix(id, "OLAK5uy_") || strings.HasPrefix(id, "RDCLAK5uy_") {
		return len(id) == 41 || len(id) == 43
	}

	return false
}

// getPlaylistID extracts playlist ID from YouTube URLs
func getPlaylistID(youtubeURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(youtubeURL))
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}

	switch u.Host {
	case "www.youtube.com", "youtube.com", "m.youtube.com", "music.youtube.com":
	default:
		return "", fmt.Errorf("not a YouTube URL: %s", youtubeURL)
	}

	if list := u.Query().Get("list"); list != "" {
		if playlistIDPattern.MatchString(list) {
			return list, nil
		}
		return "", fmt.Errorf("invalid playlist ID format: %s", list)
	}

	return "", fmt.Errorf("could not extract playlist ID from URL: %s", youtubeURL)
}

// clipboardPlaylist returns the clipboard content when it holds a playlist
var clipboardPlaylist = func() string {
	text, err := clipboard.ReadAll()
	if err != nil {
		return ""
	}
	text = strings.TrimSpace(text)
	if _, _, err := ParsePlaylistArg(text); err != nil {
		return ""
	}
	return text
}

// PromptPlaylistURL asks for a playlist URL, offering the clipboard content
// as default. It is a variable so tests can replace it.
var PromptPlaylistURL = func() (string, error) {
	var answer string
	prompt := &survey.Input{
		Message: "Playlist URL to download:",
		Default: clipboardPlaylist(),
	}
	if err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required)); err != nil {
		return "", fmt.Errorf("reading playlist URL: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}

	if width > 10 {
		return width - 4
	}

	return width
}

// RenderMarkdown renders markdown content with glamour
func RenderMarkdown(content string) (string, error) {
	width := getTerminalWidth()
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	renderedContent, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return renderedContent, nil
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// EnsureDirs creates directories if needed
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if !FileExists(dir) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

// CleanupTempDir purges files from a temporary directory
func CleanupTempDir(tempDir string) error {
	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return fmt.Errorf("reading temp directory: %w", err)
	}

	for _, entry := range entries {
		path := tempDir + string(os.PathSeparator) + entry.Name()
		if err := os.Remove(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove temporary file %s: %v\n", path, err)
		}
	}
	return nil
}
