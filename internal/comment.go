package internal

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
)

// DefaultComment is written into every tagged file unless configured otherwise
const DefaultComment = "generated by playlist-downloader"

// CommentData for template injection
type CommentData struct {
	Title  string
	Album  string
	Artist string
}

// CommentManager renders the comment tag from a template string or file
type CommentManager struct {
	commentFile   string
	commentString string
}

// NewCommentManager creates a comment manager. An empty setting uses
// DefaultComment; a setting naming an existing file is read on each render.
func NewCommentManager(setting string) *CommentManager {
	cm := &CommentManager{commentString: DefaultComment}

	if setting != "" {
		if IsLikelyFilePath(setting) && FileExists(setting) {
			cm.commentFile = setting
			cm.commentString = ""
		} else {
			cm.commentString = setting
		}
	}

	return cm
}

// Render builds the comment for one item
func (cm *CommentManager) Render(data CommentData) (string, error) {
	if cm == nil {
		return DefaultComment, nil
	}

	tmplContent := cm.commentString
	if cm.commentFile != "" {
		content, err := os.ReadFile(cm.commentFile)
		if err != nil {
			return "", fmt.Errorf("reading comment template: %w", err)
		}
		tmplContent = strings.TrimRight(string(content), "\n")
	}

	tmpl, err := template.New("comment").Parse(tmplContent)
	if err != nil {
		return "", fmt.Errorf("parsing comment template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing comment template: %w", err)
	}

	return buf.String(), nil
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a file path
func IsLikelyFilePath(s string) bool {
	if strings.Contains(s, "/") || strings.Contains(s, "\\") {
		return true
	}

	if strings.HasSuffix(s, ".txt") || strings.HasSuffix(s, ".tmpl") {
		return true
	}

	return !strings.Contains(s, " ") && !strings.Contains(s, "\n")
}
