package internal

import (
	"fmt"
	"time"
)

// Playlist is a resolved remote playlist
type Playlist struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Items []Item `json:"items"`
}

// Item is one playlist entry. Title and Author come straight from the
// remote service and are neither filesystem-safe nor unique.
type Item struct {
	ID           string        `json:"id"`
	Index        int           `json:"index"`
	Title        string        `json:"title"`
	Author       string        `json:"author"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty"`
	WatchURL     string        `json:"watch_url"`
	Duration     time.Duration `json:"duration,omitempty"`
}

// OutcomeStatus is the terminal state of one item in a run
type OutcomeStatus int

const (
	StatusFailed OutcomeStatus = iota
	StatusDownloaded
	StatusSkipped
)

// String returns a human-readable representation of the status
func (s OutcomeStatus) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Outcome records what happened to a single item
type Outcome struct {
	Item   Item
	Status OutcomeStatus
	Path   string
	Bytes  int64
	Err    error
}

// RunOptions controls a single playlist run
type RunOptions struct {
	SkipExisting  bool
	UseAuth       bool
	Window        Window
	IncludeCovers bool
	OutputDir     string
}

// Report summarizes a finished (or interrupted) run
type Report struct {
	RunID     string
	Playlist  *Playlist
	OutputDir string
	Outcomes  []Outcome
	Errors    int
	StartedAt time.Time
	Duration  time.Duration
}

// Count returns the number of outcomes with the given status
func (r *Report) Count(status OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// TotalBytes returns the number of bytes written during the run
func (r *Report) TotalBytes() int64 {
	var total int64
	for _, o := range r.Outcomes {
		total += o.Bytes
	}
	return total
}

// String returns a one-line summary of the report
func (r *Report) String() string {
	return fmt.Sprintf("Report{run=%s, dir=%s, downloaded=%d, skipped=%d, errors=%d}",
		r.RunID, r.OutputDir, r.Count(StatusDownloaded), r.Count(StatusSkipped), r.Errors)
}
