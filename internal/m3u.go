package internal

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/grafov/m3u8"
)

// DurationProber measures files whose duration the source did not report
type DurationProber interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// M3UName is the index file written into the playlist directory
const M3UName = "playlist.m3u8"

// WriteM3U writes an index of the run's files into the output directory.
// Entries are relative to the directory and keep playlist order. Failed
// items are left out.
func WriteM3U(ctx context.Context, report *Report, prober DurationProber) (string, error) {
	var outcomes []Outcome
	for _, o := range report.Outcomes {
		if o.Status != StatusFailed && o.Path != "" {
			outcomes = append(outcomes, o)
		}
	}

	capacity := uint(max(len(outcomes), 1))
	p, err := m3u8.NewMediaPlaylist(0, capacity)
	if err != nil {
		return "", fmt.Errorf("creating m3u8 playlist: %w", err)
	}

	for _, o := range outcomes {
		duration := o.Item.Duration
		if duration == 0 && prober != nil {
			if d, err := prober.Duration(ctx, o.Path); err == nil {
				duration = d
			} else {
				RunLogDebug("probing %s: %v", o.Path, err)
			}
		}

		rel, err := filepath.Rel(report.OutputDir, o.Path)
		if err != nil {
			rel = filepath.Base(o.Path)
		}
		title := o.Item.Title
		if o.Item.Author != "" {
			title = o.Item.Author + " - " + o.Item.Title
		}
		if err := p.Append(filepath.ToSlash(rel), math.Round(duration.Seconds()), title); err != nil {
			return "", fmt.Errorf("adding %s to m3u8: %w", rel, err)
		}
	}
	p.Close()

	path := filepath.Join(report.OutputDir, M3UName)
	if err := os.WriteFile(path, p.Encode().Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing m3u8: %w", err)
	}
	return path, nil
}
