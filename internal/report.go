package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ReportMarkdown renders a finished run as markdown
func ReportMarkdown(r *Report) string {
	var b strings.Builder

	title := "playlist"
	if r.Playlist != nil {
		title = r.Playlist.Title
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- **Directory:** `%s`\n", r.OutputDir)
	fmt.Fprintf(&b, "- **Downloaded:** %d (%s)\n", r.Count(StatusDownloaded), humanize.Bytes(uint64(r.TotalBytes())))
	fmt.Fprintf(&b, "- **Skipped:** %d\n", r.Count(StatusSkipped))
	fmt.Fprintf(&b, "- **Failed:** %d\n", r.Errors)
	fmt.Fprintf(&b, "- **Took:** %s\n", r.Duration.Round(time.Second))

	if r.Errors > 0 {
		b.WriteString("\n## Failures\n\n")
		for _, o := range r.Outcomes {
			if o.Status != StatusFailed {
				continue
			}
			fmt.Fprintf(&b, "- %s (%s)\n", o.Item.Title, o.Item.WatchURL)
		}
	}

	return b.String()
}

// RenderReport renders the run summary for the terminal, falling back to
// plain markdown when rendering fails
func RenderReport(r *Report) string {
	md := ReportMarkdown(r)
	rendered, err := RenderMarkdown(md)
	if err != nil {
		return md
	}
	return rendered
}
