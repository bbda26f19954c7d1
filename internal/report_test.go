package internal

import (
	"bytes"
	"strings"
	"testing"
)

func TestReportMarkdown(t *testing.T) {
	report := &Report{
		Playlist:  &Playlist{Title: "Demo"},
		OutputDir: "Demo",
		Outcomes: []Outcome{
			{Item: Item{Title: "Song A"}, Status: StatusDownloaded, Bytes: 2048},
			{Item: Item{Title: "Song B"}, Status: StatusSkipped},
			{Item: Item{Title: "Song C", WatchURL: "https://www.youtube.com/watch?v=c"}, Status: StatusFailed},
		},
		Errors: 1,
	}

	md := ReportMarkdown(report)
	for _, want := range []string{"# Demo", "**Downloaded:** 1 (2.0 kB)", "**Skipped:** 1", "**Failed:** 1", "- Song C (https://www.youtube.com/watch?v=c)"} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "- Song A (") {
		t.Error("successful item listed as failure")
	}
}

func TestUIManagerStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	ui := NewUIManagerTo(&out, &errOut, false, true)

	ui.Printf("progress %d\n", 1)
	ui.Verbose("detail\n")
	ui.Warnf("no cookies\n")
	ui.Errorf("item failed\n")

	if out.Len() != 0 {
		t.Errorf("quiet UI wrote to stdout: %q", out.String())
	}
	if got := errOut.String(); got != "Warning: no cookies\nError: item failed\n" {
		t.Errorf("stderr = %q", got)
	}

	bar := ui.NewBytesBar(10, "song")
	if _, ok := bar.(*SilentProgressBar); !ok {
		t.Errorf("expected silent bar off a terminal, got %T", bar)
	}
}
