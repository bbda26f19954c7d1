package internal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Prober reads media properties with ffprobe
type Prober struct {
	cmdRunner CommandRunner
}

// NewProber creates a new ffprobe wrapper
func NewProber(cmdRunner CommandRunner) *Prober {
	return &Prober{cmdRunner: cmdRunner}
}

// Duration returns the duration of an audio file
func (p *Prober) Duration(ctx context.Context, audioFile string) (time.Duration, error) {
	output, err := p.cmdRunner.Run(ctx, "ffprobe",
		"-i", audioFile,
		"-show_entries", "format=duration",
		"-v", "quiet",
		"-of", "csv=p=0")

	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w\nOutput: %s", err, string(output))
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration: %w", err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}
