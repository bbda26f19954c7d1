package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrResolution is returned when a playlist or an item cannot be resolved
	ErrResolution = errors.New("resolution failed")
	// ErrStreamSelection is returned when an item has no usable audio stream
	ErrStreamSelection = errors.New("no audio-only stream available")
	// ErrDownload is returned when the stream bytes could not be written to disk
	ErrDownload = errors.New("download failed")
	// ErrCollision is returned when two items map to the same destination in one run
	ErrCollision = errors.New("destination already written in this run")
)

// Stage names the pipeline step an item failed in
type Stage string

const (
	StageStream   Stage = "stream"
	StageDownload Stage = "download"
	StageTag      Stage = "tag"
)

// ItemError is a failure scoped to a single playlist item
type ItemError struct {
	Stage Stage
	Item  Item
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s %q (%s): %v", e.Stage, e.Item.Title, e.Item.WatchURL, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// CollisionError reports two items resolving to the same output file
type CollisionError struct {
	Path  string
	First Item
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s already written by %q", e.Path, e.First.Title)
}

func (e *CollisionError) Is(target error) bool {
	return target == ErrCollision
}

// TagErrorKind classifies tagging failures
type TagErrorKind int

const (
	TagIOFailure TagErrorKind = iota
	TagCoverFetchFailure
)

func (k TagErrorKind) String() string {
	if k == TagCoverFetchFailure {
		return "cover fetch failure"
	}
	return "io failure"
}

// TagError is returned by the tagger
type TagError struct {
	Kind TagErrorKind
	Path string
	Err  error
}

func (e *TagError) Error() string {
	return fmt.Sprintf("tagging %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *TagError) Unwrap() error {
	return e.Err
}

// SummaryMessage returns the final line printed after a run with failures.
// It is empty when nothing failed.
func SummaryMessage(errCount int) string {
	if errCount <= 0 {
		return ""
	}
	return fmt.Sprintf("%d errors occurred. Running with --auth (or -a) may solve some of them.", errCount)
}
