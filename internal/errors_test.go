package internal

import (
	"errors"
	"testing"
)

func TestItemErrorChain(t *testing.T) {
	first := Item{ID: "a", Title: "Song"}
	err := error(&ItemError{
		Stage: StageDownload,
		Item:  Item{ID: "b", Title: "Song"},
		Err:   &CollisionError{Path: "out/Band - Song.m4a", First: first},
	})

	if !errors.Is(err, ErrCollision) {
		t.Error("collision not visible through ItemError")
	}

	var collision *CollisionError
	if !errors.As(err, &collision) || collision.First.ID != "a" {
		t.Errorf("errors.As() = %+v", collision)
	}

	tagged := error(&ItemError{Stage: StageTag, Err: &TagError{Kind: TagIOFailure, Err: errBoom}})
	var tagErr *TagError
	if !errors.As(tagged, &tagErr) || !errors.Is(tagged, errBoom) {
		t.Errorf("tag error chain broken: %v", tagged)
	}
}

func TestSummaryMessage(t *testing.T) {
	if got := SummaryMessage(0); got != "" {
		t.Errorf("SummaryMessage(0) = %q, want empty", got)
	}
	want := "2 errors occurred. Running with --auth (or -a) may solve some of them."
	if got := SummaryMessage(2); got != want {
		t.Errorf("SummaryMessage(2) = %q, want %q", got, want)
	}
}
