package internal

import (
	"fmt"

	"github.com/samber/lo"
)

// Window selects a contiguous range of playlist positions. A nil bound is
// unbounded.
type Window struct {
	Start *int
	Stop  *int
}

// ParseWindow builds a Window from CLI values, rejecting negative bounds
func ParseWindow(start, stop int, hasStart, hasStop bool) (Window, error) {
	var w Window
	if hasStart {
		if start < 0 {
			return Window{}, fmt.Errorf("invalid --start %d: must not be negative", start)
		}
		w.Start = lo.ToPtr(start)
	}
	if hasStop {
		if stop < 0 {
			return Window{}, fmt.Errorf("invalid --stop %d: must not be negative", stop)
		}
		w.Stop = lo.ToPtr(stop)
	}
	return w, nil
}

// Apply returns the items inside the window, in order
func (w Window) Apply(items []Item) []Item {
	return ApplyWindow(w, items)
}

// ApplyWindow slices items to the half-open window. Out-of-range bounds are
// clamped and an empty or inverted window yields an empty result.
func ApplyWindow[T any](w Window, items []T) []T {
	start := 0
	if w.Start != nil {
		start = max(*w.Start, 0)
	}
	stop := len(items)
	if w.Stop != nil {
		stop = max(*w.Stop, 0)
	}
	if w.Start == nil && w.Stop == nil {
		return items
	}
	return lo.Slice(items, start, stop)
}

// String renders the window in slice notation
func (w Window) String() string {
	s, e := "", ""
	if w.Start != nil {
		s = fmt.Sprint(*w.Start)
	}
	if w.Stop != nil {
		e = fmt.Sprint(*w.Stop)
	}
	return "[" + s + ":" + e + "]"
}
