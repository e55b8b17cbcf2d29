package tableview

import (
	"fmt"
	"maps"
	"sort"
	"strings"
)

// State is the per-screen filter state. It lives as long as the screen and is
// changed only by user input.
type State struct {
	SearchText string
	Structured map[string]string
	PageSize   PageSize
}

// NewState returns the state a screen starts with.
func NewState(size PageSize) State {
	return State{Structured: map[string]string{}, PageSize: size}
}

// WithStructured returns a copy of s with key set to value. Setting a value
// that disables the dimension removes the key.
func (s State) WithStructured(key, value string) State {
	next := s
	next.Structured = maps.Clone(s.Structured)
	if next.Structured == nil {
		next.Structured = map[string]string{}
	}
	if Active(value) {
		next.Structured[key] = strings.TrimSpace(value)
	} else {
		delete(next.Structured, key)
	}
	return next
}

// ActiveFilters lists the structured values in effect as key=value pairs,
// sorted by key.
func (s State) ActiveFilters() []string {
	keys := make([]string, 0, len(s.Structured))
	for k, v := range s.Structured {
		if Active(v) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+s.Structured[k])
	}
	return out
}

// Result is the derived view of one render.
type Result[T any] struct {
	Filtered  []T
	Displayed []T
	Summary   string
}

// Apply derives the filtered and displayed views of raw for state.
func Apply[T any](raw []T, filter Filter[T], state State) Result[T] {
	filtered := filter.Apply(raw, state.SearchText, state.Structured)
	displayed := Take(filtered, state.PageSize)
	return Result[T]{
		Filtered:  filtered,
		Displayed: displayed,
		Summary:   Summary(len(displayed), len(filtered)),
	}
}

// Summary formats the "Showing X to Y of Z entries" line.
func Summary(displayed, filtered int) string {
	if displayed < 0 {
		displayed = 0
	}
	if filtered < displayed {
		filtered = displayed
	}
	first := 0
	if displayed > 0 {
		first = 1
	}
	return fmt.Sprintf("Showing %d to %d of %d entries", first, displayed, filtered)
}
