package tableview

import (
	"fmt"
	"strings"
	"time"
)

// NoFilter is the structured filter value that disables a dimension. An empty
// value behaves the same way.
const NoFilter = "all"

// Predicate is one structured filter dimension of a screen (category, status,
// date range). Options lists the values a selector cycles through; an empty
// Options means the value is typed freely.
type Predicate[T any] struct {
	Key     string
	Label   string
	Options []string
	Match   func(item T, value string) bool
}

// Filter pairs the derived search fields of a screen with its structured
// predicates.
type Filter[T any] struct {
	// Search returns the strings the free-text query is matched against.
	Search     func(item T) []string
	Predicates []Predicate[T]
}

// Active reports whether value restricts its dimension.
func Active(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed != "" && !strings.EqualFold(trimmed, NoFilter)
}

// Matches reports whether item passes the query and every active structured
// value.
func (f Filter[T]) Matches(item T, query string, structured map[string]string) bool {
	return f.matchesQuery(item, normalizeQuery(query)) && f.matchesStructured(item, structured)
}

// Apply returns the items of raw that pass the query and the structured
// filters, in their original order. raw is never modified.
func (f Filter[T]) Apply(raw []T, query string, structured map[string]string) []T {
	needle := normalizeQuery(query)
	out := make([]T, 0, len(raw))
	for _, item := range raw {
		if !f.matchesQuery(item, needle) {
			continue
		}
		if !f.matchesStructured(item, structured) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Predicate returns the structured dimension registered under key.
func (f Filter[T]) Predicate(key string) (Predicate[T], bool) {
	for _, p := range f.Predicates {
		if p.Key == key {
			return p, true
		}
	}
	return Predicate[T]{}, false
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func (f Filter[T]) matchesQuery(item T, needle string) bool {
	if needle == "" {
		return true
	}
	if f.Search == nil {
		return false
	}
	for _, field := range f.Search(item) {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (f Filter[T]) matchesStructured(item T, structured map[string]string) bool {
	for _, p := range f.Predicates {
		value := structured[p.Key]
		if !Active(value) || p.Match == nil {
			continue
		}
		if !p.Match(item, strings.TrimSpace(value)) {
			return false
		}
	}
	return true
}

// Equals builds a case-insensitive equality predicate over one derived field.
func Equals[T any](key, label string, field func(T) string, options ...string) Predicate[T] {
	return Predicate[T]{
		Key:     key,
		Label:   label,
		Options: options,
		Match: func(item T, value string) bool {
			return strings.EqualFold(strings.TrimSpace(field(item)), value)
		},
	}
}

// DateRange builds a predicate that keeps items whose date falls inside a
// "YYYY-MM-DD..YYYY-MM-DD" range. Either bound may be omitted; both are
// inclusive. Items without a date and malformed ranges never match.
func DateRange[T any](key, label string, field func(T) time.Time) Predicate[T] {
	return Predicate[T]{
		Key:   key,
		Label: label,
		Match: func(item T, value string) bool {
			from, to, err := ParseDateRange(value)
			if err != nil {
				return false
			}
			when := field(item)
			if when.IsZero() {
				return false
			}
			day := truncateDay(when)
			if !from.IsZero() && day.Before(from) {
				return false
			}
			if !to.IsZero() && day.After(to) {
				return false
			}
			return true
		},
	}
}

const dateLayout = "2006-01-02"

// ParseDateRange splits a "from..to" value into day bounds. A single date
// means that day only.
func ParseDateRange(value string) (from, to time.Time, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("empty date range")
	}
	start, end, found := strings.Cut(value, "..")
	if !found {
		end = start
	}
	if s := strings.TrimSpace(start); s != "" {
		if from, err = time.ParseInLocation(dateLayout, s, time.UTC); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse range start %q: %w", s, err)
		}
	}
	if e := strings.TrimSpace(end); e != "" {
		if to, err = time.ParseInLocation(dateLayout, e, time.UTC); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse range end %q: %w", e, err)
		}
	}
	if from.IsZero() && to.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("date range %q has no bounds", value)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("date range %q ends before it starts", value)
	}
	return from, to, nil
}

// truncateDay keeps the calendar date of t in its own location.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
