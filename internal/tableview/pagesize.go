package tableview

import (
	"fmt"
	"strconv"
	"strings"
)

// PageSize is the number of filtered rows a screen displays. All shows every
// row.
type PageSize int

// All disables truncation.
const All PageSize = -1

// DefaultPageSizes is the cycle offered by list screens.
var DefaultPageSizes = []PageSize{10, 25, 50, 100, All}

// ParsePageSize accepts "all" or a non-negative integer.
func ParsePageSize(value string) (PageSize, error) {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, "all") {
		return All, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("page size %q: want \"all\" or a number", value)
	}
	if n < 0 {
		return 0, fmt.Errorf("page size %q: must not be negative", value)
	}
	return PageSize(n), nil
}

// String renders the size the way the selector shows it.
func (p PageSize) String() string {
	if p == All {
		return "all"
	}
	return strconv.Itoa(int(p))
}

// IsAll reports whether the size disables truncation.
func (p PageSize) IsAll() bool {
	return p == All
}

// Cycle returns the option after p. Sizes not in options restart the cycle.
func (p PageSize) Cycle(options []PageSize) PageSize {
	if len(options) == 0 {
		options = DefaultPageSizes
	}
	for i, opt := range options {
		if opt == p {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

// Take returns the displayed prefix of view.
func Take[T any](view []T, size PageSize) []T {
	if size == All {
		return view
	}
	n := int(size)
	if n < 0 {
		n = 0
	}
	if n > len(view) {
		n = len(view)
	}
	return view[:n]
}
