package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header drops the
	// user name and screen tabs.
	LayoutCompactWidth = 100

	// LayoutDetailWidth is the minimum width to show the detail pane next to
	// the table.
	LayoutDetailWidth = 120

	// LayoutExtraWideWidth is the threshold for extra-wide layouts.
	LayoutExtraWideWidth = 160
)

// minColumnWidth is the narrowest a table column is squeezed to.
const minColumnWidth = 4

// Activity log limits.
const (
	// ActivityLineLimit is the number of log lines read from the end of the
	// log file.
	ActivityLineLimit = 2000
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// LoginTimeout bounds a sign-in request.
	LoginTimeout = 15 * time.Second
)
