package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which panels stack vertically.
	LayoutCompactWidth = 90
)

// Log pane limits.
const (
	// LogTailLines is the number of lines read from the end of the log file.
	LogTailLines = 500
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// ActionTimeout bounds a single operator action.
	ActionTimeout = 10 * time.Second
)

// recentEventsShown is the number of push events listed on the dashboard.
const recentEventsShown = 8
