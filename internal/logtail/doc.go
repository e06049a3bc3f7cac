// Package logtail reads the tail of lockdash's own log file for the TUI log
// pane.
//
// Read keeps a ring buffer of maxLines, so it scans the file once and uses
// O(maxLines) memory whatever the file size. Missing files return no lines
// and no error; the log file is created lazily by the logger.
//
// Parse splits a line written by internal/logging into time, level, message
// and trailing fields. Both the console format and zerolog JSON are
// recognised. Unrecognised lines are passed through untouched.
package logtail
