package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if lines != nil {
		t.Fatalf("Read() = %v, want nil", lines)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Entry
	}{
		{
			name:  "console with fields",
			input: "2026-10-17 10:04:05 WRN fetch state failed component=store error=\"refused\"",
			want: Entry{
				Time:    "2026-10-17 10:04:05",
				Level:   LevelWarn,
				Message: "fetch state failed",
				Fields:  "component=store error=\"refused\"",
			},
		},
		{
			name:  "console without message",
			input: "2026-10-17 10:04:05 INF",
			want:  Entry{Time: "2026-10-17 10:04:05", Level: LevelInfo},
		},
		{
			name:  "json",
			input: `{"level":"error","time":"2026-10-17T10:04:05Z","message":"door command failed","door":"unlocked"}`,
			want:  Entry{Time: "2026-10-17T10:04:05Z", Level: LevelError, Message: "door command failed"},
		},
		{
			name:  "unrecognised",
			input: "panic: runtime error",
			want:  Entry{Message: "panic: runtime error"},
		},
		{
			name:  "broken json",
			input: `{"level":`,
			want:  Entry{Message: `{"level":`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			tt.want.Raw = tt.input
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	entries := []Entry{
		{Level: LevelDebug, Message: "d"},
		{Level: LevelInfo, Message: "i"},
		{Level: LevelWarn, Message: "w"},
		{Level: LevelUnknown, Message: "raw"},
		{Level: LevelError, Message: "e"},
	}

	got := Filter(entries, LevelWarn)
	var msgs []string
	for _, e := range got {
		msgs = append(msgs, e.Message)
	}
	if strings.Join(msgs, ",") != "w,raw,e" {
		t.Fatalf("Filter(warn) = %v, want [w raw e]", msgs)
	}

	if len(Filter(entries, LevelUnknown)) != len(entries) {
		t.Fatalf("Filter(unknown) dropped entries")
	}
}
