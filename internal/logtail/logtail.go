package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// maxLines <= 0 returns the whole file. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Level is a normalized log level.
type Level string

const (
	LevelUnknown Level = ""
	LevelTrace   Level = "trace"
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelFatal   Level = "fatal"
)

// Rank orders levels for filtering. Unknown ranks lowest.
func (l Level) Rank() int {
	switch l {
	case LevelTrace:
		return 1
	case LevelDebug:
		return 2
	case LevelInfo:
		return 3
	case LevelWarn:
		return 4
	case LevelError:
		return 5
	case LevelFatal:
		return 6
	}
	return 0
}

var consoleLevels = map[string]Level{
	"TRC": LevelTrace,
	"DBG": LevelDebug,
	"INF": LevelInfo,
	"WRN": LevelWarn,
	"ERR": LevelError,
	"FTL": LevelFatal,
	"PNC": LevelFatal,
}

// Entry is one parsed log line.
type Entry struct {
	Raw     string
	Time    string
	Level   Level
	Message string
	Fields  string
}

// Parse understands lockdash's console lines
// ("2006-01-02 15:04:05 INF message key=value") and zerolog JSON lines.
// Lines in neither shape come back with only Raw and Message set.
func Parse(line string) Entry {
	entry := Entry{Raw: line, Message: line}
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		return parseJSON(entry, trimmed)
	}

	parts := strings.SplitN(trimmed, " ", 4)
	if len(parts) < 3 {
		return entry
	}
	level, ok := consoleLevels[parts[2]]
	if !ok {
		return entry
	}
	entry.Time = parts[0] + " " + parts[1]
	entry.Level = level
	entry.Message = ""
	if len(parts) == 4 {
		entry.Message, entry.Fields = splitFields(parts[3])
	}
	return entry
}

func parseJSON(entry Entry, line string) Entry {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return entry
	}
	if v, ok := fields["level"].(string); ok {
		entry.Level = Level(strings.ToLower(v))
		if entry.Level == "panic" {
			entry.Level = LevelFatal
		}
	}
	if v, ok := fields["time"].(string); ok {
		entry.Time = v
	}
	if v, ok := fields["message"].(string); ok {
		entry.Message = v
	}
	return entry
}

// splitFields separates the message from trailing key=value pairs.
func splitFields(rest string) (string, string) {
	words := strings.Fields(rest)
	cut := len(words)
	for cut > 0 && strings.Contains(words[cut-1], "=") {
		cut--
	}
	return strings.Join(words[:cut], " "), strings.Join(words[cut:], " ")
}

// Filter keeps entries at or above min. LevelUnknown keeps everything.
func Filter(entries []Entry, min Level) []Entry {
	if min == LevelUnknown {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Level == LevelUnknown || e.Level.Rank() >= min.Rank() {
			out = append(out, e)
		}
	}
	return out
}
