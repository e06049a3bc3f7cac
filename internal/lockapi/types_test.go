package lockapi

import (
	"testing"
	"time"
)

func TestModeAndDoorHelpers(t *testing.T) {
	if !ModeEntryExit.Valid() || !ModeRegistration.Valid() || Mode("x").Valid() {
		t.Fatalf("Mode.Valid mismatch")
	}
	if ModeEntryExit.Toggle() != ModeRegistration || ModeRegistration.Toggle() != ModeEntryExit {
		t.Fatalf("Mode.Toggle mismatch")
	}
	if !DoorLocked.Valid() || !DoorUnlocked.Valid() || DoorStatus("open").Valid() {
		t.Fatalf("DoorStatus.Valid mismatch")
	}
}

func TestConfigUpdateEmpty(t *testing.T) {
	if !(ConfigUpdate{}).Empty() {
		t.Fatalf("zero ConfigUpdate should be empty")
	}
	port := "/dev/ttyUSB1"
	if (ConfigUpdate{UARTPort: &port}).Empty() {
		t.Fatalf("ConfigUpdate with port should not be empty")
	}
}

func TestAccessStatsCloneAndRate(t *testing.T) {
	var nilStats *AccessStats
	if nilStats.Clone() != nil || nilStats.SuccessRate() != 0 {
		t.Fatalf("nil stats helpers should be zero")
	}

	orig := &AccessStats{
		TotalAccesses:      4,
		SuccessfulAccesses: 3,
		ByMethod:           map[string]int{"face": 1},
		RecentLogs:         []AccessLog{{ID: 1}},
	}
	dup := orig.Clone()
	dup.ByMethod["face"] = 99
	dup.RecentLogs[0].ID = 42
	if orig.ByMethod["face"] != 1 || orig.RecentLogs[0].ID != 1 {
		t.Fatalf("Clone shares memory with original")
	}
	if got := orig.SuccessRate(); got != 0.75 {
		t.Fatalf("SuccessRate = %v, want 0.75", got)
	}
}

func TestParseTimeLayouts(t *testing.T) {
	if parseTime("2025-12-13T10:11:12Z").IsZero() {
		t.Fatalf("parseTime should parse RFC3339")
	}
	got := parseTime("2025-12-13T10:11:12.123456")
	if got.IsZero() {
		t.Fatalf("parseTime should parse backend timestamp")
	}
	if got.Year() != 2025 || got.Month() != time.December || got.Day() != 13 {
		t.Fatalf("parseTime = %v, want 2025-12-13", got)
	}
	if !parseTime("").IsZero() || !parseTime("yesterday").IsZero() {
		t.Fatalf("parseTime should return zero for unparseable input")
	}
	if (AccessLog{Timestamp: "2025-12-13T10:11:12"}).ParsedTime().IsZero() {
		t.Fatalf("ParsedTime should parse naive timestamps")
	}
}
