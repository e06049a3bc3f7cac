package ui

import (
	"testing"

	"github.com/five82/lockdash/internal/logtail"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" || names[1] != "Kanagawa" || names[2] != "Slate" {
		t.Fatalf("ThemeNames() = %v", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme(Slate) = %q, want Nightfox", got)
	}
	if got := NextTheme("unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(unknown) = %q, want Nightfox", got)
	}
}

func TestGetThemeFallsBack(t *testing.T) {
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Dracula) = %q, want Nightfox", got)
	}
}

func TestThemesColorEveryStatus(t *testing.T) {
	statuses := []string{"locked", "unlocked", "connected", "connecting", "disconnected", "idle", "waiting", "success", "denied", "entry_exit", "registration"}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, s := range statuses {
			if th.StatusColors[s] == "" {
				t.Errorf("theme %s has no color for %q", name, s)
			}
		}
	}
}

func TestTruncateHelpers(t *testing.T) {
	if got := truncate("door command failed", 10); got != "door co..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncateMiddle("/home/op/.local/share/lockdash/lockdash.log", 15); len([]rune(got)) != 15 {
		t.Fatalf("truncateMiddle length = %d (%q)", len([]rune(got)), got)
	}
	if got := titleCase("entry_exit"); got != "Entry Exit" {
		t.Fatalf("titleCase = %q", got)
	}
}

func TestNextLogLevel(t *testing.T) {
	got := []logtail.Level{}
	lvl := logtail.LevelUnknown
	for i := 0; i < 4; i++ {
		lvl = nextLogLevel(lvl)
		got = append(got, lvl)
	}
	want := []logtail.Level{logtail.LevelInfo, logtail.LevelWarn, logtail.LevelError, logtail.LevelUnknown}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cycle = %v, want %v", got, want)
		}
	}
}
