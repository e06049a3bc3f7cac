package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/lockdash/internal/realtime"
)

type fakeSource struct {
	handlers     []realtime.Handler
	unsubscribed int
}

func (f *fakeSource) Subscribe(h realtime.Handler) func() {
	f.handlers = append(f.handlers, h)
	return func() { f.unsubscribed++ }
}

func (f *fakeSource) emit(typ, text string) {
	msg := realtime.NewMessage(typ, map[string]any{"message": text})
	for _, h := range f.handlers {
		h(msg)
	}
}

func TestTrackerPhases(t *testing.T) {
	tests := []struct {
		typ  string
		want Phase
	}{
		{realtime.TypeEnrollmentStatus, PhaseWaiting},
		{realtime.TypeEnrollmentSuccess, PhaseSuccess},
		{realtime.TypeEnrollmentFailed, PhaseDenied},
		{realtime.TypeScanSuccess, PhaseSuccess},
		{realtime.TypeScanFailed, PhaseDenied},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			src := &fakeSource{}
			tr := NewTracker(src)
			src.emit(tt.typ, "hello")

			p := tr.Progress()
			assert.Equal(t, tt.want, p.Phase)
			assert.Equal(t, "hello", p.Message)
			assert.False(t, p.UpdatedAt.IsZero())
		})
	}
}

func TestTrackerSystemErrorOnlyRecorded(t *testing.T) {
	src := &fakeSource{}
	tr := NewTracker(src)
	src.emit(realtime.TypeEnrollmentStatus, "Place finger")
	src.emit(realtime.TypeSystemError, "Serial connection not open")

	assert.Equal(t, PhaseWaiting, tr.Progress().Phase)
	recent := tr.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, realtime.TypeSystemError, recent[0].Type)
	assert.True(t, recent[0].Failure())
	assert.False(t, recent[1].Failure())
}

func TestTrackerIgnoresUnknownTypes(t *testing.T) {
	src := &fakeSource{}
	tr := NewTracker(src)
	src.emit("heartbeat", "")

	assert.Equal(t, PhaseIdle, tr.Progress().Phase)
	assert.Empty(t, tr.Recent())
}

func TestTrackerRingKeepsNewest(t *testing.T) {
	src := &fakeSource{}
	tr := NewTracker(src, WithHistory(3))
	for _, text := range []string{"one", "two", "three", "four", "five"} {
		src.emit(realtime.TypeScanSuccess, text)
	}

	recent := tr.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "five", recent[0].Message)
	assert.Equal(t, "four", recent[1].Message)
	assert.Equal(t, "three", recent[2].Message)
}

func TestTrackerEnrollmentSequenceInOrder(t *testing.T) {
	src := &fakeSource{}
	tr := NewTracker(src)
	src.emit(realtime.TypeEnrollmentStatus, "Place finger")
	src.emit(realtime.TypeEnrollmentSuccess, "Done")

	assert.Equal(t, Progress{Phase: PhaseSuccess, Message: "Done", UpdatedAt: tr.Progress().UpdatedAt}, tr.Progress())
	recent := tr.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "Done", recent[0].Message)
	assert.Equal(t, "Place finger", recent[1].Message)
}

func TestTrackerResetAndClose(t *testing.T) {
	src := &fakeSource{}
	tr := NewTracker(src)
	src.emit(realtime.TypeScanFailed, "Unknown finger")

	tr.Reset()
	assert.Equal(t, PhaseIdle, tr.Progress().Phase)
	assert.Len(t, tr.Recent(), 1)

	tr.Close()
	tr.Close()
	assert.Equal(t, 1, src.unsubscribed)
}
