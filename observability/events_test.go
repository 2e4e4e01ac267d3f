package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events []Event
}

func (s *recordingSink) Handle(ev Event) {
	s.events = append(s.events, ev)
}

func TestEmitFansOutToSinks(t *testing.T) {
	defer Reset()
	Reset()

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = time.Now }()

	rec := &recordingSink{}
	Register(rec)

	Emit(EventQueryExecuted, map[string]any{"collection": "users"})

	require.Len(t, rec.events, 1)
	assert.Equal(t, EventQueryExecuted, rec.events[0].Name)
	assert.Equal(t, fixed, rec.events[0].At)
	assert.Equal(t, "users", rec.events[0].Fields["collection"])
}

func TestEmitWithNoSinksDoesNotPanic(t *testing.T) {
	Reset()
	assert.NotPanics(t, func() {
		Emit(EventShutdown, nil)
	})
}

func TestResetClearsSinks(t *testing.T) {
	rec := &recordingSink{}
	Register(rec)
	Reset()

	Emit(EventPoolCreated, map[string]any{"size": 5})
	assert.Empty(t, rec.events)
}
