package observability

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// The fixed event vocabulary of spec.md §6. Delivery is best-effort and
// synchronous with the triggering operation.
const (
	EventQueryExecuted = "query:executed"
	EventQueryError    = "query:error"
	EventQueryStats    = "query:stats"
	EventPoolCreated   = "pool:created"
	EventPoolReleased  = "pool:released"
	EventPoolError     = "pool:error"
	EventShutdown      = "shutdown"
)

// Event is the payload delivered to registered Sinks.
type Event struct {
	Name   string
	At     time.Time
	Fields map[string]any
}

// Sink receives every emitted Event. Implementations must not block for
// long: Emit calls sinks synchronously on the triggering goroutine.
type Sink interface {
	Handle(Event)
}

var (
	sinksMu sync.RWMutex
	sinks   []Sink
)

// Register adds a sink that receives every future Emit call. Safe for
// concurrent use.
func Register(s Sink) {
	sinksMu.Lock()
	defer sinksMu.Unlock()
	sinks = append(sinks, s)
}

// Reset clears every registered sink; used by tests.
func Reset() {
	sinksMu.Lock()
	defer sinksMu.Unlock()
	sinks = nil
}

// Emit logs name at info level (error level for query:error/pool:error)
// with kv as structured fields, then fans the same fields out to every
// registered Sink as an Event.
func Emit(name string, kv map[string]any) {
	l := Logger()
	fields := make([]zap.Field, 0, len(kv))
	for k, v := range kv {
		fields = append(fields, zap.Any(k, v))
	}
	if name == EventQueryError || name == EventPoolError {
		l.Error(name, fields...)
	} else {
		l.Info(name, fields...)
	}

	sinksMu.RLock()
	targets := sinks
	sinksMu.RUnlock()
	if len(targets) == 0 {
		return
	}

	ev := Event{Name: name, At: timeNow(), Fields: kv}
	for _, s := range targets {
		s.Handle(ev)
	}
}

// timeNow is a seam so tests exercising Emit's sink fan-out don't depend on
// real wall-clock timing; production always uses time.Now.
var timeNow = time.Now
