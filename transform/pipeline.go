// Package transform implements the pre-execute SQL transformation pipeline
// of §4.7: a mapping from event name to an ordered registry of named
// callbacks, folded over the SQL string before every execution.
package transform

import "sync"

// Callback rewrites a SQL string and returns the (possibly modified) result.
// Callbacks are pure rewrites of SQL text; they cannot change bind values
// (§4.7).
type Callback func(sql string) string

type namedCallback struct {
	name string
	fn   Callback
}

// Pipeline is the event -> ordered-callback registry. It is a process-wide
// structure per adapter instance (§5): writers (Before/SetMetadata) must not
// run concurrently with readers (Apply during live queries).
type Pipeline struct {
	mu    sync.RWMutex
	byEvt map[string][]namedCallback
}

// EventAll is the wildcard event whose callbacks run before every other
// event's, per §4.7.
const EventAll = "all"

func NewPipeline() *Pipeline {
	return &Pipeline{byEvt: map[string][]namedCallback{}}
}

// Before installs cb under (event, name); passing a nil cb removes any
// existing callback of that name, per §4.7's "before(event, name, null)
// removes".
func (p *Pipeline) Before(event, name string, cb Callback) {
	p.mu.Lock()
	defer p.mu.Unlock()

	list := p.byEvt[event]
	filtered := list[:0:0]
	for _, nc := range list {
		if nc.name != name {
			filtered = append(filtered, nc)
		}
	}
	if cb != nil {
		filtered = append(filtered, namedCallback{name: name, fn: cb})
	}
	p.byEvt[event] = filtered
}

// Apply sequentially invokes "all"-event callbacks, then the specific
// event's callbacks, each receiving the prior result, per §4.7.
func (p *Pipeline) Apply(event, sqlText string) string {
	p.mu.RLock()
	all := append([]namedCallback(nil), p.byEvt[EventAll]...)
	specific := append([]namedCallback(nil), p.byEvt[event]...)
	p.mu.RUnlock()

	result := sqlText
	for _, nc := range all {
		result = nc.fn(result)
	}
	if event != EventAll {
		for _, nc := range specific {
			result = nc.fn(result)
		}
	}
	return result
}

// Clear removes every callback registered for event.
func (p *Pipeline) Clear(event string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.byEvt, event)
}
