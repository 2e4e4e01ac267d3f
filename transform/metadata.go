package transform

import (
	"fmt"
	"sort"
	"sync"
)

// MetadataTransformerName is the fixed callback name setMetadata installs
// under EventAll, so a later SetMetadata call can atomically replace it.
const MetadataTransformerName = "metadata"

// Metadata affixes "/* key: value */" comment preambles to every statement,
// per §4.7. Keys are emitted in sorted order for deterministic output.
type Metadata struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMetadata() *Metadata {
	return &Metadata{data: map[string]string{}}
}

// Set records a key/value pair and returns the rendered comment-preamble
// callback to install via Pipeline.Before(EventAll, MetadataTransformerName, cb).
func (m *Metadata) Set(key, value string) Callback {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return m.render()
}

// Reset clears all recorded metadata, per §4.7's resetMetadata.
func (m *Metadata) Reset() {
	m.mu.Lock()
	m.data = map[string]string{}
	m.mu.Unlock()
}

func (m *Metadata) render() Callback {
	return func(sqlText string) string {
		m.mu.RLock()
		keys := make([]string, 0, len(m.data))
		for k := range m.data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var preamble string
		for _, k := range keys {
			preamble += fmt.Sprintf("/* %s: %s */\n", k, m.data[k])
		}
		m.mu.RUnlock()
		return preamble + sqlText
	}
}
