// Package observability carries the structured logging and best-effort
// event emission of spec.md §6: every adapter operation logs through a
// shared *zap.Logger and fires a named event ("query:executed",
// "pool:created", …) that external sinks can subscribe to.
package observability

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.RWMutex
	logger *zap.Logger
)

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	logger = l
}

// SetLogger replaces the package-level logger, e.g. with zap.NewDevelopment()
// for local runs or a logger carrying request-scoped fields.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Logger returns the current package-level logger.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
