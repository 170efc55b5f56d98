// Package-level logger for datastore operations
package datastore

import (
	"log/slog"
	"sync"

	"github.com/avikko/labelrun-go/internal/logging"
)

var (
	datastoreLogger *slog.Logger
	loggerOnce      sync.Once
)

// getLogger returns the package logger, falling back to the default slog
// logger when logging.Init has not run (e.g. in tests).
func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		datastoreLogger = logging.ForService("datastore")
		if datastoreLogger == nil {
			datastoreLogger = slog.Default()
		}
	})
	return datastoreLogger
}
