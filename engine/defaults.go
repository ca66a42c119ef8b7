package engine

import "sync"

// maxSearchDepth bounds the killer-move table; no iterative deepening loop
// in this engine goes this deep.
const maxSearchDepth = 128

// deltaPruningMargin is the centipawn slack added to a capture's value
// before deciding quiescence can safely skip it.
const deltaPruningMargin = 200

var (
	defaultSessionOnce sync.Once
	defaultSession     *Session
)

// getDefaultSession returns the package-level Session used by the
// free-function Search/SearchWithTime helpers, for callers that don't need
// isolated per-game state.
func getDefaultSession() *Session {
	defaultSessionOnce.Do(func() {
		defaultSession = NewSession(DefaultHashMB)
	})
	return defaultSession
}
