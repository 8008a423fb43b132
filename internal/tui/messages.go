package tui

import "github.com/feedtailor/feedtailor/internal/engine"

// Engine dispatch messages.
type resultMsg struct {
	result *engine.Result
}

// Export messages.
type exportDoneMsg struct {
	paths []string
}

// Error handling.
type errorMsg struct {
	err     error
	context string
}
