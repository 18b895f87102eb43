// Package action helps routing messages through nested reducers.
package action

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Wrapper is implemented by messages that carry a child reducer's message
type Wrapper interface {
	Unwrap() tea.Msg
}

// Find walks the chain of wrapped messages starting at msg and returns the
// first one of type T
func Find[T any](msg tea.Msg) (T, bool) {
	for msg != nil {
		if found, ok := msg.(T); ok {
			return found, true
		}
		w, ok := msg.(Wrapper)
		if !ok {
			break
		}
		msg = w.Unwrap()
	}
	var zero T
	return zero, false
}
