package subscription

import (
	tea "github.com/charmbracelet/bubbletea"
)

// EffectKind is the kind of side effect a reducer requests
type EffectKind int

const (
	EffectSubscribe EffectKind = iota
	EffectCancel
	EffectCancelAll
	EffectRun
)

// Effect describes a side effect returned by a reducer. Reducers never touch
// the registry themselves; the orchestrator executes their effects in order
// right after the reduction.
type Effect struct {
	Kind EffectKind
	Name Name

	start func(*Registry) Token
	cmd   tea.Cmd
}

// Subscribe starts stream under name, replacing a running one
func Subscribe[T any](name Name, stream Stream[T]) Effect {
	return Effect{
		Kind: EffectSubscribe,
		Name: name,
		start: func(r *Registry) Token {
			return Start(r, name, stream)
		},
	}
}

// Cancel stops the subscription registered under name
func Cancel(name Name) Effect {
	return Effect{Kind: EffectCancel, Name: name}
}

// CancelAll stops every subscription
func CancelAll() Effect {
	return Effect{Kind: EffectCancelAll}
}

// Run executes a one-shot command whose message re-enters the action loop
func Run(cmd tea.Cmd) Effect {
	return Effect{Kind: EffectRun, cmd: cmd}
}

// Cmd returns the command of a Run effect
func (e Effect) Cmd() tea.Cmd {
	return e.cmd
}

// Execute applies effects in order and returns the batched commands of the
// Run effects.
func (r *Registry) Execute(effects ...Effect) tea.Cmd {
	var cmds []tea.Cmd
	for _, e := range effects {
		switch e.Kind {
		case EffectSubscribe:
			e.start(r)
		case EffectCancel:
			r.Cancel(e.Name)
		case EffectCancelAll:
			r.CancelAll()
		case EffectRun:
			if e.cmd != nil {
				cmds = append(cmds, e.cmd)
			}
		}
	}

	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	default:
		return tea.Batch(cmds...)
	}
}

// Map wraps the message produced by a Run effect with wrap. Other kinds of
// effect are returned unchanged; their deliveries are routed by type.
func (e Effect) Map(wrap func(tea.Msg) tea.Msg) Effect {
	if e.Kind != EffectRun || e.cmd == nil {
		return e
	}
	cmd := e.cmd
	e.cmd = func() tea.Msg {
		msg := cmd()
		if msg == nil {
			return nil
		}
		return wrap(msg)
	}
	return e
}

// MapAll applies Map to every effect
func MapAll(effects []Effect, wrap func(tea.Msg) tea.Msg) []Effect {
	if len(effects) == 0 {
		return nil
	}
	mapped := make([]Effect, len(effects))
	for i, e := range effects {
		mapped[i] = e.Map(wrap)
	}
	return mapped
}
