// Package subscription runs named, cancellable feeds whose values re-enter
// the application's action loop as messages.
package subscription

import (
	"context"
)

// Name identifies a subscription. At most one subscription runs per name.
type Name int

const (
	Roster Name = iota
	Presence
	ActiveChats
	UserInfos
	AvailableAccounts
	Connectivity
)

// String returns the string representation of the name
func (n Name) String() string {
	switch n {
	case Roster:
		return "roster-subscription"
	case Presence:
		return "presence-subscription"
	case ActiveChats:
		return "active-chats-subscription"
	case UserInfos:
		return "user-infos-subscription"
	case AvailableAccounts:
		return "available-accounts-subscription"
	case Connectivity:
		return "connectivity-subscription"
	default:
		return "unknown-subscription"
	}
}

// Result is a single value or failure produced by a feed
type Result[T any] struct {
	Value T
	Err   error
}

// OK wraps a successful value
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps a failure
func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// Stream starts a feed. The returned channel must be closed once ctx is done;
// the registry waits for it before starting a replacement under the same name.
type Stream[T any] func(ctx context.Context) <-chan Result[T]

// Once turns a one-shot request into a Stream emitting a single result
func Once[T any](fn func(ctx context.Context) (T, error)) Stream[T] {
	return func(ctx context.Context) <-chan Result[T] {
		ch := make(chan Result[T], 1)
		go func() {
			defer close(ch)
			v, err := fn(ctx)
			if ctx.Err() != nil {
				return
			}
			ch <- Result[T]{Value: v, Err: err}
		}()
		return ch
	}
}

// Values returns a Stream emitting results in order, then closing
func Values[T any](results ...Result[T]) Stream[T] {
	return func(ctx context.Context) <-chan Result[T] {
		ch := make(chan Result[T])
		go func() {
			defer close(ch)
			for _, r := range results {
				select {
				case ch <- r:
				case <-ctx.Done():
					return
				}
			}
		}()
		return ch
	}
}
