package sqlite

import (
	"context"

	"github.com/meszmate/sessionroster/internal/client"
	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/logging"
	"github.com/meszmate/sessionroster/internal/subscription"
)

// CachedSource decorates an event source with the cache. The roster and the
// conversations of an account are emitted from the cache first, then follow
// the live feed, whose values are persisted. Presences are only recorded.
type CachedSource struct {
	client.EventSource
	db     *DB
	logger *logging.Logger
}

// NewCachedSource wraps source
func NewCachedSource(source client.EventSource, db *DB, logger *logging.Logger) *CachedSource {
	return &CachedSource{
		EventSource: source,
		db:          db,
		logger:      logger.With("cache"),
	}
}

// Roster emits the cached roster of account, then the live one
func (c *CachedSource) Roster(ctx context.Context, account domain.AccountID) <-chan subscription.Result[domain.Roster] {
	load := func() (domain.Roster, bool, error) { return c.db.GetRoster(account) }
	save := func(r domain.Roster) error { return c.db.SaveRoster(account, r) }
	return cached(ctx, c.logger, "roster of "+account.String(), load, save, c.EventSource.Roster(ctx, account))
}

// ActiveChats emits the cached conversations of account, then the live ones
func (c *CachedSource) ActiveChats(ctx context.Context, account domain.AccountID) <-chan subscription.Result[map[domain.AccountID]domain.ActiveChat] {
	load := func() (map[domain.AccountID]domain.ActiveChat, bool, error) {
		chats, err := c.db.GetActiveChats(account)
		return chats, err == nil && len(chats) > 0, err
	}
	save := func(chats map[domain.AccountID]domain.ActiveChat) error { return c.db.SaveActiveChats(account, chats) }
	return cached(ctx, c.logger, "conversations of "+account.String(), load, save, c.EventSource.ActiveChats(ctx, account))
}

// Presence follows the live feed and records every presence seen
func (c *CachedSource) Presence(ctx context.Context, account domain.AccountID) <-chan subscription.Result[map[domain.AccountID]domain.Presence] {
	save := func(p map[domain.AccountID]domain.Presence) error { return c.db.SaveLastPresences(account, p) }
	return cached(ctx, c.logger, "presences of "+account.String(), nil, save, c.EventSource.Presence(ctx, account))
}

// cached emits the value returned by load, if any, then forwards live while
// saving its values. Cache failures are logged and never reach the consumer.
func cached[T any](
	ctx context.Context,
	logger *logging.Logger,
	what string,
	load func() (T, bool, error),
	save func(T) error,
	live <-chan subscription.Result[T],
) <-chan subscription.Result[T] {
	out := make(chan subscription.Result[T])

	go func() {
		defer close(out)

		send := func(r subscription.Result[T]) bool {
			select {
			case out <- r:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if load != nil {
			v, ok, err := load()
			switch {
			case err != nil:
				logger.Warn("Could not load cached %s. %v", what, err)
			case ok:
				if !send(subscription.OK(v)) {
					drain(live)
					return
				}
			}
		}

		if live == nil {
			<-ctx.Done()
			return
		}
		for r := range live {
			if r.Err == nil {
				if err := save(r.Value); err != nil {
					logger.Warn("Could not cache %s. %v", what, err)
				}
			}
			if !send(r) {
				drain(live)
				return
			}
		}
	}()
	return out
}

func drain[T any](ch <-chan subscription.Result[T]) {
	if ch == nil {
		return
	}
	for range ch {
	}
}
