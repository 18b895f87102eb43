package xmpp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFeedReplaysLatestToNewSubscribers(t *testing.T) {
	f := NewFeed[int]()
	f.Publish(1)
	f.Publish(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.Equal(t, 2, next(t, f.Subscribe(ctx)).Value)
}

func TestFeedCoalescesForSlowSubscribers(t *testing.T) {
	f := NewFeed[int]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := f.Subscribe(ctx)
	for i := 1; i <= 5; i++ {
		f.Publish(i)
	}
	require.Equal(t, 5, next(t, ch).Value)

	boom := errors.New("boom")
	f.Fail(boom)
	require.ErrorIs(t, next(t, ch).Err, boom)

	latest, ok := f.Latest()
	require.True(t, ok)
	require.Equal(t, 5, latest)
}

func TestFeedClosesOnCancel(t *testing.T) {
	f := NewFeed[string]()
	ctx, cancel := context.WithCancel(context.Background())
	ch := f.Subscribe(ctx)
	require.Equal(t, 1, f.Len())

	cancel()
	select {
	case _, ok := <-ch:
		require.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatalf("feed not closed")
	}
	require.Zero(t, f.Len())

	// publishing after unsubscribe must not panic
	f.Publish("late")
}
