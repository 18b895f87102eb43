package subscription

import (
	"context"
	"sort"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Sender delivers messages to the action loop. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Token identifies one run of a named subscription
type Token struct {
	Name Name
	id   uint64
}

// Delivery is the message sent to the action loop for each value a
// subscription produces
type Delivery[T any] struct {
	Token Token
	Value T
	Err   error
}

// SubscriptionToken returns the token of the run that produced d
func (d Delivery[T]) SubscriptionToken() Token {
	return d.Token
}

// Tagged is implemented by every Delivery
type Tagged interface {
	SubscriptionToken() Token
}

type handle struct {
	token  Token
	cancel context.CancelFunc
	done   chan struct{}
}

// Registry keeps at most one running subscription per Name.
//
// Starting a subscription cancels the previous one under the same name. The
// replacement only starts consuming its feed once the previous feed has been
// closed, so two feeds never emit under one name at the same time. This also
// holds for a run cancelled with Cancel or CancelAll before the replacement
// was started.
type Registry struct {
	mu     sync.Mutex
	sender Sender
	nextID uint64
	active map[Name]*handle
	// cancelled runs that have not stopped yet
	stopping map[Name]*handle
	wg       sync.WaitGroup
}

// NewRegistry creates a registry delivering to sender
func NewRegistry(sender Sender) *Registry {
	return &Registry{
		sender:   sender,
		active:   make(map[Name]*handle),
		stopping: make(map[Name]*handle),
	}
}

// SetSender sets where deliveries go. Runs started earlier keep their sender.
func (r *Registry) SetSender(sender Sender) {
	r.mu.Lock()
	r.sender = sender
	r.mu.Unlock()
}

// Start runs stream under name, replacing any subscription with that name
func Start[T any](r *Registry, name Name, stream Stream[T]) Token {
	ctx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	prev := r.active[name]
	if prev != nil {
		prev.cancel()
	} else {
		prev = r.stopping[name]
	}
	delete(r.stopping, name)
	r.nextID++
	h := &handle{
		token:  Token{Name: name, id: r.nextID},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.active[name] = h
	sender := r.sender
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer r.stopped(h)
		if prev != nil {
			<-prev.done
		}
		consume(ctx, h.token, stream, sender)
	}()

	return h.token
}

// stopped marks the run of h as finished
func (r *Registry) stopped(h *handle) {
	close(h.done)

	r.mu.Lock()
	if r.stopping[h.token.Name] == h {
		delete(r.stopping, h.token.Name)
	}
	r.mu.Unlock()
}

func consume[T any](ctx context.Context, tok Token, stream Stream[T], sender Sender) {
	if ctx.Err() != nil {
		return
	}
	ch := stream(ctx)
	if ch == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			for range ch {
			}
			return
		case res, ok := <-ch:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				continue
			}
			if sender != nil {
				sender.Send(Delivery[T]{Token: tok, Value: res.Value, Err: res.Err})
			}
		}
	}
}

// Cancel stops the subscription registered under name. It does nothing if
// there is none.
func (r *Registry) Cancel(name Name) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, exists := r.active[name]; exists {
		h.cancel()
		delete(r.active, name)
		r.stopping[name] = h
	}
}

// CancelAll stops every subscription
func (r *Registry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, h := range r.active {
		h.cancel()
		delete(r.active, name)
		r.stopping[name] = h
	}
}

// Current reports whether tok belongs to the subscription currently
// registered under its name. Deliveries from any other run are stale.
func (r *Registry) Current(tok Token) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, exists := r.active[tok.Name]
	return exists && h.token == tok
}

// Active returns the names of all registered subscriptions, sorted
func (r *Registry) Active() []Name {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]Name, 0, len(r.active))
	for name := range r.active {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Len returns the number of registered subscriptions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// Wait blocks until every run started so far has stopped
func (r *Registry) Wait() {
	r.wg.Wait()
}

// Close cancels every subscription and waits for them to stop
func (r *Registry) Close() {
	r.CancelAll()
	r.Wait()
}
