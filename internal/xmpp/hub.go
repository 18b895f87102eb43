package xmpp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/logging"
	"github.com/meszmate/sessionroster/internal/subscription"
	"github.com/meszmate/sessionroster/internal/xmpp/chat"
	"github.com/meszmate/sessionroster/internal/xmpp/presence"
	"github.com/meszmate/sessionroster/internal/xmpp/roster"
)

// ErrUnknownAccount is returned for accounts the hub has never connected
var ErrUnknownAccount = errors.New("unknown account")

// Conn is a live connection of one account
type Conn interface {
	SetAvailability(ctx context.Context, availability domain.Availability) error
	Close() error
}

// Dialer connects an account, reporting server pushes through events
type Dialer func(ctx context.Context, creds domain.Credentials, events Events) (Conn, error)

// MessageHandler receives every incoming chat message
type MessageHandler func(account domain.AccountID, msg domain.Message)

type account struct {
	id     domain.AccountID
	status domain.ConnectionStatus
	conn   Conn

	roster   *roster.Manager
	presence *presence.Manager
	chats    *chat.Manager

	rosterFeed   *Feed[domain.Roster]
	presenceFeed *Feed[map[domain.AccountID]domain.Presence]
	chatsFeed    *Feed[map[domain.AccountID]domain.ActiveChat]
}

// Hub manages the connections of all accounts and publishes their roster,
// presence and chat feeds
type Hub struct {
	mu       sync.Mutex
	dial     Dialer
	logger   *logging.Logger
	accounts map[domain.AccountID]*account
	order    []domain.AccountID
	history  int

	onMessage MessageHandler

	available    *Feed[[]domain.Account]
	connectivity *Feed[domain.Connectivity]
	online       domain.Connectivity
}

// NewHub creates a hub connecting accounts with dial
func NewHub(dial Dialer, history int, logger *logging.Logger) *Hub {
	h := &Hub{
		dial:         dial,
		logger:       logger.With("hub"),
		accounts:     make(map[domain.AccountID]*account),
		history:      history,
		available:    NewFeed[[]domain.Account](),
		connectivity: NewFeed[domain.Connectivity](),
		online:       domain.ConnectivityOnline,
	}
	h.available.Publish([]domain.Account{})
	h.connectivity.Publish(domain.ConnectivityOnline)
	return h
}

// SetMessageHandler sets the handler of incoming chat messages
func (h *Hub) SetMessageHandler(handler MessageHandler) {
	h.mu.Lock()
	h.onMessage = handler
	h.mu.Unlock()
}

func (h *Hub) lookup(id domain.AccountID) (*account, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	acc, ok := h.accounts[id]
	return acc, ok
}

// register adds id with status connecting. It reports whether the account
// was added.
func (h *Hub) register(id domain.AccountID) (*account, bool) {
	h.mu.Lock()
	acc, exists := h.accounts[id]
	if !exists {
		acc = &account{
			id:           id,
			roster:       roster.NewManager(),
			presence:     presence.NewManager(),
			chats:        chat.NewManager(h.history),
			rosterFeed:   NewFeed[domain.Roster](),
			presenceFeed: NewFeed[map[domain.AccountID]domain.Presence](),
			chatsFeed:    NewFeed[map[domain.AccountID]domain.ActiveChat](),
		}
		h.accounts[id] = acc
		h.order = append(h.order, id)
	}
	acc.status = domain.StatusConnecting
	h.mu.Unlock()

	h.publishAccounts()
	return acc, !exists
}

func (h *Hub) unregister(id domain.AccountID) {
	h.mu.Lock()
	delete(h.accounts, id)
	for i, known := range h.order {
		if known == id {
			h.order = append(h.order[:i:i], h.order[i+1:]...)
			break
		}
	}
	h.mu.Unlock()

	h.publishAccounts()
}

func (h *Hub) setStatus(id domain.AccountID, status domain.ConnectionStatus, conn Conn) {
	h.mu.Lock()
	acc, ok := h.accounts[id]
	if ok {
		acc.status = status
		acc.conn = conn
	}
	h.mu.Unlock()

	if ok {
		h.publishAccounts()
	}
}

// publishAccounts publishes the account list and the connectivity derived
// from it
func (h *Hub) publishAccounts() {
	h.mu.Lock()
	list := make([]domain.Account, 0, len(h.order))
	var connected, connecting int
	for _, id := range h.order {
		acc := h.accounts[id]
		list = append(list, domain.NewAccount(id, acc.status))
		switch acc.status {
		case domain.StatusConnected:
			connected++
		case domain.StatusConnecting:
			connecting++
		}
	}
	online := domain.ConnectivityOnline
	if connected == 0 && connecting > 0 {
		online = domain.ConnectivityOffline
	}
	changed := online != h.online
	h.online = online
	h.mu.Unlock()

	h.available.Publish(list)
	if changed {
		h.connectivity.Publish(online)
	}
}

func (h *Hub) events(acc *account) Events {
	return Events{
		OnRoster: func(items []roster.Item, full bool) {
			if full {
				acc.roster.Replace(items)
			} else {
				for _, item := range items {
					acc.roster.Set(item)
				}
			}
			acc.rosterFeed.Publish(acc.roster.Snapshot())
		},
		OnPresence: func(status presence.Status, available bool) {
			if available {
				acc.presence.Set(status)
			} else {
				acc.presence.Remove(status.JID)
			}
			acc.presenceFeed.Publish(acc.presence.Snapshot())
		},
		OnMessage: func(msg chat.Message) {
			acc.chats.AddMessage(msg)
			acc.chatsFeed.Publish(acc.chats.Snapshot())

			h.mu.Lock()
			handler := h.onMessage
			h.mu.Unlock()
			if handler != nil {
				handler(acc.id, domain.Message{
					ID:        msg.ID,
					From:      domain.AccountID(msg.From.Bare().String()),
					To:        acc.id,
					Body:      msg.Body,
					Timestamp: msg.Timestamp,
				})
			}
		},
		OnDisconnect: func(err error) {
			if err != nil {
				h.logger.Warn("Connection of %s lost. %v", acc.id, err)
			} else {
				h.logger.Info("Connection of %s closed by the server", acc.id)
			}
			acc.presence.Clear()
			acc.presenceFeed.Publish(acc.presence.Snapshot())
			h.setStatus(acc.id, domain.StatusDisconnected, nil)
		},
	}
}

func (h *Hub) connect(ctx context.Context, acc *account, creds domain.Credentials) error {
	conn, err := h.dial(ctx, creds, h.events(acc))
	if err != nil {
		return err
	}
	h.setStatus(acc.id, domain.StatusConnected, conn)
	return nil
}

// ConnectAccounts starts connecting every account in the background.
// Accounts that fail to connect stay listed as offline.
func (h *Hub) ConnectAccounts(credentials []domain.Credentials) {
	for _, creds := range credentials {
		acc, _ := h.register(creds.JID)
		go func(creds domain.Credentials) {
			ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
			defer cancel()
			if err := h.connect(ctx, acc, creds); err != nil {
				h.logger.Error("Could not connect %s. %v", creds.JID, err)
				h.setStatus(creds.JID, domain.StatusOffline, nil)
			}
		}(creds)
	}
}

// Login connects a single account and returns once it is connected. A new
// account that fails to connect is forgotten.
func (h *Hub) Login(ctx context.Context, credentials domain.Credentials) error {
	acc, added := h.register(credentials.JID)
	if err := h.connect(ctx, acc, credentials); err != nil {
		if added {
			h.unregister(credentials.JID)
		} else {
			h.setStatus(credentials.JID, domain.StatusOffline, nil)
		}
		return fmt.Errorf("failed to log in %s: %w", credentials.JID, err)
	}
	return nil
}

// Disconnect closes the connection of account. The account stays listed.
func (h *Hub) Disconnect(id domain.AccountID) error {
	acc, ok := h.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, id)
	}

	h.mu.Lock()
	conn := acc.conn
	h.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	err := conn.Close()
	acc.presence.Clear()
	acc.presenceFeed.Publish(acc.presence.Snapshot())
	h.setStatus(id, domain.StatusDisconnected, nil)
	if err != nil {
		return fmt.Errorf("failed to close connection of %s: %w", id, err)
	}
	return nil
}

// SetAvailability broadcasts the availability of account
func (h *Hub) SetAvailability(id domain.AccountID, availability domain.Availability) error {
	acc, ok := h.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, id)
	}

	h.mu.Lock()
	conn := acc.conn
	h.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.SetAvailability(context.Background(), availability)
}

// Close closes every connection
func (h *Hub) Close() {
	h.mu.Lock()
	var conns []Conn
	for _, acc := range h.accounts {
		if acc.conn != nil {
			conns = append(conns, acc.conn)
			acc.conn = nil
			acc.status = domain.StatusDisconnected
		}
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			h.logger.Warn("Could not close connection. %v", err)
		}
	}
}

// AvailableAccounts emits the accounts of the hub and their status
func (h *Hub) AvailableAccounts(ctx context.Context) <-chan subscription.Result[[]domain.Account] {
	return h.available.Subscribe(ctx)
}

// Connectivity emits whether the accounts can reach their servers
func (h *Hub) Connectivity(ctx context.Context) <-chan subscription.Result[domain.Connectivity] {
	return h.connectivity.Subscribe(ctx)
}

// Roster emits the roster of account
func (h *Hub) Roster(ctx context.Context, id domain.AccountID) <-chan subscription.Result[domain.Roster] {
	acc, ok := h.lookup(id)
	if !ok {
		return failed[domain.Roster](ctx, fmt.Errorf("%w: %s", ErrUnknownAccount, id))
	}
	return acc.rosterFeed.Subscribe(ctx)
}

// Presence emits the presence of the contacts of account
func (h *Hub) Presence(ctx context.Context, id domain.AccountID) <-chan subscription.Result[map[domain.AccountID]domain.Presence] {
	acc, ok := h.lookup(id)
	if !ok {
		return failed[map[domain.AccountID]domain.Presence](ctx, fmt.Errorf("%w: %s", ErrUnknownAccount, id))
	}
	return acc.presenceFeed.Subscribe(ctx)
}

// ActiveChats emits the conversations of account
func (h *Hub) ActiveChats(ctx context.Context, id domain.AccountID) <-chan subscription.Result[map[domain.AccountID]domain.ActiveChat] {
	acc, ok := h.lookup(id)
	if !ok {
		return failed[map[domain.AccountID]domain.ActiveChat](ctx, fmt.Errorf("%w: %s", ErrUnknownAccount, id))
	}
	return acc.chatsFeed.Subscribe(ctx)
}

// UserInfos returns what the roster knows about contacts. Avatars are not
// fetched.
func (h *Hub) UserInfos(ctx context.Context, id domain.AccountID, contacts []domain.AccountID) (map[domain.AccountID]domain.UserInfo, error) {
	acc, ok := h.lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names := acc.roster.Names()
	infos := make(map[domain.AccountID]domain.UserInfo, len(contacts))
	for _, c := range contacts {
		infos[c] = domain.UserInfo{JID: c, FullName: names[c]}
	}
	return infos, nil
}
