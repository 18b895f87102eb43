// Package xmpp connects accounts to their servers and turns what the servers
// send into the feeds the application subscribes to.
package xmpp

import (
	"context"
	"crypto/tls"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"mellium.im/sasl"
	"mellium.im/xmpp"
	"mellium.im/xmpp/jid"
	"mellium.im/xmpp/stanza"

	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/logging"
	"github.com/meszmate/sessionroster/internal/xmpp/chat"
	"github.com/meszmate/sessionroster/internal/xmpp/presence"
	"github.com/meszmate/sessionroster/internal/xmpp/roster"
)

// ErrNotConnected is returned when an operation needs a live connection
var ErrNotConnected = errors.New("not connected")

const dialTimeout = 30 * time.Second

// Events are the callbacks a Client reports server pushes through.
// Callbacks run on the stanza loop goroutine.
type Events struct {
	// OnRoster receives roster items. full is set when items replace the
	// whole roster rather than update it.
	OnRoster func(items []roster.Item, full bool)
	// OnPresence receives available presences and, with available unset,
	// unavailable ones
	OnPresence   func(status presence.Status, available bool)
	OnMessage    func(msg chat.Message)
	OnDisconnect func(err error)
}

// ClientConfig contains configuration for the XMPP client
type ClientConfig struct {
	JID      string
	Password string
	Server   string
	Port     int
	Resource string
	Priority int
}

// Client wraps the Mellium XMPP client
type Client struct {
	session   *xmpp.Session
	jid       jid.JID
	password  string
	server    string
	port      int
	priority  int
	connected bool
	rosterID  string
	mu        sync.RWMutex

	events Events
	logger *logging.Logger
	// send encodes a stanza on the session
	send func(v interface{}) error

	ctx    context.Context
	cancel context.CancelFunc
}

// NewClient creates a new XMPP client
func NewClient(cfg ClientConfig, events Events, logger *logging.Logger) (*Client, error) {
	j, err := jid.Parse(cfg.JID)
	if err != nil {
		return nil, fmt.Errorf("invalid JID: %w", err)
	}

	if cfg.Resource != "" {
		j, err = j.WithResource(cfg.Resource)
		if err != nil {
			return nil, fmt.Errorf("invalid resource: %w", err)
		}
	}

	if cfg.Port == 0 {
		cfg.Port = 5222
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		jid:      j,
		password: cfg.Password,
		server:   cfg.Server,
		port:     cfg.Port,
		priority: cfg.Priority,
		events:   events,
		logger:   logger.With("xmpp " + j.Bare().String()),
		ctx:      ctx,
		cancel:   cancel,
	}
	c.send = c.encode
	return c, nil
}

// Dial returns a Dialer connecting accounts with Client
func Dial(logger *logging.Logger) Dialer {
	return func(ctx context.Context, creds domain.Credentials, events Events) (Conn, error) {
		c, err := NewClient(ClientConfig{
			JID:      creds.JID.String(),
			Password: creds.Password,
			Server:   creds.Server,
			Port:     creds.Port,
			Resource: creds.Resource,
		}, events, logger)
		if err != nil {
			return nil, err
		}
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Connect establishes a connection to the XMPP server, requests the roster
// and sends the initial presence
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	server := c.server
	if server == "" {
		server = c.jid.Domain().String()
	}

	addr := net.JoinHostPort(server, strconv.Itoa(c.port))

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to dial server: %w", err)
	}

	tlsConfig := &tls.Config{
		ServerName: c.jid.Domain().String(),
		MinVersion: tls.VersionTLS12,
	}

	negotiator := xmpp.NewNegotiator(func(_ *xmpp.Session, _ *xmpp.StreamConfig) xmpp.StreamConfig {
		return xmpp.StreamConfig{
			Features: []xmpp.StreamFeature{
				xmpp.StartTLS(tlsConfig),
				xmpp.SASL("", c.password, sasl.ScramSha256Plus, sasl.ScramSha256, sasl.ScramSha1Plus, sasl.ScramSha1, sasl.Plain),
				xmpp.BindResource(),
			},
		}
	})

	session, err := xmpp.NewSession(
		ctx,
		c.jid.Domain(),
		c.jid,
		conn,
		0,
		negotiator,
	)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to negotiate session: %w", err)
	}

	c.session = session
	c.connected = true
	c.jid = session.LocalAddr()
	c.logger.Info("Connected as %s", c.jid)

	c.rosterID = uuid.NewString()
	go c.handleStanzas(session)

	if err := session.Encode(ctx, rosterRequest{ID: c.rosterID, Type: "get"}); err != nil {
		c.logger.Warn("Could not request roster. %v", err)
	}
	if err := session.Encode(ctx, presenceUpdate{Priority: c.priority}); err != nil {
		c.logger.Warn("Could not send initial presence. %v", err)
	}
	return nil
}

// Close closes the XMPP connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	_ = c.session.Encode(c.ctx, stanza.Presence{Type: stanza.UnavailablePresence})
	c.cancel()
	err := c.session.Close()

	c.connected = false
	c.session = nil
	return err
}

func (c *Client) encode(v interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil {
		return ErrNotConnected
	}
	return c.session.Encode(c.ctx, v)
}

// SetAvailability sends a presence advertising availability
func (c *Client) SetAvailability(ctx context.Context, availability domain.Availability) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return ErrNotConnected
	}
	return c.session.Encode(ctx, presenceUpdate{
		Show:     string(presence.ShowFor(availability)),
		Priority: c.priority,
	})
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// JID returns the client's JID
func (c *Client) JID() jid.JID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.jid
}

// handleStanzas processes incoming stanzas until the session ends
func (c *Client) handleStanzas(session *xmpp.Session) {
	d := xml.NewTokenDecoder(session.TokenReader())
	for {
		tok, err := d.Token()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			if err == io.EOF {
				err = nil
			}
			c.handleDisconnect(err)
			return
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if err := c.dispatch(d, start); err != nil {
			c.logger.Warn("Could not handle %s stanza. %v", start.Name.Local, err)
		}
	}
}

// dispatch decodes the stanza starting at start and reports it
func (c *Client) dispatch(d *xml.Decoder, start xml.StartElement) error {
	switch start.Name.Local {
	case "message":
		var msg messageStanza
		if err := d.DecodeElement(&msg, &start); err != nil {
			return err
		}
		c.handleMessage(msg)
	case "presence":
		var p presenceStanza
		if err := d.DecodeElement(&p, &start); err != nil {
			return err
		}
		c.handlePresence(p)
	case "iq":
		var iq iqStanza
		if err := d.DecodeElement(&iq, &start); err != nil {
			return err
		}
		return c.handleIQ(iq)
	default:
		return d.Skip()
	}
	return nil
}

func (c *Client) handleMessage(msg messageStanza) {
	if msg.Body == "" || msg.Type == string(stanza.ErrorMessage) || msg.Type == string(stanza.GroupChatMessage) {
		return
	}
	from, err := jid.Parse(msg.From)
	if err != nil {
		c.logger.Debug("Dropping message with invalid sender %q", msg.From)
		return
	}
	to, _ := jid.Parse(msg.To)

	if c.events.OnMessage != nil {
		c.events.OnMessage(chat.Message{
			ID:        msg.ID,
			From:      from,
			To:        to,
			Body:      msg.Body,
			Type:      msg.Type,
			Timestamp: time.Now(),
		})
	}
}

func (c *Client) handlePresence(p presenceStanza) {
	var available bool
	switch p.Type {
	case "":
		available = true
	case string(stanza.UnavailablePresence):
		available = false
	default:
		// subscription management is not handled here
		return
	}
	from, err := jid.Parse(p.From)
	if err != nil {
		c.logger.Debug("Dropping presence with invalid sender %q", p.From)
		return
	}

	if c.events.OnPresence != nil {
		c.events.OnPresence(presence.Status{
			JID:      from,
			Show:     presence.Show(p.Show),
			Status:   p.Status,
			Priority: p.Priority,
		}, available)
	}
}

func (c *Client) handleIQ(iq iqStanza) error {
	if iq.Query == nil {
		return nil
	}

	var full bool
	switch {
	case iq.Type == "result" && iq.ID == c.rosterID:
		full = true
	case iq.Type == "set":
		// roster pushes must be acknowledged
		if err := c.send(iqResult{ID: iq.ID, Type: "result"}); err != nil {
			return fmt.Errorf("failed to acknowledge roster push: %w", err)
		}
	default:
		return nil
	}

	items := make([]roster.Item, 0, len(iq.Query.Items))
	for _, it := range iq.Query.Items {
		j, err := jid.Parse(it.JID)
		if err != nil {
			c.logger.Debug("Skipping roster item with invalid JID %q", it.JID)
			continue
		}
		sub := roster.Subscription(it.Subscription)
		if sub == "" {
			sub = roster.SubscriptionNone
		}
		items = append(items, roster.Item{
			JID:          j,
			Name:         it.Name,
			Subscription: sub,
			Groups:       it.Groups,
			Ask:          it.Ask,
		})
	}

	if c.events.OnRoster != nil {
		c.events.OnRoster(items, full)
	}
	return nil
}

// handleDisconnect handles unexpected disconnection
func (c *Client) handleDisconnect(err error) {
	c.mu.Lock()
	c.connected = false
	c.session = nil
	c.mu.Unlock()

	if c.events.OnDisconnect != nil {
		c.events.OnDisconnect(err)
	}
}

type messageStanza struct {
	XMLName xml.Name `xml:"message"`
	ID      string   `xml:"id,attr"`
	From    string   `xml:"from,attr"`
	To      string   `xml:"to,attr"`
	Type    string   `xml:"type,attr"`
	Body    string   `xml:"body"`
}

type presenceStanza struct {
	XMLName  xml.Name `xml:"presence"`
	From     string   `xml:"from,attr"`
	Type     string   `xml:"type,attr"`
	Show     string   `xml:"show"`
	Status   string   `xml:"status"`
	Priority int      `xml:"priority"`
}

type iqStanza struct {
	XMLName xml.Name     `xml:"iq"`
	ID      string       `xml:"id,attr"`
	Type    string       `xml:"type,attr"`
	From    string       `xml:"from,attr"`
	Query   *rosterQuery `xml:"jabber:iq:roster query"`
}

type rosterQuery struct {
	Items []rosterItem `xml:"item"`
}

type rosterItem struct {
	JID          string   `xml:"jid,attr"`
	Name         string   `xml:"name,attr"`
	Subscription string   `xml:"subscription,attr"`
	Ask          string   `xml:"ask,attr"`
	Groups       []string `xml:"group"`
}

type rosterRequest struct {
	XMLName xml.Name `xml:"iq"`
	ID      string   `xml:"id,attr"`
	Type    string   `xml:"type,attr"`
	Query   struct {
		XMLName xml.Name `xml:"jabber:iq:roster query"`
	}
}

type iqResult struct {
	XMLName xml.Name `xml:"iq"`
	ID      string   `xml:"id,attr"`
	Type    string   `xml:"type,attr"`
}

type presenceUpdate struct {
	XMLName  xml.Name `xml:"presence"`
	Show     string   `xml:"show,omitempty"`
	Status   string   `xml:"status,omitempty"`
	Priority int      `xml:"priority,omitempty"`
}
