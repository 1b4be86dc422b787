// Package chat is the client side of one order conversation.
//
// A Channel merges three feeds into one view: the REST response to its own sends, frames
// pushed over the websocket, and periodic history polls. All of them go through the same
// sink, which is keyed by server message id, so a message seen twice is kept once.
// Outgoing messages are shown immediately as pending entries keyed by a client id and
// are replaced by the server copy carrying the same client id.
package chat

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/client/model"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultPollInterval = 3 * time.Second
	DefaultRetention    = 3 * time.Hour
	MaxLength           = 500
)

type API interface {
	SendMessage(ctx context.Context, msg model.Message) (*model.Message, error)
	Messages(ctx context.Context, orderID string, chatType model.ChatType) ([]model.Message, error)
}

type Transport interface {
	Connect(ctx context.Context, room string) error
	Disconnect()
	OnMessage(fn func(model.Envelope)) func()
}

type Cache interface {
	LoadMessages(orderID string, chatType model.ChatType) ([]model.Message, error)
	SaveMessages(orderID string, chatType model.ChatType, msgs []model.Message) error
}

type Entry struct {
	model.Message
	Pending bool
	Failed  bool

	sent uint64
}

type Channel struct {
	OrderID      string
	ChatType     model.ChatType
	Viewer       model.Identity
	PollInterval time.Duration
	Retention    time.Duration

	api       API
	transport Transport
	cache     Cache
	now       func() time.Time

	mu        sync.Mutex
	confirmed map[string]model.Message
	pending   map[string]Entry
	sent      uint64
	listeners []func([]Entry)
	unsub     func()
}

// NewChannel builds a channel for one (order, chat type) pair. transport and cache may
// be nil; the channel then runs on polling alone and keeps nothing across restarts.
func NewChannel(orderID string, chatType model.ChatType, viewer model.Identity, api API, transport Transport, cache Cache) *Channel {
	return &Channel{
		OrderID:      orderID,
		ChatType:     chatType,
		Viewer:       viewer,
		PollInterval: DefaultPollInterval,
		Retention:    DefaultRetention,
		api:          api,
		transport:    transport,
		cache:        cache,
		now:          time.Now,
		confirmed:    make(map[string]model.Message),
		pending:      make(map[string]Entry),
	}
}

// OnChange registers fn to receive the full view after every change.
func (c *Channel) OnChange(fn func([]Entry)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Open seeds the view from the local cache, subscribes to pushes and fetches history.
// A failed fetch is returned but leaves the channel usable on cached data.
func (c *Channel) Open(ctx context.Context) error {
	if c.cache != nil {
		cached, err := c.cache.LoadMessages(c.OrderID, c.ChatType)
		if err != nil {
			log.Warnf("Chat cache for %s unreadable: %v", c.OrderID, err)
		}
		c.ingest(cached...)
	}

	if c.transport != nil {
		c.mu.Lock()
		c.unsub = c.transport.OnMessage(c.handleFrame)
		c.mu.Unlock()
		if err := c.transport.Connect(ctx, c.OrderID); err != nil {
			log.Warnf("Realtime unavailable for %s, polling only: %v", c.OrderID, err)
		}
	}

	return c.Refresh(ctx)
}

func (c *Channel) Close() {
	c.mu.Lock()
	unsub := c.unsub
	c.unsub = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
	if c.transport != nil {
		c.transport.Disconnect()
	}
}

// Refresh pulls the server history into the view.
func (c *Channel) Refresh(ctx context.Context) error {
	msgs, err := c.api.Messages(ctx, c.OrderID, c.ChatType)
	if err != nil {
		return err
	}
	c.ingest(msgs...)
	return nil
}

// Poll refreshes every PollInterval until ctx is done, whatever the socket is doing.
func (c *Channel) Poll(ctx context.Context) {
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
				log.Debugf("Chat poll %s: %v", c.OrderID, err)
			}
		}
	}
}

// Send validates locally, shows the message as pending, then posts it. On failure the
// pending entry is marked failed and the error returned; Retry resends it.
func (c *Channel) Send(ctx context.Context, content string) (*model.Message, error) {
	if err := validate(content); err != nil {
		return nil, err
	}

	clientID := uuid.NewString()
	msg := model.Message{
		ID:         clientID,
		ClientID:   clientID,
		OrderID:    c.OrderID,
		Content:    content,
		SenderID:   c.Viewer.ID,
		IsFromUser: c.Viewer.Role == model.RoleCustomer,
		Timestamp:  c.now(),
		ChatType:   c.ChatType,
	}

	c.mu.Lock()
	c.sent++
	c.pending[clientID] = Entry{Message: msg, Pending: true, sent: c.sent}
	c.mu.Unlock()
	c.notify()

	return c.post(ctx, msg)
}

// Retry resends a failed message under its original client id.
func (c *Channel) Retry(ctx context.Context, clientID string) (*model.Message, error) {
	c.mu.Lock()
	e, ok := c.pending[clientID]
	if ok {
		e.Failed = false
		c.pending[clientID] = e
	}
	c.mu.Unlock()
	if !ok {
		return nil, apperr.NotFound("retry", "no pending message %s", clientID)
	}
	c.notify()
	return c.post(ctx, e.Message)
}

func (c *Channel) post(ctx context.Context, msg model.Message) (*model.Message, error) {
	saved, err := c.api.SendMessage(ctx, msg)
	if err != nil {
		c.mu.Lock()
		if e, ok := c.pending[msg.ClientID]; ok {
			e.Failed = true
			c.pending[msg.ClientID] = e
		}
		c.mu.Unlock()
		c.notify()
		return nil, err
	}
	if saved.ClientID == "" {
		saved.ClientID = msg.ClientID
	}
	c.ingest(*saved)
	return saved, nil
}

func validate(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperr.Validation("sendMessage", "message is empty")
	}
	if n := utf8.RuneCountInString(content); n > MaxLength {
		return apperr.Validation("sendMessage", "message is %d characters, limit is %d", n, MaxLength)
	}
	return nil
}

func (c *Channel) handleFrame(env model.Envelope) {
	if env.Type != model.FrameNewMessage || env.Data == nil {
		return
	}
	if env.Data.OrderID != c.OrderID || env.Data.ChatType != c.ChatType {
		return
	}
	c.ingest(*env.Data)
}

// ingest is the dedup sink. It drops known ids, settles pending entries by client id
// and persists the result when anything changed.
func (c *Channel) ingest(msgs ...model.Message) {
	changed := false
	c.mu.Lock()
	for _, m := range msgs {
		if m.ID == "" {
			continue
		}
		if m.ClientID != "" {
			if _, ok := c.pending[m.ClientID]; ok {
				delete(c.pending, m.ClientID)
				changed = true
			}
		}
		if _, ok := c.confirmed[m.ID]; ok {
			continue
		}
		c.confirmed[m.ID] = m
		changed = true
	}
	c.mu.Unlock()

	if !changed {
		return
	}
	if c.cache != nil {
		if err := c.cache.SaveMessages(c.OrderID, c.ChatType, c.Confirmed()); err != nil {
			log.Warnf("Failed to cache chat %s: %v", c.OrderID, err)
		}
	}
	c.notify()
}

// Confirmed returns server-acknowledged messages inside the retention window, in
// creation order.
func (c *Channel) Confirmed() []model.Message {
	cutoff := c.now().Add(-c.Retention)
	c.mu.Lock()
	out := make([]model.Message, 0, len(c.confirmed))
	for _, m := range c.confirmed {
		if m.Timestamp.After(cutoff) {
			out = append(out, m)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Seq > 0 && out[j].Seq > 0 {
			return out[i].Seq < out[j].Seq
		}
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Messages is the rendered view: confirmed history followed by pending sends in the order
// they were made.
func (c *Channel) Messages() []Entry {
	confirmed := c.Confirmed()
	view := make([]Entry, 0, len(confirmed))
	for _, m := range confirmed {
		view = append(view, Entry{Message: m})
	}

	c.mu.Lock()
	pending := make([]Entry, 0, len(c.pending))
	for _, e := range c.pending {
		pending = append(pending, e)
	}
	c.mu.Unlock()
	sort.Slice(pending, func(i, j int) bool { return pending[i].sent < pending[j].sent })
	return append(view, pending...)
}

// IsOutgoing is the one rule deciding which side of the conversation a message sits on.
func (c *Channel) IsOutgoing(m model.Message) bool {
	return m.SenderID == c.Viewer.ID
}

func (c *Channel) notify() {
	c.mu.Lock()
	fns := append([]func([]Entry){}, c.listeners...)
	c.mu.Unlock()
	if len(fns) == 0 {
		return
	}
	view := c.Messages()
	for _, fn := range fns {
		fn(view)
	}
}
