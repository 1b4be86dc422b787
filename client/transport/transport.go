// Package transport keeps one websocket open to the chat hub for the room the user is
// looking at. It reconnects on a fixed delay and gives up after a bounded number of
// attempts; polling covers whatever is missed while it is down.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/client/model"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultReconnectDelay = 3 * time.Second
	DefaultSendRetryDelay = time.Second
	DefaultMaxAttempts    = 10

	writeWait = 5 * time.Second
)

var ErrNotOpen = errors.New("websocket is not open")

type State int

const (
	NotInitialized State = iota
	Connecting
	Open
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "CONNECTING"
	case Open:
		return "OPEN"
	case Closing:
		return "CLOSING"
	case Closed:
		return "CLOSED"
	default:
		return "NOT_INITIALIZED"
	}
}

type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// Client is safe for concurrent use. Tune the exported fields before the first Connect.
type Client struct {
	URL            string
	Dialer         Dialer
	ReconnectDelay time.Duration
	SendRetryDelay time.Duration
	MaxAttempts    int

	mu        sync.Mutex
	conn      *websocket.Conn
	state     State
	room      string
	attempts  int
	reconnect bool
	timer     *time.Timer

	callbacks map[int]func(model.Envelope)
	nextID    int

	writeMu sync.Mutex
}

func New(url string) *Client {
	return &Client{
		URL:            url,
		Dialer:         websocket.DefaultDialer,
		ReconnectDelay: DefaultReconnectDelay,
		SendRetryDelay: DefaultSendRetryDelay,
		MaxAttempts:    DefaultMaxAttempts,
		callbacks:      make(map[int]func(model.Envelope)),
	}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens the socket and joins room. Connecting again for the room already joined
// is a no-op; connecting for another room while open moves the subscription, and while a
// dial is in flight retargets it, so there is never more than one socket.
func (c *Client) Connect(ctx context.Context, room string) error {
	c.mu.Lock()
	switch c.state {
	case Connecting:
		c.room = room
		c.reconnect = true
		c.mu.Unlock()
		return nil
	case Open:
		if c.room == room {
			c.mu.Unlock()
			return nil
		}
		prev, conn := c.room, c.conn
		c.room = room
		c.mu.Unlock()
		c.write(conn, model.Envelope{Type: model.FrameLeave, OrderID: prev})
		return c.write(conn, model.Envelope{Type: model.FrameJoin, OrderID: room})
	}
	c.room = room
	c.reconnect = true
	c.attempts = 0
	c.stopTimerLocked()
	c.state = Connecting
	c.mu.Unlock()

	return c.dial(ctx)
}

// Disconnect leaves the room and closes the socket. No reconnect follows.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.reconnect = false
	c.stopTimerLocked()
	conn, room := c.conn, c.room
	if conn == nil {
		if c.state != NotInitialized {
			c.state = Closed
		}
		c.mu.Unlock()
		return
	}
	c.state = Closing
	c.conn = nil
	c.mu.Unlock()

	if err := c.write(conn, model.Envelope{Type: model.FrameLeave, OrderID: room}); err != nil {
		log.Debugf("leave %s: %v", room, err)
	}
	c.writeMu.Lock()
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	c.writeMu.Unlock()
	conn.Close()

	c.mu.Lock()
	c.state = Closed
	c.mu.Unlock()
}

// Send writes env on the open socket. While a connection is being established it retries
// every SendRetryDelay; a closed socket fails immediately.
func (c *Client) Send(ctx context.Context, env model.Envelope) error {
	for tries := 0; ; tries++ {
		c.mu.Lock()
		state, conn := c.state, c.conn
		c.mu.Unlock()

		switch {
		case state == Open && conn != nil:
			if err := c.write(conn, env); err != nil {
				return apperr.Network("send", err)
			}
			return nil
		case state == Connecting && tries < c.MaxAttempts:
			log.Debugf("Socket connecting, retrying %s in %s", env.Type, c.SendRetryDelay)
			select {
			case <-time.After(c.SendRetryDelay):
			case <-ctx.Done():
				return apperr.Network("send", ctx.Err())
			}
		default:
			log.Warnf("Dropping %s frame: socket is %s", env.Type, state)
			return apperr.Network("send", ErrNotOpen)
		}
	}
}

// OnMessage registers fn for every inbound frame and returns a func that removes it.
func (c *Client) OnMessage(fn func(model.Envelope)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.callbacks[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.callbacks, id)
		c.mu.Unlock()
	}
}

func (c *Client) dial(ctx context.Context) error {
	conn, _, err := c.Dialer.DialContext(ctx, c.URL, nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.reconnect {
		if conn != nil {
			conn.Close()
		}
		return apperr.Network("connect", ErrNotOpen)
	}
	if err != nil {
		log.Warnf("WebSocket dial %s failed: %v", c.URL, err)
		c.state = Closed
		c.scheduleLocked()
		return apperr.Network("connect", err)
	}

	if c.conn != nil {
		// a socket is already live; this dial lost the race
		conn.Close()
		return nil
	}
	c.conn = conn
	c.state = Open
	c.attempts = 0
	room := c.room
	go c.readLoop(conn)

	if err := c.write(conn, model.Envelope{Type: model.FrameJoin, OrderID: room}); err != nil {
		log.Warnf("join %s: %v", room, err)
	}
	log.Infof("WebSocket connected, joined %s", room)
	return nil
}

func (c *Client) scheduleLocked() {
	if c.attempts >= c.MaxAttempts {
		log.Warnf("WebSocket giving up after %d reconnect attempts", c.attempts)
		return
	}
	c.attempts++
	c.stopTimerLocked()
	c.timer = time.AfterFunc(c.ReconnectDelay, func() {
		c.mu.Lock()
		if !c.reconnect || c.state == Connecting || c.state == Open {
			c.mu.Unlock()
			return
		}
		c.state = Connecting
		c.mu.Unlock()
		c.dial(context.Background())
	})
}

func (c *Client) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
				c.state = Closed
				if c.reconnect {
					log.Warnf("WebSocket closed unexpectedly: %v", err)
					c.scheduleLocked()
				}
			}
			c.mu.Unlock()
			conn.Close()
			return
		}

		var env model.Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
			log.Warnf("Dropping malformed frame: %s", data)
			continue
		}
		c.dispatch(env)
	}
}

func (c *Client) dispatch(env model.Envelope) {
	c.mu.Lock()
	fns := make([]func(model.Envelope), 0, len(c.callbacks))
	for _, fn := range c.callbacks {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(env)
	}
}

func (c *Client) write(conn *websocket.Conn, env model.Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
