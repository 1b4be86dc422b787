// Package hub keeps websocket connections grouped into per-order rooms.
package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/domain"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*conn]bool
}

type conn struct {
	ws    *websocket.Conn
	send  chan []byte
	rooms map[string]bool
}

func New() *Hub {
	return &Hub{rooms: make(map[string]map[*conn]bool)}
}

// ServeWS upgrades the request and serves the connection until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("ws upgrade error: %v", err)
		return
	}
	c := &conn{ws: ws, send: make(chan []byte, sendBuffer), rooms: make(map[string]bool)}
	go c.writePump()
	h.readPump(c)
}

func (h *Hub) join(c *conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.rooms == nil {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*conn]bool)
	}
	h.rooms[room][c] = true
	c.rooms[room] = true
}

func (h *Hub) leave(c *conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, room)
}

func (h *Hub) leaveLocked(c *conn, room string) {
	if c.rooms == nil {
		return
	}
	delete(h.rooms[room], c)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
	delete(c.rooms, room)
}

// drop removes c from every room and closes its send queue. Holding the write lock
// guarantees no Broadcast is sending on the queue while it closes.
func (h *Hub) drop(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.rooms == nil {
		return
	}
	for room := range c.rooms {
		h.leaveLocked(c, room)
	}
	c.rooms = nil
	close(c.send)
}

func (h *Hub) Broadcast(room string, env domain.Envelope) {
	h.relay(room, env, nil)
}

func (h *Hub) relay(room string, env domain.Envelope, except *conn) {
	payload, err := json.Marshal(env)
	if err != nil {
		log.Errorf("ws encode error: %v", err)
		return
	}

	var slow []*conn
	h.mu.RLock()
	for c := range h.rooms[room] {
		if c == except {
			continue
		}
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Warnf("ws client too slow, dropping connection from room %s", room)
		h.drop(c)
	}
}

// RoomSize reports how many connections are joined to room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) readPump(c *conn) {
	defer func() {
		h.drop(c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(64 << 10)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read error: %v", err)
			}
			return
		}

		var env domain.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Warnf("invalid ws frame: %v", err)
			continue
		}
		room := env.Room()
		if room == "" {
			log.Warnf("ws frame %q without order id dropped", env.Type)
			continue
		}

		switch env.Type {
		case domain.FrameJoin:
			h.join(c, room)
		case domain.FrameLeave:
			h.leave(c, room)
		case domain.FrameNewMessage:
			// A hint only; the message itself was stored through REST.
			if env.Data == nil {
				log.Warnf("new_message frame for %s without data dropped", room)
				continue
			}
			h.relay(room, env, c)
		default:
			log.Warnf("unknown ws frame type %q dropped", env.Type)
		}
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
