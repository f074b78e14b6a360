package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"socialfeed/notifier"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	maxMessage = 512
	sendBuffer = 256
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier func(token string) (string, error)

// Manager tracks connected viewers and bridges their subscriptions to the change notifier.
type Manager struct {
	notifier   *notifier.Notifier
	verify     TokenVerifier
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

type Client struct {
	conn    *websocket.Conn
	userID  string
	send    chan []byte
	manager *Manager

	mu     sync.Mutex
	closed bool
	subs   map[notifier.Kind]*notifier.Subscription
}

// NewManager returns a manager publishing from n. verify may be nil, in which case connections are anonymous.
func NewManager(n *notifier.Notifier, verify TokenVerifier) *Manager {
	return &Manager{
		notifier:   n,
		verify:     verify,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Start runs the registration loop until ctx is done, then closes every remaining client.
func (m *Manager) Start(ctx context.Context) {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = true
			total := len(m.clients)
			m.mu.Unlock()
			log.Printf("✅ WebSocket client registered. Total clients: %d", total)

		case client := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
			}
			total := len(m.clients)
			m.mu.Unlock()
			client.close()
			log.Printf("❌ WebSocket client unregistered. Total clients: %d", total)

		case <-ctx.Done():
			close(m.done)
			m.mu.Lock()
			for client := range m.clients {
				delete(m.clients, client)
				client.close()
			}
			m.mu.Unlock()
			return
		}
	}
}

func (m *Manager) GetConnectedUsers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler upgrades the request. The token query parameter is optional because the feed is public;
// when present it must be valid.
func (m *Manager) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := ""
		if token := r.URL.Query().Get("token"); token != "" && m.verify != nil {
			id, err := m.verify(token)
			if err != nil {
				log.Printf("❌ WebSocket connection rejected: %v", err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			userID = id
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("❌ WebSocket upgrade failed: %v", err)
			return
		}

		client := &Client{
			conn:    conn,
			userID:  userID,
			send:    make(chan []byte, sendBuffer),
			manager: m,
			subs:    make(map[notifier.Kind]*notifier.Subscription),
		}

		select {
		case m.register <- client:
		case <-m.done:
			conn.Close()
			return
		}

		client.reply("connected", map[string]interface{}{
			"userId":  userID,
			"message": "WebSocket connected successfully",
			"time":    time.Now().Unix(),
		})

		go client.writePump()
		go client.readPump()
	}
}

type clientMessage struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.manager.unregister <- c:
		case <-c.manager.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ WebSocket read error: %v", err)
			}
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("❌ WebSocket message unmarshal error: %v", err)
			continue
		}

		switch msg.Type {
		case "subscribe":
			c.handleSubscribe(msg.Channel)
		case "unsubscribe":
			c.handleUnsubscribe(msg.Channel)
		case "ping":
			c.reply("pong", map[string]interface{}{"time": time.Now().Unix()})
		default:
			c.reply("error", map[string]interface{}{"message": "unknown message type", "type": msg.Type})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleSubscribe attaches the client to one notifier channel. Subscribing twice to the same
// channel keeps the existing subscription so events are never delivered twice.
func (c *Client) handleSubscribe(channel string) {
	kind, ok := notifier.ParseKind(channel)
	if !ok {
		c.reply("error", map[string]interface{}{"message": "unknown channel", "channel": channel})
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, exists := c.subs[kind]; !exists {
		sub := c.manager.notifier.Subscribe(kind)
		c.subs[kind] = sub
		go c.forward(sub)
	}
	c.mu.Unlock()

	c.reply("subscribed", map[string]interface{}{
		"channel": channel,
		"userId":  c.userID,
		"time":    time.Now().Unix(),
	})
}

func (c *Client) handleUnsubscribe(channel string) {
	kind, ok := notifier.ParseKind(channel)
	if !ok {
		return
	}

	c.mu.Lock()
	sub := c.subs[kind]
	delete(c.subs, kind)
	c.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
	c.reply("unsubscribed", map[string]interface{}{"channel": channel})
}

// forward copies events from one subscription onto the client's write queue until the
// subscription ends.
func (c *Client) forward(sub *notifier.Subscription) {
	for ev := range sub.Events() {
		msg, err := json.Marshal(ev)
		if err != nil {
			log.Printf("❌ Error marshaling %s event: %v", ev.Kind, err)
			continue
		}
		if !c.enqueue(msg) {
			sub.Cancel()
			return
		}
	}
}

func (c *Client) reply(typ string, payload map[string]interface{}) {
	msg, err := json.Marshal(map[string]interface{}{
		"type":    typ,
		"payload": payload,
	})
	if err != nil {
		log.Printf("❌ Error marshaling %s response: %v", typ, err)
		return
	}
	c.enqueue(msg)
}

// enqueue never blocks. A client whose queue is full is disconnected.
func (c *Client) enqueue(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		log.Printf("⚠️ WebSocket client %q is not keeping up, disconnecting", c.userID)
		c.closeLocked()
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	for kind, sub := range c.subs {
		sub.Cancel()
		delete(c.subs, kind)
	}
}
