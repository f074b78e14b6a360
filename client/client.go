// Package client talks to the feed server: page fetches over HTTP and change events over the websocket.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"socialfeed/feed"
	"socialfeed/notifier"

	"github.com/gorilla/websocket"
)

// Client is a thin wrapper around the feed API. Token is optional.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	dialer  *websocket.Dialer
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		dialer:  websocket.DefaultDialer,
	}
}

// FetchPage loads one feed page.
func (c *Client) FetchPage(ctx context.Context, page int) (*feed.PostsResponse, error) {
	path := "/api/posts?page=" + strconv.Itoa(page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API GET %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var res feed.PostsResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decoding page: %w", err)
	}
	return &res, nil
}

// Stream is a live change subscription. Events is closed when the connection ends.
type Stream struct {
	conn   *websocket.Conn
	events chan notifier.Event

	mu  sync.Mutex
	err error
}

func (s *Stream) Events() <-chan notifier.Event { return s.events }

// Err reports why the stream ended, once Events is closed.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) Close() error {
	return s.conn.Close()
}

// Subscribe opens the websocket and subscribes to kinds (all kinds when empty). It returns once the
// server has acknowledged every channel, so no event published afterwards is missed.
func (c *Client) Subscribe(ctx context.Context, kinds ...notifier.Kind) (*Stream, error) {
	if len(kinds) == 0 {
		kinds = notifier.Kinds
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	u = u.JoinPath("ws")
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if c.token != "" {
		u.RawQuery = url.Values{"token": {c.token}}.Encode()
	}

	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	early, err := handshake(ctx, conn, kinds)
	if err != nil {
		conn.Close()
		return nil, err
	}

	s := &Stream{conn: conn, events: make(chan notifier.Event, 64)}
	go s.read(ctx, early)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	return s, nil
}

// handshake sends one subscribe frame per kind and waits for every ack. Events for channels
// acknowledged earlier can arrive in between; they are returned so the stream replays them.
func handshake(ctx context.Context, conn *websocket.Conn, kinds []notifier.Kind) ([]notifier.Envelope, error) {
	pending := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		pending[string(k)] = true
		msg := map[string]string{"type": "subscribe", "channel": string(k)}
		if err := conn.WriteJSON(msg); err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", k, err)
		}
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	} else {
		conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	}
	defer conn.SetReadDeadline(time.Time{})

	var early []notifier.Envelope
	for len(pending) > 0 {
		var env notifier.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return nil, fmt.Errorf("waiting for subscription ack: %w", err)
		}
		if _, ok := notifier.ParseKind(env.Type); ok {
			early = append(early, env)
			continue
		}

		var ack struct {
			Channel string `json:"channel"`
			Message string `json:"message"`
		}
		json.Unmarshal(env.Payload, &ack)
		switch env.Type {
		case "subscribed":
			delete(pending, ack.Channel)
		case "error":
			return nil, fmt.Errorf("server rejected subscription: %s", ack.Message)
		}
	}
	return early, nil
}

func (s *Stream) read(ctx context.Context, early []notifier.Envelope) {
	defer close(s.events)
	for _, env := range early {
		if !s.emit(ctx, env) {
			return
		}
	}
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			if ctx.Err() != nil {
				s.err = ctx.Err()
			} else {
				s.err = err
			}
			s.mu.Unlock()
			return
		}

		var env notifier.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		if _, ok := notifier.ParseKind(env.Type); !ok {
			continue
		}
		if !s.emit(ctx, env) {
			return
		}
	}
}

func (s *Stream) emit(ctx context.Context, env notifier.Envelope) bool {
	// A broken payload still carries its kind, which is enough for the view to refetch.
	ev, _ := notifier.DecodeEvent(env)

	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		s.mu.Lock()
		s.err = ctx.Err()
		s.mu.Unlock()
		return false
	}
}
