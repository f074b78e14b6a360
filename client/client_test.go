package client

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"socialfeed/feed"
	"socialfeed/feed/feedtest"
	"socialfeed/handlers"
	"socialfeed/models"
	"socialfeed/notifier"
	"socialfeed/routes"
	"socialfeed/websocket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type server struct {
	*httptest.Server
	feed   *feed.Service
	events *notifier.Notifier
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	events := notifier.New(16)
	svc := feed.New(feedtest.NewMemoryStore(), events, nil, 4)

	ctx, cancel := context.WithCancel(context.Background())
	manager := websocket.NewManager(events, nil)
	go manager.Start(ctx)

	router := routes.SetupRouter(&handlers.Handler{Feed: svc, JWTSecret: "secret"}, routes.Options{
		CORSOrigins: []string{"http://localhost:3000"},
		WebSocket:   manager.Handler(),
	})
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})
	return &server{Server: ts, feed: svc, events: events}
}

func (s *server) post(t *testing.T, content string) *models.Post {
	t.Helper()
	author := models.Author{ID: primitive.NewObjectID(), Username: "ray"}
	p, err := s.feed.CreatePost(context.Background(), author, feed.CreatePostRequest{Content: content})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func TestFetchPage(t *testing.T) {
	srv := newServer(t)
	for i := 0; i < 6; i++ {
		srv.post(t, fmt.Sprintf("post %d", i))
	}

	c := New(srv.URL+"/", "")
	page, err := c.FetchPage(context.Background(), 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if page.Page != 2 || page.TotalCount != 6 || len(page.Items) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Items[0].Content != "post 1" {
		t.Fatalf("expected newest-first order, got %q first", page.Items[0].Content)
	}
}

func TestFetchPageReportsHTTPErrors(t *testing.T) {
	c := New("http://127.0.0.1:1", "")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := c.FetchPage(ctx, 1); err == nil {
		t.Fatalf("expected error for unreachable server")
	}
}

func TestSubscribeReceivesEveryKind(t *testing.T) {
	srv := newServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := New(srv.URL, "").Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer stream.Close()

	p := srv.post(t, "live")
	content := "live edit"
	if _, err := srv.feed.UpdatePost(ctx, p.PostedBy.ID, feed.UpdatePostRequest{ID: p.ID.Hex(), Content: &content}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := srv.feed.DeletePost(ctx, p.PostedBy.ID, p.ID.Hex()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// one websocket subscription per kind, so ordering only holds within a kind
	got := map[notifier.Kind]notifier.Event{}
	for len(got) < 3 {
		select {
		case ev, ok := <-stream.Events():
			if !ok {
				t.Fatalf("stream closed early: %v", stream.Err())
			}
			got[ev.Kind] = ev
		case <-ctx.Done():
			t.Fatalf("timed out, got %v", got)
		}
	}
	if got[notifier.PostAdded].Post.Content != "live" {
		t.Fatalf("unexpected postAdded: %+v", got[notifier.PostAdded])
	}
	if got[notifier.PostUpdated].Post.Content != "live edit" {
		t.Fatalf("unexpected postUpdated: %+v", got[notifier.PostUpdated])
	}
	if got[notifier.PostDeleted].PostID != p.ID.Hex() || got[notifier.PostDeleted].Post != nil {
		t.Fatalf("unexpected postDeleted: %+v", got[notifier.PostDeleted])
	}
}

func TestSubscribeSingleKind(t *testing.T) {
	srv := newServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := New(srv.URL, "").Subscribe(ctx, notifier.PostDeleted)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	p := srv.post(t, "soon gone")
	if _, err := srv.feed.DeletePost(ctx, p.PostedBy.ID, p.ID.Hex()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	select {
	case ev := <-stream.Events():
		if ev.Kind != notifier.PostDeleted {
			t.Fatalf("expected only postDeleted, got %s", ev.Kind)
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for postDeleted")
	}

	cancel()
	for range stream.Events() {
	}
	if stream.Err() == nil {
		t.Fatalf("expected an error once the context is cancelled")
	}
}
