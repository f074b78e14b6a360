package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"socialfeed/models"
	"socialfeed/notifier"

	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubStore struct {
	mu      sync.Mutex
	subs    []models.PushSubscription
	deleted []primitive.ObjectID
	listErr error
}

func (s *stubStore) List(context.Context) ([]models.PushSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PushSubscription(nil), s.subs...), s.listErr
}

func (s *stubStore) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, userID)
	return nil
}

type sent struct {
	endpoint string
	body     payload
}

func recordingSender(status map[string]int, out chan<- sent) Sender {
	return func(_ context.Context, msg []byte, sub *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
		var p payload
		if err := json.Unmarshal(msg, &p); err != nil {
			return nil, err
		}
		out <- sent{endpoint: sub.Endpoint, body: p}

		rec := httptest.NewRecorder()
		code := http.StatusCreated
		if c, ok := status[sub.Endpoint]; ok {
			code = c
		}
		rec.WriteHeader(code)
		if code >= 500 {
			return rec.Result(), errors.New("push service error")
		}
		return rec.Result(), nil
	}
}

func subscription(endpoint string) models.PushSubscription {
	return models.PushSubscription{
		ID:     primitive.NewObjectID(),
		UserID: primitive.NewObjectID(),
		Sub:    webpush.Subscription{Endpoint: endpoint},
	}
}

func TestNotifySkipsAuthorAndDeletesExpired(t *testing.T) {
	author := subscription("https://push/author")
	fresh := subscription("https://push/fresh")
	expired := subscription("https://push/expired")
	store := &stubStore{subs: []models.PushSubscription{author, fresh, expired}}

	out := make(chan sent, 10)
	sink := NewSink(store, notifier.New(4), "pub", "priv", "mailto:test@example.com")
	sink.send = recordingSender(map[string]int{"https://push/expired": http.StatusGone}, out)

	post := models.Post{
		ID:       primitive.NewObjectID(),
		Content:  "hello there",
		PostedBy: models.Author{ID: author.UserID, Username: "ray"},
	}
	sink.Notify(context.Background(), post)
	close(out)

	var endpoints []string
	for s := range out {
		endpoints = append(endpoints, s.endpoint)
		if s.body.Title != "New post from @ray" || s.body.Body != "hello there" || s.body.Data.PostID != post.ID.Hex() {
			t.Fatalf("unexpected payload: %+v", s.body)
		}
	}
	if len(endpoints) != 2 {
		t.Fatalf("expected 2 sends (author skipped), got %v", endpoints)
	}
	for _, e := range endpoints {
		if e == author.Sub.Endpoint {
			t.Fatalf("author must not be notified of their own post")
		}
	}
	if len(store.deleted) != 1 || store.deleted[0] != expired.UserID {
		t.Fatalf("expected expired subscription removed, got %v", store.deleted)
	}
}

func TestRunForwardsPostAddedOnly(t *testing.T) {
	viewer := subscription("https://push/viewer")
	store := &stubStore{subs: []models.PushSubscription{viewer}}
	n := notifier.New(4)

	out := make(chan sent, 10)
	sink := NewSink(store, n, "pub", "priv", "mailto:test@example.com")
	sink.send = recordingSender(nil, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sink.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for n.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("sink never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	post := models.Post{ID: primitive.NewObjectID(), Content: "first", PostedBy: models.Author{ID: primitive.NewObjectID(), Username: "sam"}}
	n.Publish(notifier.Updated(post))
	n.Publish(notifier.Deleted(post.ID.Hex()))
	n.Publish(notifier.Added(post))

	select {
	case s := <-out:
		if s.body.Data.PostID != post.ID.Hex() {
			t.Fatalf("unexpected push: %+v", s)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected a push for postAdded")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("sink did not stop on cancel")
	}
	if len(out) != 0 {
		t.Fatalf("expected only one push, got %d more", len(out))
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo", 10); got != "héllo" {
		t.Fatalf("short string changed: %q", got)
	}
	if got := truncate("héllo wörld", 5); got != "héllo..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
}
