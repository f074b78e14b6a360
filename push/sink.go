package push

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
	"unicode/utf8"

	"socialfeed/models"
	"socialfeed/notifier"

	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubscriptionStore interface {
	List(ctx context.Context) ([]models.PushSubscription, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

// Sender delivers one push message. It matches webpush.SendNotificationWithContext.
type Sender func(ctx context.Context, message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error)

// Sink forwards new posts to every stored browser subscription except the author's.
type Sink struct {
	store    SubscriptionStore
	notifier *notifier.Notifier
	options  webpush.Options
	send     Sender
	timeout  time.Duration
}

func NewSink(store SubscriptionStore, n *notifier.Notifier, publicKey, privateKey, subscriber string) *Sink {
	return &Sink{
		store:    store,
		notifier: n,
		options: webpush.Options{
			Subscriber:      subscriber,
			VAPIDPublicKey:  publicKey,
			VAPIDPrivateKey: privateKey,
			TTL:             30,
		},
		send:    webpush.SendNotificationWithContext,
		timeout: 10 * time.Second,
	}
}

// GenerateKeys returns a fresh VAPID key pair.
func GenerateKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	return publicKey, privateKey, err
}

// Run listens for postAdded until ctx is done. If the notifier drops the sink for falling
// behind, it subscribes again and carries on with later events.
func (s *Sink) Run(ctx context.Context) {
	for {
		sub := s.notifier.Subscribe(notifier.PostAdded)
		if !s.drain(ctx, sub) {
			return
		}
		log.Println("⚠️ [Push] subscription dropped, resubscribing")
	}
}

func (s *Sink) drain(ctx context.Context, sub *notifier.Subscription) bool {
	defer sub.Cancel()
	for {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-sub.Events():
			if !ok {
				return ctx.Err() == nil
			}
			if ev.Post != nil {
				s.Notify(ctx, *ev.Post)
			}
		}
	}
}

type payload struct {
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Icon  string      `json:"icon"`
	Data  payloadData `json:"data"`
}

type payloadData struct {
	URL       string `json:"url"`
	PostID    string `json:"postId"`
	Timestamp int64  `json:"timestamp"`
}

// Notify pushes one post to every subscriber but its author. Expired subscriptions are removed.
func (s *Sink) Notify(ctx context.Context, post models.Post) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	subs, err := s.store.List(ctx)
	if err != nil {
		log.Printf("❌ [Push] could not list subscriptions: %v", err)
		return
	}

	msg, err := json.Marshal(payload{
		Title: "New post from @" + post.PostedBy.Username,
		Body:  truncate(post.Content, 100),
		Icon:  post.Image.URL,
		Data: payloadData{
			URL:       "/posts/" + post.ID.Hex(),
			PostID:    post.ID.Hex(),
			Timestamp: post.CreatedAt,
		},
	})
	if err != nil {
		log.Printf("❌ [Push] marshal payload: %v", err)
		return
	}

	sent := 0
	for i := range subs {
		sub := subs[i]
		if sub.UserID == post.PostedBy.ID {
			continue
		}
		opts := s.options
		resp, err := s.send(ctx, msg, &sub.Sub, &opts)
		if resp != nil {
			resp.Body.Close()
		}
		if resp != nil && resp.StatusCode == http.StatusGone {
			log.Printf("[Push] subscription for user %s expired, deleting", sub.UserID.Hex())
			if delErr := s.store.DeleteByUser(ctx, sub.UserID); delErr != nil {
				log.Printf("❌ [Push] delete expired subscription: %v", delErr)
			}
			continue
		}
		if err != nil {
			log.Printf("❌ [Push] send to user %s failed: %v", sub.UserID.Hex(), err)
			continue
		}
		sent++
	}
	log.Printf("🔔 [Push] post %s pushed to %d subscribers", post.ID.Hex(), sent)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
