package notifier

import (
	"log"
	"sync"

	"socialfeed/models"

	"github.com/google/uuid"
)

type Kind string

const (
	PostAdded   Kind = "postAdded"
	PostUpdated Kind = "postUpdated"
	PostDeleted Kind = "postDeleted"
)

// Kinds lists every event kind in a stable order.
var Kinds = []Kind{PostAdded, PostUpdated, PostDeleted}

func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Event is a post change. Added and Updated carry the full post; Deleted carries only the id.
type Event struct {
	Kind   Kind
	Post   *models.Post
	PostID string
}

func Added(p models.Post) Event {
	return Event{Kind: PostAdded, Post: &p, PostID: p.ID.Hex()}
}

func Updated(p models.Post) Event {
	return Event{Kind: PostUpdated, Post: &p, PostID: p.ID.Hex()}
}

func Deleted(id string) Event {
	return Event{Kind: PostDeleted, PostID: id}
}

func (ev Event) clone() Event {
	if ev.Post != nil {
		p := *ev.Post
		ev.Post = &p
	}
	return ev
}

// Notifier fans events out to the subscriptions registered at publish time.
// There is no backlog: a subscriber only sees events published after it subscribed.
type Notifier struct {
	mu     sync.Mutex
	subs   map[string]*Subscription
	buffer int
}

func New(buffer int) *Notifier {
	if buffer < 1 {
		buffer = 64
	}
	return &Notifier{subs: make(map[string]*Subscription), buffer: buffer}
}

// Subscription is one subscriber's delivery channel. Events arrive in publish order.
type Subscription struct {
	ID    string
	kinds map[Kind]bool
	ch    chan Event
	n     *Notifier
	once  sync.Once
}

// Subscribe registers a new subscription. With no kinds the subscription receives every kind.
func (n *Notifier) Subscribe(kinds ...Kind) *Subscription {
	if len(kinds) == 0 {
		kinds = Kinds
	}
	sub := &Subscription{
		ID:    uuid.NewString(),
		kinds: make(map[Kind]bool, len(kinds)),
		ch:    make(chan Event, n.buffer),
		n:     n,
	}
	for _, k := range kinds {
		sub.kinds[k] = true
	}

	n.mu.Lock()
	n.subs[sub.ID] = sub
	total := len(n.subs)
	n.mu.Unlock()

	log.Printf("[Notifier] subscription %s registered %v (total %d)", sub.ID, kinds, total)
	return sub
}

// Events is closed when the subscription is cancelled or dropped.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

func (s *Subscription) Wants(k Kind) bool {
	return s.kinds[k]
}

// Cancel stops delivery. It is safe to call more than once and from any goroutine.
func (s *Subscription) Cancel() {
	s.n.mu.Lock()
	defer s.n.mu.Unlock()
	s.n.remove(s)
}

// remove must be called with n.mu held.
func (n *Notifier) remove(s *Subscription) {
	if n.subs[s.ID] == s {
		delete(n.subs, s.ID)
	}
	s.once.Do(func() { close(s.ch) })
}

// Publish never blocks. A subscriber whose buffer is full is treated as unreachable and is dropped.
// Each subscriber receives its own copy of the post.
func (n *Notifier) Publish(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delivered := 0
	for _, sub := range n.subs {
		if !sub.kinds[ev.Kind] {
			continue
		}
		select {
		case sub.ch <- ev.clone():
			delivered++
		default:
			log.Printf("⚠️ [Notifier] dropping slow subscription %s", sub.ID)
			n.remove(sub)
		}
	}
	log.Printf("📢 [Notifier] %s %s delivered to %d subscribers", ev.Kind, ev.PostID, delivered)
}

func (n *Notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
