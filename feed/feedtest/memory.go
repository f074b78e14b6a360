// Package feedtest provides an in-memory PostStore for tests.
package feedtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"socialfeed/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore mirrors the Mongo store's semantics closely enough for service and handler tests.
type MemoryStore struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]models.Post
	clock int64

	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{posts: make(map[primitive.ObjectID]models.Post), clock: time.Now().UnixMilli()}
}

// tick returns strictly increasing timestamps so ordering is deterministic.
func (m *MemoryStore) tick() int64 {
	m.clock++
	return m.clock
}

func (m *MemoryStore) Create(_ context.Context, in models.NewPost) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	content, err := models.ValidateContent(in.Content)
	if err != nil {
		return nil, err
	}
	image := models.PlaceholderImage()
	if in.Image != nil && in.Image.URL != "" {
		image = *in.Image
	}
	now := m.tick()
	post := models.Post{
		ID:        primitive.NewObjectID(),
		Content:   content,
		Image:     image,
		PostedBy:  in.Author,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.posts[post.ID] = post
	return &post, nil
}

func (m *MemoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	post, ok := m.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &post, nil
}

func (m *MemoryStore) FindByAuthor(_ context.Context, authorID primitive.ObjectID) ([]models.Post, error) {
	return m.filter(func(p models.Post) bool { return p.PostedBy.ID == authorID })
}

func (m *MemoryStore) FindPage(_ context.Context, page, pageSize int) ([]models.Post, error) {
	all, err := m.filter(func(models.Post) bool { return true })
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if pageSize < 1 || start >= len(all) {
		return []models.Post{}, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (m *MemoryStore) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return int64(len(m.posts)), nil
}

func (m *MemoryStore) Search(_ context.Context, query string) ([]models.Post, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, &models.ValidationError{Field: "query", Message: "query is required"}
	}
	terms := strings.Fields(query)
	return m.filter(func(p models.Post) bool {
		content := strings.ToLower(p.Content)
		for _, t := range terms {
			if strings.Contains(content, t) {
				return true
			}
		}
		return false
	})
}

func (m *MemoryStore) Update(_ context.Context, id, authorID primitive.ObjectID, upd models.PostUpdate) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	post, ok := m.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if post.PostedBy.ID != authorID {
		return nil, models.ErrUnauthorized
	}
	if upd.Content != nil {
		content, err := models.ValidateContent(*upd.Content)
		if err != nil {
			return nil, err
		}
		post.Content = content
	}
	if upd.Image != nil {
		post.Image = *upd.Image
		if post.Image.URL == "" {
			post.Image = models.PlaceholderImage()
		}
	}
	post.UpdatedAt = m.tick()
	m.posts[id] = post
	return &post, nil
}

func (m *MemoryStore) Delete(_ context.Context, id, authorID primitive.ObjectID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	post, ok := m.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if post.PostedBy.ID != authorID {
		return nil, models.ErrUnauthorized
	}
	delete(m.posts, id)
	return &post, nil
}

// filter returns matching posts newest first, ties broken by id descending.
func (m *MemoryStore) filter(keep func(models.Post) bool) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Post{}
	for _, p := range m.posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

