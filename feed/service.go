package feed

import (
	"context"
	"errors"
	"log"

	"socialfeed/models"
	"socialfeed/notifier"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPageSize is the number of posts on one feed page.
const DefaultPageSize = 4

type PostStore interface {
	Create(ctx context.Context, in models.NewPost) (*models.Post, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Post, error)
	FindPage(ctx context.Context, page, pageSize int) ([]models.Post, error)
	Count(ctx context.Context) (int64, error)
	Search(ctx context.Context, query string) ([]models.Post, error)
	Update(ctx context.Context, id, authorID primitive.ObjectID, upd models.PostUpdate) (*models.Post, error)
	Delete(ctx context.Context, id, authorID primitive.ObjectID) (*models.Post, error)
}

type Publisher interface {
	Publish(ev notifier.Event)
}

type ImageRemover interface {
	Remove(ctx context.Context, publicID string) error
}

// Service implements the feed queries and mutations on top of a PostStore, announcing every
// successful mutation to the publisher.
type Service struct {
	store    PostStore
	pub      Publisher
	images   ImageRemover
	pageSize int
}

// New builds the service. images may be nil when no image host is configured.
func New(store PostStore, pub Publisher, images ImageRemover, pageSize int) *Service {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Service{store: store, pub: pub, images: images, pageSize: pageSize}
}

func (s *Service) PageSize() int { return s.pageSize }

type PostsRequest struct {
	Page int `form:"page"`
}

type PostsResponse struct {
	Items      []models.Post `json:"items"`
	TotalCount int64         `json:"totalCount"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
}

// Posts returns one feed page and the total post count. A page past the end is empty, not an error.
func (s *Service) Posts(ctx context.Context, req PostsRequest) (*PostsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	items, err := s.store.FindPage(ctx, page, s.pageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &PostsResponse{Items: items, TotalCount: total, Page: page, PageSize: s.pageSize}, nil
}

// Post looks up a single post. Unknown and malformed ids both yield (nil, nil).
func (s *Service) Post(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	post, err := s.store.FindByID(ctx, oid)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	return post, err
}

// PostsByAuthor lists an author's posts, newest first. A malformed id has no posts.
func (s *Service) PostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(authorID)
	if err != nil {
		return []models.Post{}, nil
	}
	return s.store.FindByAuthor(ctx, oid)
}

type SearchRequest struct {
	Query string `form:"query" binding:"required"`
}

func (s *Service) SearchPosts(ctx context.Context, req SearchRequest) ([]models.Post, error) {
	return s.store.Search(ctx, req.Query)
}

func (s *Service) TotalPosts(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// Content bounds are checked after trimming by models.ValidateContent.
type CreatePostRequest struct {
	Content string        `json:"content" binding:"required"`
	Image   *models.Image `json:"image"`
}

func (s *Service) CreatePost(ctx context.Context, author models.Author, req CreatePostRequest) (*models.Post, error) {
	post, err := s.store.Create(ctx, models.NewPost{Content: req.Content, Image: req.Image, Author: author})
	if err != nil {
		return nil, err
	}
	log.Printf("[Feed] post %s created by %s", post.ID.Hex(), author.Username)
	s.pub.Publish(notifier.Added(*post))
	return post, nil
}

type UpdatePostRequest struct {
	ID      string        `json:"-"`
	Content *string       `json:"content"`
	Image   *models.Image `json:"image"`
}

// UpdatePost applies an author's edit. When the image is replaced the previous hosted image is
// removed on a best-effort basis.
func (s *Service) UpdatePost(ctx context.Context, authorID primitive.ObjectID, req UpdatePostRequest) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return nil, models.ErrNotFound
	}

	var previous *models.Post
	if req.Image != nil {
		if previous, err = s.store.FindByID(ctx, oid); err != nil {
			return nil, err
		}
	}

	post, err := s.store.Update(ctx, oid, authorID, models.PostUpdate{Content: req.Content, Image: req.Image})
	if err != nil {
		return nil, err
	}
	if previous != nil && previous.Image.PublicID != post.Image.PublicID {
		s.removeImage(ctx, previous.Image)
	}

	log.Printf("[Feed] post %s updated", post.ID.Hex())
	s.pub.Publish(notifier.Updated(*post))
	return post, nil
}

func (s *Service) DeletePost(ctx context.Context, authorID primitive.ObjectID, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	post, err := s.store.Delete(ctx, oid, authorID)
	if err != nil {
		return nil, err
	}
	s.removeImage(ctx, post.Image)

	log.Printf("[Feed] post %s deleted", post.ID.Hex())
	s.pub.Publish(notifier.Deleted(post.ID.Hex()))
	return post, nil
}

func (s *Service) removeImage(ctx context.Context, img models.Image) {
	if s.images == nil || img.IsPlaceholder() {
		return
	}
	if err := s.images.Remove(ctx, img.PublicID); err != nil {
		log.Printf("⚠️ [Feed] could not remove image %s: %v", img.PublicID, err)
	}
}
