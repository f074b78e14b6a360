package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"socialfeed/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newestFirst orders by creation time, breaking ties on the id so pages never overlap.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// Posts is the Mongo-backed post store.
type Posts struct {
	coll    *mongo.Collection
	timeout time.Duration
	now     func() time.Time
}

func NewPosts(coll *mongo.Collection) *Posts {
	return &Posts{coll: coll, timeout: 10 * time.Second, now: time.Now}
}

func (s *Posts) Create(ctx context.Context, in models.NewPost) (*models.Post, error) {
	content, err := models.ValidateContent(in.Content)
	if err != nil {
		return nil, err
	}

	image := models.PlaceholderImage()
	if in.Image != nil && in.Image.URL != "" {
		image = *in.Image
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := s.now().UnixMilli()
	post := models.Post{
		ID:        primitive.NewObjectID(),
		Content:   content,
		Image:     image,
		PostedBy:  in.Author,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.coll.InsertOne(ctx, post); err != nil {
		log.Printf("[PostStore] Create error: %v", err)
		return nil, unavailable("insert post", err)
	}
	return &post, nil
}

func (s *Posts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var post models.Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("find post", err)
	}
	return &post, nil
}

func (s *Posts) FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Post, error) {
	return s.find(ctx, bson.M{"postedBy._id": authorID}, options.Find().SetSort(newestFirst))
}

// FindPage returns the posts ranked [(page-1)*pageSize, page*pageSize) by recency.
// A page below 1 is treated as 1; a page past the end yields an empty slice.
func (s *Posts) FindPage(ctx context.Context, page, pageSize int) ([]models.Post, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return []models.Post{}, nil
	}
	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
	return s.find(ctx, bson.M{}, opts)
}

// Count returns the collection's estimated size, which is enough for page bounds.
func (s *Posts) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, unavailable("count posts", err)
	}
	return n, nil
}

// Search runs a full-text match over post content. Results are ordered by relevance, then id,
// so a fixed query on a fixed collection always returns the same order.
func (s *Posts) Search(ctx context.Context, query string) ([]models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &models.ValidationError{Field: "query", Message: "query is required"}
	}
	score := bson.M{"$meta": "textScore"}
	opts := options.Find().
		SetProjection(bson.M{"score": score}).
		SetSort(bson.D{{Key: "score", Value: score}, {Key: "_id", Value: -1}})
	return s.find(ctx, bson.M{"$text": bson.M{"$search": query}}, opts)
}

// Update applies fields to a post owned by authorID and returns the updated document.
func (s *Posts) Update(ctx context.Context, id, authorID primitive.ObjectID, upd models.PostUpdate) (*models.Post, error) {
	if _, err := s.owned(ctx, id, authorID); err != nil {
		return nil, err
	}

	set := bson.M{}
	if upd.Content != nil {
		content, err := models.ValidateContent(*upd.Content)
		if err != nil {
			return nil, err
		}
		set["content"] = content
	}
	if upd.Image != nil {
		image := *upd.Image
		if image.URL == "" {
			image = models.PlaceholderImage()
		}
		set["image"] = image
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	set["updatedAt"] = s.now().UnixMilli()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "postedBy._id": authorID}, bson.M{"$set": set}, opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// deleted between the ownership check and the write
		return nil, models.ErrNotFound
	}
	if err != nil {
		log.Printf("[PostStore] Update error: %v", err)
		return nil, unavailable("update post", err)
	}
	return &post, nil
}

// Delete removes a post owned by authorID and returns the removed snapshot.
func (s *Posts) Delete(ctx context.Context, id, authorID primitive.ObjectID) (*models.Post, error) {
	if _, err := s.owned(ctx, id, authorID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var post models.Post
	err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id, "postedBy._id": authorID}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		log.Printf("[PostStore] Delete error: %v", err)
		return nil, unavailable("delete post", err)
	}
	return &post, nil
}

func (s *Posts) owned(ctx context.Context, id, authorID primitive.ObjectID) (*models.Post, error) {
	post, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.PostedBy.ID != authorID {
		return nil, models.ErrUnauthorized
	}
	return post, nil
}

func (s *Posts) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, unavailable("find posts", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, unavailable("decode posts", err)
	}
	return posts, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, models.ErrServiceUnavailable, err)
}
