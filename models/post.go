package models

import (
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Placeholder image used when a post is created without one.
const (
	PlaceholderImageURL      = "https://res.cloudinary.com/tacticapps/image/upload/v1624277410/sample.jpg"
	PlaceholderImagePublicID = "sample"

	MaxContentLength = 150
)

type Image struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"publicId" json:"publicId"`
}

// PlaceholderImage returns the default post image.
func PlaceholderImage() Image {
	return Image{URL: PlaceholderImageURL, PublicID: PlaceholderImagePublicID}
}

// IsPlaceholder reports whether the image is the shared default and must never be removed from the host.
func (i Image) IsPlaceholder() bool {
	return i.PublicID == "" || i.PublicID == PlaceholderImagePublicID
}

// Author is a denormalized reference to the user who created a post.
type Author struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
}

type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	Image     Image              `bson:"image" json:"image"`
	PostedBy  Author             `bson:"postedBy" json:"postedBy"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"` // unix millis
	UpdatedAt int64              `bson:"updatedAt" json:"updatedAt"`
}

// NewPost carries the inputs of a post creation.
type NewPost struct {
	Content string
	Image   *Image
	Author  Author
}

// PostUpdate lists the fields an author may change. Nil fields are left untouched.
type PostUpdate struct {
	Content *string
	Image   *Image
}

// ValidateContent trims the content and checks it against the post length bounds.
func ValidateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", &ValidationError{Field: "content", Message: "content is required"}
	}
	if utf8.RuneCountInString(trimmed) > MaxContentLength {
		return "", &ValidationError{Field: "content", Message: "content must be at most 150 characters"}
	}
	return trimmed, nil
}
