package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash *string            `bson:"passwordHash,omitempty" json:"-"`

	// Profile fields
	Username string  `bson:"username" json:"username"`
	Name     string  `bson:"name" json:"name"`
	About    string  `bson:"about" json:"about"`
	Images   []Image `bson:"images" json:"images"`

	CreatedAt int64 `bson:"createdAt" json:"createdAt"`
	UpdatedAt int64 `bson:"updatedAt" json:"updatedAt"`
}

// AsAuthor returns the reference stored on the user's posts.
func (u User) AsAuthor() Author {
	return Author{ID: u.ID, Username: u.Username}
}

// PublicProfile is the view of a user shown to other users.
type PublicProfile struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Name     string             `json:"name"`
	About    string             `json:"about"`
	Images   []Image            `json:"images"`
}

func (u User) Public() PublicProfile {
	images := u.Images
	if images == nil {
		images = []Image{}
	}
	return PublicProfile{ID: u.ID, Username: u.Username, Name: u.Name, About: u.About, Images: images}
}

// UserUpdate lists the profile fields a user may change. Nil fields are left untouched.
type UserUpdate struct {
	Username *string
	Name     *string
	About    *string
	Images   []Image
}
