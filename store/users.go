package store

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"socialfeed/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Users is the identity store: it maps an authenticated principal to a local user record.
type Users struct {
	coll    *mongo.Collection
	timeout time.Duration
	now     func() time.Time
}

func NewUsers(coll *mongo.Collection) *Users {
	return &Users{coll: coll, timeout: 10 * time.Second, now: time.Now}
}

// Create inserts a new user. Email and username uniqueness is enforced by the collection's indexes.
func (s *Users) Create(ctx context.Context, user models.User) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := s.now().UnixMilli()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Images == nil {
		user.Images = []models.Image{models.PlaceholderImage()}
	}

	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrConflict
		}
		log.Printf("[UserStore] Create error: %v", err)
		return nil, unavailable("insert user", err)
	}
	return &user, nil
}

func (s *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (s *Users) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

// List returns every user, most recent first.
func (s *Users) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, unavailable("find users", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, unavailable("decode users", err)
	}
	return users, nil
}

// Update changes profile fields and returns the updated user. Posts keep the username they were
// created with.
func (s *Users) Update(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": s.now().UnixMilli()}
	if upd.Username != nil {
		username := strings.TrimSpace(*upd.Username)
		if username == "" {
			return nil, &models.ValidationError{Field: "username", Message: "username cannot be empty"}
		}
		set["username"] = username
	}
	if upd.Name != nil {
		set["name"] = strings.TrimSpace(*upd.Name)
	}
	if upd.About != nil {
		set["about"] = strings.TrimSpace(*upd.About)
	}
	if upd.Images != nil {
		set["images"] = upd.Images
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrConflict
		}
		return nil, unavailable("update user", err)
	}
	return &user, nil
}

func (s *Users) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var user models.User
	err := s.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("find user", err)
	}
	return &user, nil
}
