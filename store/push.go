package store

import (
	"context"
	"time"

	"socialfeed/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PushSubscriptions stores one browser push endpoint per user.
type PushSubscriptions struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewPushSubscriptions(coll *mongo.Collection) *PushSubscriptions {
	return &PushSubscriptions{coll: coll, timeout: 5 * time.Second}
}

// Save upserts the user's subscription, replacing any previous endpoint.
func (s *PushSubscriptions) Save(ctx context.Context, sub models.PushSubscription) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.coll.UpdateOne(
		ctx,
		bson.M{"userId": sub.UserID},
		bson.M{"$set": bson.M{"userId": sub.UserID, "sub": sub.Sub}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return unavailable("save push subscription", err)
	}
	return nil
}

func (s *PushSubscriptions) List(ctx context.Context) ([]models.PushSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, unavailable("find push subscriptions", err)
	}
	defer cursor.Close(ctx)

	subs := []models.PushSubscription{}
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, unavailable("decode push subscriptions", err)
	}
	return subs, nil
}

func (s *PushSubscriptions) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.coll.DeleteOne(ctx, bson.M{"userId": userID}); err != nil {
		return unavailable("delete push subscription", err)
	}
	return nil
}
