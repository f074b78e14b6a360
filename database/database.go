package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DB bundles the client and the collections the service works with.
type DB struct {
	Client   *mongo.Client
	Posts    *mongo.Collection
	Users    *mongo.Collection
	PushSubs *mongo.Collection
	timeout  time.Duration
}

func ConnectMongo(ctx context.Context, uri, name string) (*DB, error) {
	if uri == "" {
		log.Println("MONGODB_URI not set, using default localhost")
		uri = "mongodb://127.0.0.1:27017"
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping MongoDB
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	db := client.Database(name)
	log.Println("Connected to MongoDB successfully")
	return &DB{
		Client:   client,
		Posts:    db.Collection("posts"),
		Users:    db.Collection("users"),
		PushSubs: db.Collection("push_subscriptions"),
		timeout:  10 * time.Second,
	}, nil
}

// ConnectWithRetry tries ConnectMongo up to attempts times, pausing between failures.
func ConnectWithRetry(ctx context.Context, uri, name string, attempts int) (*DB, error) {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		db, err := ConnectMongo(ctx, uri, name)
		if err == nil {
			return db, nil
		}
		lastErr = err
		log.Printf("❌ MongoDB connection attempt %d failed: %v", i, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("connect mongo after %d attempts: %w", attempts, lastErr)
}

// EnsureIndexes creates the indexes the feed queries rely on: recency ordering, author lookup,
// keyword search and unique user identities.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	_, err := d.Posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "postedBy._id", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "content", Value: "text"}}},
	})
	if err != nil {
		return fmt.Errorf("post indexes: %w", err)
	}

	_, err = d.Users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	_, err = d.PushSubs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("push subscription indexes: %w", err)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return d.Client.Ping(ctx, nil)
}

func (d *DB) Disconnect() error {
	if d == nil || d.Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.Client.Disconnect(ctx); err != nil {
		return err
	}

	log.Println("Disconnected from MongoDB")
	return nil
}
