package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/kintree/pkg/family"
)

// Default MongoDB names.
const (
	DefaultMongoDatabase   = "kintree"
	DefaultMongoCollection = "family_members"
)

// MongoOptions configures a MongoStore.
type MongoOptions struct {
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// MongoStore keeps members as documents keyed by member ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// OpenMongo connects to uri and verifies the connection.
func OpenMongo(ctx context.Context, uri string, opts MongoOptions) (*MongoStore, error) {
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll, now: time.Now}, nil
}

func (s *MongoStore) List(ctx context.Context) ([]family.Member, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, mongoErr("list members", err)
	}
	var out []family.Member
	if err := cur.All(ctx, &out); err != nil {
		return nil, mongoErr("decode members", err)
	}
	return out, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (family.Member, error) {
	var m family.Member
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return family.Member{}, ErrNotFound
	}
	if err != nil {
		return family.Member{}, mongoErr("get member", err)
	}
	return m, nil
}

func (s *MongoStore) Create(ctx context.Context, m family.Member) (family.Member, error) {
	m.ID = uuid.NewString()
	m.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	if _, err := s.coll.InsertOne(ctx, m); err != nil {
		return family.Member{}, mongoErr("insert member", err)
	}
	return m, nil
}

func (s *MongoStore) Update(ctx context.Context, m family.Member) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return mongoErr("update member", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	for _, field := range []string{"parent_id", "parent2_id", "spouse_id"} {
		_, err := s.coll.UpdateMany(ctx, bson.M{field: id}, bson.M{"$unset": bson.M{field: ""}})
		if err != nil {
			return mongoErr("clear "+field, err)
		}
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoErr("delete member", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) SetPosition(ctx context.Context, id string, x, y float64) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"position_x":      x,
		"position_y":      y,
		"custom_position": true,
	}})
	if err != nil {
		return mongoErr("set position", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ClearPositions(ctx context.Context) error {
	_, err := s.coll.UpdateMany(ctx, bson.M{}, bson.M{
		"$unset": bson.M{"position_x": "", "position_y": "", "custom_position": ""},
	})
	return mongoErr("clear positions", err)
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// mongoErr wraps err with context and marks network failures and timeouts
// as retryable.
func mongoErr(op string, err error) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("%s: %w", op, err)
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return Retryable(wrapped)
	}
	return wrapped
}

var _ Store = (*MongoStore)(nil)
