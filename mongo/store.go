// Package mongo is a realestates.Store on MongoDB.
package mongo

import (
	"context"
	"time"

	"github.com/friendsofgo/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/cursor"
	"github.com/nrfta/realestates-go/filter"
)

// Collection is the collection real estates are stored in.
const Collection = "realestates"

// Connect opens a client for uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongo")
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "ping mongo")
	}
	return client, nil
}

// Store implements realestates.Store on a MongoDB collection.
type Store struct {
	collection *mongo.Collection
}

var _ realestates.Store = (*Store)(nil)

// New creates a Store on the real estates collection of db.
func New(db *mongo.Database) *Store {
	return &Store{collection: db.Collection(Collection)}
}

// EnsureIndexes creates the indexes list queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "tags.name", Value: 1}, {Key: "tags.value", Value: 1}}},
		{Keys: bson.D{{Key: "permissions.group", Value: 1}, {Key: "permissions.actions", Value: 1}}},
		{Keys: bson.D{{Key: "permissions.user", Value: 1}, {Key: "permissions.actions", Value: 1}}},
	})
	return errors.Wrap(err, "mongo: create indexes")
}

func (s *Store) Create(ctx context.Context, re *realestates.RealEstate) error {
	if _, err := s.collection.InsertOne(ctx, toDocument(re)); err != nil {
		return errors.Wrap(err, "mongo: insert real estate")
	}
	return nil
}

func (s *Store) FindOne(ctx context.Context, id string) (*realestates.RealEstate, error) {
	var doc document
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, realestates.ErrNoRecord
	}
	if err != nil {
		return nil, errors.Wrapf(err, "mongo: find real estate %s", id)
	}
	return doc.model(), nil
}

// Find applies the filter and the keyset boundary as one query document.
func (s *Store) Find(ctx context.Context, params realestates.FetchParams) ([]*realestates.RealEstate, error) {
	query, err := FindQuery(params)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(Sort(params.OrderBy))
	if params.Limit > 0 {
		opts.SetLimit(int64(params.Limit))
	}

	cur, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "mongo: find real estates")
	}
	defer cur.Close(ctx)

	var docs []*document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "mongo: decode real estates")
	}

	out := make([]*realestates.RealEstate, len(docs))
	for i, doc := range docs {
		out[i] = doc.model()
	}
	return out, nil
}

// FindQuery is the query document Find sends for params.
func FindQuery(params realestates.FetchParams) (bson.M, error) {
	return Translate(filter.Conjoin(params.Filter, cursor.Boundary(params.OrderBy, params.Cursor)))
}

func (s *Store) Update(ctx context.Context, re *realestates.RealEstate) error {
	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": re.ID}, toDocument(re))
	if err != nil {
		return errors.Wrapf(err, "mongo: replace real estate %s", re.ID)
	}
	if result.MatchedCount == 0 {
		return realestates.ErrNoRecord
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "mongo: delete real estate %s", id)
	}
	if result.DeletedCount == 0 {
		return realestates.ErrNoRecord
	}
	return nil
}
