// Package mongostore implements repository.Store on MongoDB.
// Ids are ObjectID hex strings; extra user attributes live inline in the user document.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	itemsCollection     = "items"
	usersCollection     = "users"
	donationsCollection = "donations"
)

// Index names. Duplicate-key errors are mapped back to store errors by name.
const (
	emailIndex    = "users_email_ci"
	googleIDIndex = "users_google_id"
	donorIndex    = "donations_donor_id"
	createdIndex  = "donations_created_at"
)

// emailCollation makes email comparisons case-insensitive.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

// Store is the MongoDB-backed repository.Store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ repository.Store = (*Store)(nil)

// New connects to MongoDB and verifies the connection.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

// EnsureIndexes creates the indexes that enforce user uniqueness.
// It is safe to call on every start.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	users := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(emailIndex).SetUnique(true).SetCollation(emailCollation),
		},
		{
			Keys:    bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetName(googleIDIndex).SetUnique(true).SetSparse(true),
		},
	}
	if _, err := s.db.Collection(usersCollection).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	donations := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "donor_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName(donorIndex),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName(createdIndex),
		},
	}
	if _, err := s.db.Collection(donationsCollection).Indexes().CreateMany(ctx, donations); err != nil {
		return fmt.Errorf("failed to create donation indexes: %w", err)
	}

	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Database exposes the underlying database for tests and tooling.
func (s *Store) Database() *mongo.Database {
	return s.db
}

// objectID parses a hex id. ok is false for malformed ids.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

// duplicateKeyError maps a duplicate-key write error to the store sentinel.
// It returns nil for any other error.
func duplicateKeyError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if strings.Contains(err.Error(), googleIDIndex) {
		return repository.ErrGoogleIDExists
	}
	return repository.ErrEmailExists
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
