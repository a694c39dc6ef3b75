package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ariane/internal/entity"
)

// Mongo 集合名称，与原有文档库保持一致。
const (
	storiesCollection = "stories"
	pagesCollection   = "pages"
	choicesCollection = "choices"
	usersCollection   = "users"
)

// NewMongoStore connects once to MongoDB and wires document-store repositories.
func NewMongoStore(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	mdb := client.Database(database)
	return &Store{
		Stories: NewMongoStoryRepository(mdb),
		Pages:   NewMongoPageRepository(mdb),
		Choices: NewMongoChoiceRepository(mdb),
		Users:   NewMongoUserRepository(mdb),
		close:   client.Disconnect,
	}, nil
}

// objectID parses a lookup id. A malformed id can never match a document.
func objectID(id, kind string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s %q: %w", kind, id, entity.ErrNotFound)
	}
	return oid, nil
}

// referenceID parses an id stored as a reference on another document.
func referenceID(id, field string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s is not a valid id", entity.ErrValidation, field)
	}
	return oid, nil
}

func optionalReference(id *string, field string) (*primitive.ObjectID, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	oid, err := referenceID(*id, field)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}

func hexOrNil(oid *primitive.ObjectID) *string {
	if oid == nil || oid.IsZero() {
		return nil
	}
	hex := oid.Hex()
	return &hex
}

func mongoNotFoundOr(err error, format string, args ...any) error {
	op := fmt.Sprintf(format, args...)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", op, entity.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
