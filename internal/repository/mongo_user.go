package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ariane/internal/entity"
)

type mongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository returns a UserRepository backed by the users collection.
func NewMongoUserRepository(mdb *mongo.Database) UserRepository {
	return &mongoUserRepository{users: mdb.Collection(usersCollection)}
}

func (r *mongoUserRepository) List(ctx context.Context) ([]*entity.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]*entity.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toEntity())
	}
	return users, nil
}

func (r *mongoUserRepository) Get(ctx context.Context, id string) (*entity.User, error) {
	oid, err := objectID(id, "user")
	if err != nil {
		return nil, err
	}
	var doc userDocument
	if err := r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoNotFoundOr(err, "get user %s", id)
	}
	return doc.toEntity(), nil
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		return nil, mongoNotFoundOr(err, "get user by email")
	}
	return doc.toEntity(), nil
}

func (r *mongoUserRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	doc := userDocumentFromEntity(user)
	result, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	doc.ID = result.InsertedID.(primitive.ObjectID)
	return doc.toEntity(), nil
}

func (r *mongoUserRepository) Update(ctx context.Context, user *entity.User) (*entity.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	oid, err := objectID(user.ID, "user")
	if err != nil {
		return nil, err
	}

	result, err := r.users.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"userName":  user.UserName,
		"email":     user.Email,
		"password":  user.Password,
		"salt":      user.Salt,
	}})
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", user.ID, err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("update user %s: %w", user.ID, entity.ErrNotFound)
	}
	return r.Get(ctx, user.ID)
}

func (r *mongoUserRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, "user")
	if err != nil {
		return err
	}
	result, err := r.users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("delete user %s: %w", id, entity.ErrNotFound)
	}
	return nil
}
