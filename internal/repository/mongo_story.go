package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ariane/internal/entity"
)

type mongoStoryRepository struct {
	stories *mongo.Collection
}

// NewMongoStoryRepository returns a StoryRepository backed by the stories collection.
func NewMongoStoryRepository(mdb *mongo.Database) StoryRepository {
	return &mongoStoryRepository{stories: mdb.Collection(storiesCollection)}
}

func (r *mongoStoryRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Story, error) {
	uid, err := referenceID(userID, "userId")
	if err != nil {
		return []*entity.Story{}, nil
	}

	cursor, err := r.stories.Find(ctx, bson.M{"userId": uid}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list stories of user %s: %w", userID, err)
	}
	var docs []storyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list stories of user %s: %w", userID, err)
	}

	stories := make([]*entity.Story, 0, len(docs))
	for i := range docs {
		stories = append(stories, docs[i].toEntity())
	}
	return stories, nil
}

func (r *mongoStoryRepository) Get(ctx context.Context, id string) (*entity.Story, error) {
	oid, err := objectID(id, "story")
	if err != nil {
		return nil, err
	}
	var doc storyDocument
	if err := r.stories.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoNotFoundOr(err, "get story %s", id)
	}
	return doc.toEntity(), nil
}

// GetFull runs the story → pages → choices aggregation in a single round trip.
func (r *mongoStoryRepository) GetFull(ctx context.Context, id string) (*entity.Story, error) {
	oid, err := objectID(id, "story")
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": oid}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         pagesCollection,
			"localField":   "_id",
			"foreignField": "storyId",
			"as":           "pages",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$pages", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         choicesCollection,
			"localField":   "pages._id",
			"foreignField": "pageId",
			"as":           "pages.choices",
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "pages._id", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$_id",
			"story": bson.M{"$first": "$$ROOT"},
			"pages": bson.M{"$push": "$pages"},
		}}},
		{{Key: "$replaceRoot", Value: bson.M{
			"newRoot": bson.M{"$mergeObjects": bson.A{"$story", bson.M{"pages": "$pages"}}},
		}}},
	}

	cursor, err := r.stories.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("get full story %s: %w", id, err)
	}
	var docs []storyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("get full story %s: %w", id, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("get full story %s: %w", id, entity.ErrNotFound)
	}
	return docs[0].toFullEntity(), nil
}

func (r *mongoStoryRepository) Create(ctx context.Context, story *entity.Story) (*entity.Story, error) {
	if err := story.Validate(); err != nil {
		return nil, err
	}
	doc, err := storyDocumentFromEntity(story)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc.CreatedAt, doc.UpdatedAt = now, now
	result, err := r.stories.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}
	doc.ID = result.InsertedID.(primitive.ObjectID)
	return doc.toEntity(), nil
}

func (r *mongoStoryRepository) Update(ctx context.Context, story *entity.Story) (*entity.Story, error) {
	if err := story.Validate(); err != nil {
		return nil, err
	}
	oid, err := objectID(story.ID, "story")
	if err != nil {
		return nil, err
	}

	result, err := r.stories.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"title":           story.Title,
		"summary":         story.Summary,
		"cover":           story.Cover,
		"totalCharacters": story.TotalCharacters,
		"totalEnd":        story.TotalEnd,
		"totalPages":      story.TotalPages,
		"totalOpenNode":   story.TotalOpenNode,
		"updatedAt":       time.Now().UTC().Truncate(time.Millisecond),
	}})
	if err != nil {
		return nil, fmt.Errorf("update story %s: %w", story.ID, err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("update story %s: %w", story.ID, entity.ErrNotFound)
	}
	return r.Get(ctx, story.ID)
}

func (r *mongoStoryRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, "story")
	if err != nil {
		return err
	}
	result, err := r.stories.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete story %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("delete story %s: %w", id, entity.ErrNotFound)
	}
	return nil
}
