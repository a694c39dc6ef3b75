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

type mongoChoiceRepository struct {
	choices *mongo.Collection
	pages   *mongo.Collection
}

// NewMongoChoiceRepository returns a ChoiceRepository backed by the choices collection.
func NewMongoChoiceRepository(mdb *mongo.Database) ChoiceRepository {
	return &mongoChoiceRepository{
		choices: mdb.Collection(choicesCollection),
		pages:   mdb.Collection(pagesCollection),
	}
}

func (r *mongoChoiceRepository) ListByPage(ctx context.Context, pageID string) ([]*entity.Choice, error) {
	pid, err := referenceID(pageID, "pageId")
	if err != nil {
		return []*entity.Choice{}, nil
	}
	return r.find(ctx, bson.M{"pageId": pid}, "list choices of page "+pageID)
}

func (r *mongoChoiceRepository) ListByStory(ctx context.Context, storyID string) ([]*entity.Choice, error) {
	sid, err := referenceID(storyID, "storyId")
	if err != nil {
		return []*entity.Choice{}, nil
	}

	raw, err := r.pages.Distinct(ctx, "_id", bson.M{"storyId": sid})
	if err != nil {
		return nil, fmt.Errorf("list choices of story %s: %w", storyID, err)
	}
	if len(raw) == 0 {
		return []*entity.Choice{}, nil
	}
	return r.find(ctx, bson.M{"pageId": bson.M{"$in": raw}}, "list choices of story "+storyID)
}

func (r *mongoChoiceRepository) Get(ctx context.Context, id string) (*entity.Choice, error) {
	oid, err := objectID(id, "choice")
	if err != nil {
		return nil, err
	}
	var doc choiceDocument
	if err := r.choices.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoNotFoundOr(err, "get choice %s", id)
	}
	return doc.toEntity(), nil
}

func (r *mongoChoiceRepository) GetBySendToPage(ctx context.Context, pageID string) (*entity.Choice, error) {
	pid, err := objectID(pageID, "page")
	if err != nil {
		return nil, err
	}
	var doc choiceDocument
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	if err := r.choices.FindOne(ctx, bson.M{"sendToPageId": pid}, opts).Decode(&doc); err != nil {
		return nil, mongoNotFoundOr(err, "get choice sending to page %s", pageID)
	}
	return doc.toEntity(), nil
}

func (r *mongoChoiceRepository) Create(ctx context.Context, choice *entity.Choice) (*entity.Choice, error) {
	if err := choice.Validate(); err != nil {
		return nil, err
	}
	doc, err := choiceDocumentFromEntity(choice)
	if err != nil {
		return nil, err
	}

	result, err := r.choices.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create choice: %w", err)
	}
	doc.ID = result.InsertedID.(primitive.ObjectID)
	return doc.toEntity(), nil
}

func (r *mongoChoiceRepository) Update(ctx context.Context, choice *entity.Choice) (*entity.Choice, error) {
	if err := choice.Validate(); err != nil {
		return nil, err
	}
	oid, err := objectID(choice.ID, "choice")
	if err != nil {
		return nil, err
	}
	doc, err := choiceDocumentFromEntity(choice)
	if err != nil {
		return nil, err
	}

	result, err := r.choices.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"pageId":       doc.PageID,
		"sendToPageId": doc.SendToPageID,
		"title":        doc.Title,
	}})
	if err != nil {
		return nil, fmt.Errorf("update choice %s: %w", choice.ID, err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("update choice %s: %w", choice.ID, entity.ErrNotFound)
	}
	return r.Get(ctx, choice.ID)
}

func (r *mongoChoiceRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, "choice")
	if err != nil {
		return err
	}
	result, err := r.choices.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete choice %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("delete choice %s: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (r *mongoChoiceRepository) DeleteByPage(ctx context.Context, pageID string) (int64, error) {
	pid, err := referenceID(pageID, "pageId")
	if err != nil {
		return 0, nil
	}
	result, err := r.choices.DeleteMany(ctx, bson.M{"pageId": pid})
	if err != nil {
		return 0, fmt.Errorf("delete choices of page %s: %w", pageID, err)
	}
	return result.DeletedCount, nil
}

func (r *mongoChoiceRepository) find(ctx context.Context, filter bson.M, op string) ([]*entity.Choice, error) {
	cursor, err := r.choices.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var docs []choiceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	choices := make([]*entity.Choice, 0, len(docs))
	for i := range docs {
		choices = append(choices, docs[i].toEntity())
	}
	return choices, nil
}
