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

type mongoPageRepository struct {
	pages *mongo.Collection
}

// NewMongoPageRepository returns a PageRepository backed by the pages collection.
func NewMongoPageRepository(mdb *mongo.Database) PageRepository {
	return &mongoPageRepository{pages: mdb.Collection(pagesCollection)}
}

func (r *mongoPageRepository) ListByStory(ctx context.Context, storyID string) ([]*entity.Page, error) {
	sid, err := referenceID(storyID, "storyId")
	if err != nil {
		return []*entity.Page{}, nil
	}

	cursor, err := r.pages.Find(ctx, bson.M{"storyId": sid}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list pages of story %s: %w", storyID, err)
	}
	var docs []pageDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list pages of story %s: %w", storyID, err)
	}

	pages := make([]*entity.Page, 0, len(docs))
	for i := range docs {
		pages = append(pages, docs[i].toEntity())
	}
	return pages, nil
}

func (r *mongoPageRepository) Get(ctx context.Context, id string) (*entity.Page, error) {
	oid, err := objectID(id, "page")
	if err != nil {
		return nil, err
	}
	var doc pageDocument
	if err := r.pages.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoNotFoundOr(err, "get page %s", id)
	}
	return doc.toEntity(), nil
}

func (r *mongoPageRepository) Create(ctx context.Context, page *entity.Page) (*entity.Page, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	doc, err := pageDocumentFromEntity(page)
	if err != nil {
		return nil, err
	}

	result, err := r.pages.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	doc.ID = result.InsertedID.(primitive.ObjectID)
	return doc.toEntity(), nil
}

func (r *mongoPageRepository) Update(ctx context.Context, page *entity.Page) (*entity.Page, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	oid, err := objectID(page.ID, "page")
	if err != nil {
		return nil, err
	}
	doc, err := pageDocumentFromEntity(page)
	if err != nil {
		return nil, err
	}

	result, err := r.pages.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"previousPageId":  doc.PreviousPageID,
		"title":           doc.Title,
		"text":            doc.Text,
		"first":           doc.First,
		"end":             doc.End,
		"totalCharacters": doc.TotalCharacters,
		"image":           doc.Image,
	}})
	if err != nil {
		return nil, fmt.Errorf("update page %s: %w", page.ID, err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("update page %s: %w", page.ID, entity.ErrNotFound)
	}
	return r.Get(ctx, page.ID)
}

func (r *mongoPageRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, "page")
	if err != nil {
		return err
	}
	result, err := r.pages.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete page %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("delete page %s: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (r *mongoPageRepository) DeleteByStory(ctx context.Context, storyID string) (int64, error) {
	sid, err := referenceID(storyID, "storyId")
	if err != nil {
		return 0, nil
	}
	result, err := r.pages.DeleteMany(ctx, bson.M{"storyId": sid})
	if err != nil {
		return 0, fmt.Errorf("delete pages of story %s: %w", storyID, err)
	}
	return result.DeletedCount, nil
}
