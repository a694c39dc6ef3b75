package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ariane/internal/entity"
)

type storyDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UserID          primitive.ObjectID `bson:"userId"`
	Title           string             `bson:"title"`
	Summary         string             `bson:"summary"`
	Cover           *string            `bson:"cover"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
	TotalCharacters int                `bson:"totalCharacters"`
	TotalEnd        int                `bson:"totalEnd"`
	TotalPages      int                `bson:"totalPages"`
	TotalOpenNode   int                `bson:"totalOpenNode"`
	// Pages is only filled by the full-story aggregation.
	Pages []pageDocument `bson:"pages,omitempty"`
}

type pageDocument struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty"`
	StoryID         primitive.ObjectID  `bson:"storyId"`
	PreviousPageID  *primitive.ObjectID `bson:"previousPageId"`
	Title           string              `bson:"title"`
	Text            string              `bson:"text"`
	First           bool                `bson:"first"`
	End             bool                `bson:"end"`
	TotalCharacters int                 `bson:"totalCharacters"`
	Image           *string             `bson:"image"`
	Choices         []choiceDocument    `bson:"choices,omitempty"`
}

type choiceDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	PageID       primitive.ObjectID `bson:"pageId"`
	SendToPageID primitive.ObjectID `bson:"sendToPageId"`
	Title        string             `bson:"title"`
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FirstName string             `bson:"firstName"`
	LastName  string             `bson:"lastName"`
	UserName  string             `bson:"userName"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Salt      string             `bson:"salt"`
}

func storyDocumentFromEntity(s *entity.Story) (storyDocument, error) {
	userID, err := referenceID(s.UserID, "userId")
	if err != nil {
		return storyDocument{}, err
	}
	return storyDocument{
		UserID:          userID,
		Title:           s.Title,
		Summary:         s.Summary,
		Cover:           s.Cover,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		TotalCharacters: s.TotalCharacters,
		TotalEnd:        s.TotalEnd,
		TotalPages:      s.TotalPages,
		TotalOpenNode:   s.TotalOpenNode,
	}, nil
}

func (d *storyDocument) toEntity() *entity.Story {
	return &entity.Story{
		ID:              d.ID.Hex(),
		UserID:          d.UserID.Hex(),
		Title:           d.Title,
		Summary:         d.Summary,
		Cover:           d.Cover,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		TotalCharacters: d.TotalCharacters,
		TotalEnd:        d.TotalEnd,
		TotalPages:      d.TotalPages,
		TotalOpenNode:   d.TotalOpenNode,
	}
}

func (d *storyDocument) toFullEntity() *entity.Story {
	story := d.toEntity()
	for i := range d.Pages {
		// A story without pages still yields one empty element from $unwind.
		if d.Pages[i].ID.IsZero() {
			continue
		}
		page := d.Pages[i].toEntity()
		for j := range d.Pages[i].Choices {
			page.Choices = append(page.Choices, d.Pages[i].Choices[j].toEntity())
		}
		story.Pages = append(story.Pages, page)
	}
	return story
}

func pageDocumentFromEntity(p *entity.Page) (pageDocument, error) {
	storyID, err := referenceID(p.StoryID, "storyId")
	if err != nil {
		return pageDocument{}, err
	}
	previous, err := optionalReference(p.PreviousPageID, "previousPageId")
	if err != nil {
		return pageDocument{}, err
	}
	return pageDocument{
		StoryID:         storyID,
		PreviousPageID:  previous,
		Title:           p.Title,
		Text:            p.Text,
		First:           p.First,
		End:             p.End,
		TotalCharacters: p.TotalCharacters,
		Image:           p.Image,
	}, nil
}

func (d *pageDocument) toEntity() *entity.Page {
	return &entity.Page{
		ID:              d.ID.Hex(),
		StoryID:         d.StoryID.Hex(),
		PreviousPageID:  hexOrNil(d.PreviousPageID),
		Title:           d.Title,
		Text:            d.Text,
		First:           d.First,
		End:             d.End,
		TotalCharacters: d.TotalCharacters,
		Image:           d.Image,
	}
}

func choiceDocumentFromEntity(c *entity.Choice) (choiceDocument, error) {
	pageID, err := referenceID(c.PageID, "pageId")
	if err != nil {
		return choiceDocument{}, err
	}
	sendTo, err := referenceID(c.SendToPageID, "sendToPageId")
	if err != nil {
		return choiceDocument{}, err
	}
	return choiceDocument{
		PageID:       pageID,
		SendToPageID: sendTo,
		Title:        c.Title,
	}, nil
}

func (d *choiceDocument) toEntity() *entity.Choice {
	return &entity.Choice{
		ID:           d.ID.Hex(),
		PageID:       d.PageID.Hex(),
		SendToPageID: d.SendToPageID.Hex(),
		Title:        d.Title,
	}
}

func userDocumentFromEntity(u *entity.User) userDocument {
	return userDocument{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserName:  u.UserName,
		Email:     u.Email,
		Password:  u.Password,
		Salt:      u.Salt,
	}
}

func (d *userDocument) toEntity() *entity.User {
	return &entity.User{
		ID:        d.ID.Hex(),
		FirstName: d.FirstName,
		LastName:  d.LastName,
		UserName:  d.UserName,
		Email:     d.Email,
		Password:  d.Password,
		Salt:      d.Salt,
	}
}
