package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ariane/internal/entity"
)

func TestPageServiceCreateRequiresStory(t *testing.T) {
	store := setupServiceStore(t)
	svc := NewPageService(store, setupAssetStore(t), nil)

	_, err := svc.Create(context.Background(), "missing", PageInput{Title: "A"})
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPageServiceCountsCharactersAndKeepsSingleFirst(t *testing.T) {
	store := setupServiceStore(t)
	svc := NewPageService(store, setupAssetStore(t), nil)
	ctx := context.Background()

	story, _ := store.Stories.Create(ctx, &entity.Story{UserID: "u", Title: "s"})
	a, err := svc.Create(ctx, story.ID, PageInput{Title: "A", Text: "Ça commence", First: true})
	if err != nil {
		t.Fatalf("create A: %v", err)
	}
	if a.TotalCharacters != 11 {
		t.Fatalf("expected 11 characters, got %d", a.TotalCharacters)
	}

	b, err := svc.Create(ctx, story.ID, PageInput{Title: "B", First: true})
	if err != nil {
		t.Fatalf("create B: %v", err)
	}

	reloaded, err := svc.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("get A: %v", err)
	}
	if reloaded.First {
		t.Fatalf("expected A to be demoted")
	}
	if !b.First {
		t.Fatalf("expected B to be first")
	}

	if _, err := svc.Update(ctx, b.ID, PageInput{Title: " "}); !errors.Is(err, entity.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPageServiceDeleteRemovesOutgoingChoices(t *testing.T) {
	store := setupServiceStore(t)
	svc := NewPageService(store, setupAssetStore(t), nil)
	ctx := context.Background()

	story, _ := store.Stories.Create(ctx, &entity.Story{UserID: "u", Title: "s"})
	a, _ := svc.Create(ctx, story.ID, PageInput{Title: "A"})
	b, _ := svc.Create(ctx, story.ID, PageInput{Title: "B"})
	if _, err := store.Choices.Create(ctx, &entity.Choice{PageID: a.ID, SendToPageID: b.ID, Title: "go"}); err != nil {
		t.Fatalf("create choice: %v", err)
	}

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	choices, err := store.Choices.ListByPage(ctx, a.ID)
	if err != nil {
		t.Fatalf("list choices: %v", err)
	}
	if len(choices) != 0 {
		t.Fatalf("expected choices to be removed, got %d", len(choices))
	}

	removed, err := svc.DeleteByStory(ctx, story.ID)
	if err != nil {
		t.Fatalf("delete by story: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 page removed, got %d", removed)
	}
}

func TestPageServiceSetImage(t *testing.T) {
	store := setupServiceStore(t)
	files := setupAssetStore(t)
	svc := NewPageService(store, files, nil)
	ctx := context.Background()

	story, _ := store.Stories.Create(ctx, &entity.Story{UserID: "u", Title: "s"})
	page, _ := svc.Create(ctx, story.ID, PageInput{Title: "A"})

	updated, err := svc.SetImage(ctx, page.ID, pngBytes(t, 8, 8))
	if err != nil {
		t.Fatalf("set image: %v", err)
	}
	if entity.StringValue(updated.Image) != "pages/"+page.ID+".png" {
		t.Fatalf("unexpected image path %v", updated.Image)
	}

	if err := svc.Delete(ctx, page.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if files.Exists("pages/" + page.ID + ".png") {
		t.Fatalf("expected image to be removed with the page")
	}
}
