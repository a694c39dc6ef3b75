package graph

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ariane/internal/db"
	"github.com/ariane/internal/entity"
	"github.com/ariane/internal/repository"
)

func setupGraphStore(t *testing.T) *repository.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:graph-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	store := repository.NewGormStore(gdb)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func seedExample(t *testing.T, store *repository.Store) *entity.Story {
	t.Helper()
	ctx := context.Background()

	story, err := store.Stories.Create(ctx, &entity.Story{UserID: "u", Title: "S"})
	require.NoError(t, err)
	a, err := store.Pages.Create(ctx, &entity.Page{StoryID: story.ID, Title: "A", First: true})
	require.NoError(t, err)
	b, err := store.Pages.Create(ctx, &entity.Page{StoryID: story.ID, Title: "B"})
	require.NoError(t, err)
	c, err := store.Pages.Create(ctx, &entity.Page{StoryID: story.ID, Title: "C", End: true})
	require.NoError(t, err)
	_, err = store.Choices.Create(ctx, &entity.Choice{PageID: a.ID, SendToPageID: b.ID, Title: "Open the door"})
	require.NoError(t, err)
	_, err = store.Choices.Create(ctx, &entity.Choice{PageID: b.ID, SendToPageID: c.ID, Title: "Enter"})
	require.NoError(t, err)
	return story
}

func TestServiceAssemble(t *testing.T) {
	store := setupGraphStore(t)
	story := seedExample(t, store)
	svc := NewService(store, nil)

	g, err := svc.Assemble(context.Background(), story.ID)
	require.NoError(t, err)

	assert.Equal(t, story.ID, g.Story.ID)
	assert.Equal(t, "A", g.First.Title)
	require.Len(t, g.Ordered, 2)
	assert.Equal(t, "C", g.Ordered[0].Title)
	assert.Equal(t, "B", g.Ordered[1].Title)
}

func TestServiceAssembleEmptyStoryIsNoContent(t *testing.T) {
	store := setupGraphStore(t)
	svc := NewService(store, nil)

	_, err := svc.Assemble(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrNoContent)

	pages, err := svc.Pages(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestServiceFullStory(t *testing.T) {
	store := setupGraphStore(t)
	story := seedExample(t, store)
	svc := NewService(store, nil)

	full, err := svc.FullStory(context.Background(), story.ID)
	require.NoError(t, err)
	require.Len(t, full.Pages, 3)

	byTitle := map[string]*entity.Page{}
	for _, p := range full.Pages {
		byTitle[p.Title] = p
	}
	assert.Equal(t, "", byTitle["A"].ChoiceTitle)
	assert.Equal(t, "Open the door", byTitle["B"].ChoiceTitle)
	assert.Equal(t, "Enter", byTitle["C"].ChoiceTitle)
	require.Len(t, byTitle["A"].Choices, 1)
	assert.Equal(t, byTitle["B"].ID, byTitle["A"].Choices[0].SendToPageID)

	_, err = svc.FullGraph(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrNoContent)
}
