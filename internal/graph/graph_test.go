package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariane/internal/entity"
)

// exampleStory is A(first) -> B "Open the door" -> C(end) "Enter".
func exampleStory() ([]*entity.Page, []*entity.Choice) {
	pages := []*entity.Page{
		{ID: "A", StoryID: "S", Title: "Start", First: true},
		{ID: "B", StoryID: "S", Title: "Hall"},
		{ID: "C", StoryID: "S", Title: "Room", End: true},
	}
	choices := []*entity.Choice{
		{ID: "c1", PageID: "A", SendToPageID: "B", Title: "Open the door"},
		{ID: "c2", PageID: "B", SendToPageID: "C", Title: "Enter"},
	}
	return pages, choices
}

func TestBuildExampleStory(t *testing.T) {
	pages, choices := exampleStory()
	g := Build(&entity.Story{ID: "S"}, pages, choices)

	a, _ := g.Page("A")
	b, _ := g.Page("B")
	c, _ := g.Page("C")

	assert.Equal(t, "", a.ChoiceTitle)
	assert.Equal(t, "Open the door", b.ChoiceTitle)
	assert.Equal(t, "Enter", c.ChoiceTitle)

	require.Same(t, a, g.First)
	require.Len(t, g.Ordered, 2)
	assert.Same(t, c, g.Ordered[0])
	assert.Same(t, b, g.Ordered[1])
	assert.Equal(t, 0, c.Section)
	assert.Equal(t, 1, b.Section)

	section, ok := g.Section(b.Choices[0])
	require.True(t, ok)
	assert.Equal(t, 0, section)
}

func TestBuildAttachesOutgoingChoices(t *testing.T) {
	pages, choices := exampleStory()
	choices = append(choices, &entity.Choice{ID: "c3", PageID: "A", SendToPageID: "C", Title: "Shortcut"})
	g := Build(&entity.Story{ID: "S"}, pages, choices)

	a, _ := g.Page("A")
	require.Len(t, a.Choices, 2)
	assert.Equal(t, "c1", a.Choices[0].ID)
	assert.Equal(t, "c3", a.Choices[1].ID)
	assert.Empty(t, pages[2].Choices)
	assert.Equal(t, 2, g.Inbound("C"))
}

func TestBuildYieldsOneNodePerPage(t *testing.T) {
	pages, choices := exampleStory()
	pages = append(pages, &entity.Page{ID: "D", StoryID: "S", Title: "Orphan"})
	g := Build(&entity.Story{ID: "S"}, pages, choices)

	assert.Len(t, g.Pages, 4)
	assert.Len(t, g.Ordered, 3)
	d, _ := g.Page("D")
	assert.Equal(t, "", d.ChoiceTitle)
	// 空标题长度为 0，排在最前。
	assert.Equal(t, 0, d.Section)
}

func TestMultipleInboundChoicesLastMatchWins(t *testing.T) {
	pages, choices := exampleStory()
	choices = append(choices, &entity.Choice{ID: "c3", PageID: "A", SendToPageID: "C", Title: "Jump"})
	g := Build(&entity.Story{ID: "S"}, pages, choices)

	c, _ := g.Page("C")
	assert.Equal(t, "Jump", c.ChoiceTitle)
	assert.Nil(t, c.PreviousPageID, "pages with several parents keep no previous page")

	b, _ := g.Page("B")
	require.NotNil(t, b.PreviousPageID)
	assert.Equal(t, "A", *b.PreviousPageID)
}

func TestSectionsAreDeterministic(t *testing.T) {
	build := func() map[string]int {
		pages := []*entity.Page{
			{ID: "P0", Title: "entry", First: true},
			{ID: "P1", Title: "one"},
			{ID: "P2", Title: "two"},
			{ID: "P3", Title: "three"},
			{ID: "P4", Title: "four"},
		}
		choices := []*entity.Choice{
			{PageID: "P0", SendToPageID: "P1", Title: "abc"},
			{PageID: "P0", SendToPageID: "P2", Title: "xyz"},
			{PageID: "P1", SendToPageID: "P3", Title: "a"},
			{PageID: "P2", SendToPageID: "P4", Title: "ééé"},
		}
		Build(&entity.Story{}, pages, choices)
		sections := map[string]int{}
		for _, p := range pages {
			sections[p.ID] = p.Section
		}
		return sections
	}

	first := build()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, build())
	}
	// 长度相同的标题保持存储顺序，多字节字符按字符计数。
	assert.Equal(t, 0, first["P3"])
	assert.Equal(t, 1, first["P1"])
	assert.Equal(t, 2, first["P2"])
	assert.Equal(t, 3, first["P4"])
}

func TestAssignSectionsWithoutFlaggedFirstPage(t *testing.T) {
	pages := []*entity.Page{{ID: "X", Title: "x"}, {ID: "Y", Title: "y"}}
	first, ordered := AssignSections(pages)

	assert.Same(t, pages[0], first)
	require.Len(t, ordered, 1)
	assert.Same(t, pages[1], ordered[0])
}

func TestBuildRecordsDanglingChoices(t *testing.T) {
	pages, choices := exampleStory()
	choices = append(choices, &entity.Choice{ID: "lost", PageID: "B", SendToPageID: "elsewhere", Title: "Void"})
	g := Build(&entity.Story{ID: "S"}, pages, choices)

	require.Len(t, g.Dangling(), 1)
	assert.Equal(t, "lost", g.Dangling()[0].ID)
	_, ok := g.Section(g.Dangling()[0])
	assert.False(t, ok)
}

func TestBuildEmpty(t *testing.T) {
	g := Build(&entity.Story{ID: "S"}, nil, nil)
	assert.True(t, g.IsEmpty())
	assert.Nil(t, g.First)
}
