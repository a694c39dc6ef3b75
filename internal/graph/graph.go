// Package graph 把平铺存储的页面与选项组装成故事图，并计算打印用的章节序号。
package graph

import (
	"sort"
	"unicode/utf8"

	"github.com/ariane/internal/entity"
)

// Graph 是一个故事在单次请求内组装出的只读视图。
type Graph struct {
	Story *entity.Story
	// First is the entry page; it is never part of Ordered.
	First *entity.Page
	// Pages keeps store order.
	Pages []*entity.Page
	// Ordered holds every other page in section order.
	Ordered []*entity.Page

	index    map[string]*entity.Page
	inbound  map[string]int
	dangling []*entity.Choice
}

// Build attaches choices to their origin pages, sets arrival titles and assigns sections.
// The pages are modified in place.
func Build(story *entity.Story, pages []*entity.Page, choices []*entity.Choice) *Graph {
	g := &Graph{
		Story:   story,
		Pages:   pages,
		index:   make(map[string]*entity.Page, len(pages)),
		inbound: make(map[string]int, len(pages)),
	}
	for _, page := range pages {
		page.Choices = nil
		page.ChoiceTitle = ""
		page.Section = 0
		g.index[page.ID] = page
	}

	for _, choice := range choices {
		origin, ok := g.index[choice.PageID]
		if !ok {
			continue
		}
		origin.Choices = append(origin.Choices, choice)
	}

	g.enrich(choices)
	g.First, g.Ordered = AssignSections(pages)
	return g
}

// enrich 为每个页面设置到达它的选项标题。一个页面有多个入边时以最后一个为准。
func (g *Graph) enrich(choices []*entity.Choice) {
	parent := make(map[string]string, len(g.Pages))
	for _, choice := range choices {
		if _, ok := g.index[choice.PageID]; !ok {
			continue
		}
		dest, ok := g.index[choice.SendToPageID]
		if !ok {
			g.dangling = append(g.dangling, choice)
			continue
		}
		dest.ChoiceTitle = choice.Title
		g.inbound[dest.ID]++
		parent[dest.ID] = choice.PageID
	}

	for id, count := range g.inbound {
		page := g.index[id]
		if count == 1 && page.PreviousPageID == nil {
			origin := parent[id]
			page.PreviousPageID = &origin
		}
	}
}

// AssignSections sorts every page except the entry page by the rune length of its
// ChoiceTitle, ties keeping store order, and numbers them from 0.
// When no page is flagged first, the first page in store order is the entry page.
func AssignSections(pages []*entity.Page) (*entity.Page, []*entity.Page) {
	if len(pages) == 0 {
		return nil, nil
	}

	first := pages[0]
	for _, page := range pages {
		if page.First {
			first = page
			break
		}
	}

	ordered := make([]*entity.Page, 0, len(pages)-1)
	for _, page := range pages {
		if page != first {
			ordered = append(ordered, page)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return utf8.RuneCountInString(ordered[i].ChoiceTitle) < utf8.RuneCountInString(ordered[j].ChoiceTitle)
	})

	first.Section = 0
	for i, page := range ordered {
		page.Section = i
	}
	return first, ordered
}

// Page looks a page up by id.
func (g *Graph) Page(id string) (*entity.Page, bool) {
	page, ok := g.index[id]
	return page, ok
}

// Section returns the section of the destination page of choice.
func (g *Graph) Section(choice *entity.Choice) (int, bool) {
	page, ok := g.index[choice.SendToPageID]
	if !ok {
		return 0, false
	}
	return page.Section, true
}

// Inbound reports how many choices lead to the page.
func (g *Graph) Inbound(pageID string) int {
	return g.inbound[pageID]
}

// Dangling returns choices whose destination is not a page of this story.
func (g *Graph) Dangling() []*entity.Choice {
	return g.dangling
}

// Choices flattens the outgoing choices of every page, in page order.
func Choices(pages []*entity.Page) []*entity.Choice {
	var choices []*entity.Choice
	for _, page := range pages {
		choices = append(choices, page.Choices...)
	}
	return choices
}

// IsEmpty reports whether there is nothing to render or export.
func (g *Graph) IsEmpty() bool {
	return g == nil || len(g.Pages) == 0
}
