package console

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
)

const storageTimeout = 5 * time.Second

type locationsLoadedMsg struct {
	filter    catalog.Filter
	locations []catalog.Location
	ratings   map[int]int
	err       error
}

type ratedMsg struct {
	locationID int
	value      int
	location   *catalog.Location
	err        error
}

type userRatingsMsg struct {
	ratings map[int]int
	err     error
}

type storySubmittedMsg struct {
	locationID int
	story      *catalog.Story
	location   *catalog.Location
	err        error
}

type clipboardMsg struct {
	title string
	err   error
}

type noticeExpiredMsg struct {
	seq int
}

func (m Model) loadLocations(filter catalog.Filter) tea.Cmd {
	c := m.catalog
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		locs, err := c.Locations(ctx, filter)
		if err != nil {
			return locationsLoadedMsg{filter: filter, err: err}
		}

		ids := make([]int, len(locs))
		for i, l := range locs {
			ids[i] = l.ID
		}
		ratings, err := c.UserRatings(ctx, ids)
		return locationsLoadedMsg{filter: filter, locations: locs, ratings: ratings, err: err}
	}
}

func (m Model) rate(id, value int) tea.Cmd {
	c := m.catalog
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		loc, err := c.Rate(ctx, id, value)
		return ratedMsg{locationID: id, value: value, location: loc, err: err}
	}
}

func (m Model) loadUserRatings(ids []int) tea.Cmd {
	c := m.catalog
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		ratings, err := c.UserRatings(ctx, ids)
		return userRatingsMsg{ratings: ratings, err: err}
	}
}

func (m Model) submitStoryCmd(id int, draft catalog.StoryDraft) tea.Cmd {
	c := m.catalog
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		story, loc, err := c.SubmitStory(ctx, id, draft)
		return storySubmittedMsg{locationID: id, story: story, location: loc, err: err}
	}
}

func (m Model) copyLocation(loc catalog.Location) tea.Cmd {
	copyFn := m.opts.Copy
	return func() tea.Msg {
		return clipboardMsg{title: loc.Title, err: copyFn(loc.Summary())}
	}
}

func expireNotice(seq int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
