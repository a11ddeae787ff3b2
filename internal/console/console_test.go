package console

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/jwebster45206/abandoned-sites/internal/services"
	"github.com/jwebster45206/abandoned-sites/internal/storage"
	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

type harness struct {
	catalog *services.Catalog
	copied  []string
}

func newTestModel(t *testing.T) (Model, *harness) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := storage.NewMemoryStorage()
	require.NoError(t, s.Seed(context.Background(), catalog.MustDefaultSeed()))

	h := &harness{catalog: services.NewCatalog(s, uuid.New(), logger)}
	m := New(h.catalog, logger, Options{
		MarkdownStyle: "notty",
		Copy: func(text string) error {
			h.copied = append(h.copied, text)
			return nil
		},
	})

	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 80})
	m = drain(t, m, m.Init())
	return m, h
}

// drain runs cmd and every command it leads to, feeding each message back
// into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 100, "command chain did not settle")

		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}

		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
		default:
			next, nc := m.Update(msg)
			m = next.(Model)
			queue = append(queue, nc)
		}
	}
	return m
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return drain(t, next.(Model), cmd)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		default:
			msg = keyRunes(k)
		}
		m = send(t, m, msg)
	}
	return m
}

func storiesOf(t *testing.T, h *harness, id int) []catalog.Story {
	t.Helper()
	loc, err := h.catalog.Location(context.Background(), id)
	require.NoError(t, err)
	return loc.Stories
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestModel_LoadsCatalog(t *testing.T) {
	m, _ := newTestModel(t)

	require.Len(t, m.Locations(), 5)
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, 1, sel.ID)

	view := m.View()
	for _, loc := range m.Locations() {
		assert.Contains(t, view, loc.Title)
	}
	assert.Contains(t, view, "5 locations")
}

func TestModel_ExpandingOneCollapsesAnother(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "enter")
	assert.Equal(t, 1, m.ExpandedID())

	m = press(t, m, "down", "enter")
	assert.Equal(t, 2, m.ExpandedID(), "expanding the second card collapses the first")

	m = press(t, m, "enter")
	assert.Equal(t, 0, m.ExpandedID(), "toggling the expanded card collapses it")
}

func TestModel_ExpandedDetailTabs(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "enter")
	view := m.View()
	assert.Contains(t, view, "History")
	assert.Contains(t, view, "Stories (2)")
	assert.Contains(t, view, "press 1-5")

	m = press(t, m, "tab")
	assert.Equal(t, tabStories, m.tab)
	sel, _ := m.Selected()
	assert.Contains(t, m.View(), sel.Stories[0].Author)
}

func TestModel_FilterKeepsMatchingInOrder(t *testing.T) {
	m, _ := newTestModel(t)

	// all -> easy
	m = press(t, m, "d")
	assert.Equal(t, catalog.DifficultyEasy, m.Filter().Difficulty)

	var ids []int
	for _, loc := range m.Locations() {
		assert.True(t, m.Filter().Matches(loc))
		ids = append(ids, loc.ID)
	}
	assert.Equal(t, []int{3, 4}, ids)

	// back to all after cycling every level
	m = press(t, m, "d", "d", "d", "d")
	assert.Equal(t, catalog.DifficultyAll, m.Filter().Difficulty)
	assert.Len(t, m.Locations(), 5)
}

func TestModel_FilterCollapsesHiddenCard(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "enter")
	require.Equal(t, 1, m.ExpandedID())

	// Red October is medium; the easy filter hides it.
	m = press(t, m, "d")
	assert.Equal(t, 0, m.ExpandedID())

	// Back to all; the cursor stays on Wonder Island.
	m = press(t, m, "a")
	sel, _ := m.Selected()
	require.Equal(t, 3, sel.ID)
	m = press(t, m, "enter")
	require.Equal(t, 3, m.ExpandedID())

	// Wonder Island is easy and stays visible.
	m = press(t, m, "d")
	assert.Equal(t, 3, m.ExpandedID())
	sel, _ = m.Selected()
	assert.Equal(t, 3, sel.ID, "cursor follows the selected location")
}

func TestModel_EmptyState(t *testing.T) {
	m, _ := newTestModel(t)

	// hard + amusement
	m = press(t, m, "d", "d", "d", "t", "t", "t")
	assert.Equal(t, catalog.DifficultyHard, m.Filter().Difficulty)
	assert.Equal(t, catalog.TypeAmusement, m.Filter().Type)
	assert.Empty(t, m.Locations())
	assert.Contains(t, m.View(), emptyText)

	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestModel_RateOnce(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "5")
	sel, _ := m.Selected()
	assert.Equal(t, 4.5, sel.Rating)
	assert.Equal(t, 128, sel.RatingsCount)
	assert.Equal(t, 5, m.userRatings[1])
	assert.Equal(t, noticeSuccess, m.notice.kind)
	assert.False(t, m.keys.Rate.Enabled())

	m = press(t, m, "1")
	sel, _ = m.Selected()
	assert.Equal(t, 128, sel.RatingsCount, "a second vote is ignored")
	assert.Equal(t, 5, m.userRatings[1])

	m = press(t, m, "enter")
	assert.Contains(t, m.View(), "Your rating")

	// the next location is still open for voting
	m = press(t, m, "down")
	assert.True(t, m.keys.Rate.Enabled())
}

func TestModel_RateKeysLockWhileVotePending(t *testing.T) {
	m, h := newTestModel(t)

	next, first := m.Update(keyRunes("5"))
	m = next.(Model)
	require.NotNil(t, first)
	assert.False(t, m.keys.Rate.Enabled(), "rate keys lock as soon as a vote is sent")

	next, second := m.Update(keyRunes("3"))
	m = next.(Model)
	assert.Nil(t, second, "a second key before the reply sends nothing")

	m = drain(t, m, first)
	assert.Equal(t, 5, m.userRatings[1])
	sel, _ := m.Selected()
	assert.Equal(t, 128, sel.RatingsCount)

	stored, err := h.catalog.UserRatings(context.Background(), []int{1})
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 5}, stored)
}

func TestModel_AlreadyRatedShowsStoredVote(t *testing.T) {
	m, h := newTestModel(t)

	// The session voted outside this model, after it loaded.
	_, err := h.catalog.Rate(context.Background(), 1, 2)
	require.NoError(t, err)
	require.True(t, m.keys.Rate.Enabled())

	m = press(t, m, "4")
	assert.Equal(t, 2, m.userRatings[1], "the stored vote is shown, not the rejected one")
	assert.Equal(t, noticeInfo, m.notice.kind)
	assert.False(t, m.keys.Rate.Enabled())
	assert.Empty(t, m.ratePending)
}

func TestModel_StoryMissingFields(t *testing.T) {
	m, h := newTestModel(t)
	before := len(storiesOf(t, h, 1))

	m = press(t, m, "s")
	require.True(t, m.showDialog)

	m = press(t, m, "X", "ctrl+s")
	assert.True(t, m.showDialog, "dialog stays open")
	assert.False(t, m.dialog.submitting)
	assert.Equal(t, "Please fill in your name and your story.", m.dialog.err)
	assert.Equal(t, noticeError, m.notice.kind)
	assert.Len(t, storiesOf(t, h, 1), before)
}

func TestModel_StoryAppendedLast(t *testing.T) {
	m, h := newTestModel(t)
	before := len(storiesOf(t, h, 1))

	m = press(t, m, "s", "X", "tab", "Y", "ctrl+s")

	assert.False(t, m.showDialog)
	assert.Equal(t, 1, m.ExpandedID())
	assert.Equal(t, tabStories, m.tab)
	assert.Equal(t, noticeSuccess, m.notice.kind)

	stories := storiesOf(t, h, 1)
	require.Len(t, stories, before+1)
	last := stories[len(stories)-1]
	assert.Equal(t, "X", last.Author)
	assert.Equal(t, "Y", last.Text)
	assert.Equal(t, catalog.JustNow, last.Date)

	sel, _ := m.Selected()
	assert.Len(t, sel.Stories, before+1)
	assert.Contains(t, m.View(), "Stories (3)")
}

func TestModel_StoryWithAttachments(t *testing.T) {
	m, h := newTestModel(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.png", pngBytes)
	b := writeFile(t, dir, "b.png", pngBytes)
	v := writeFile(t, dir, "walk.mp4", []byte{0x00, 0x01, 0x02})

	m = press(t, m, "s", "X", "tab", "Y", "tab", a+", "+b, "tab", v, "ctrl+s")
	require.False(t, m.showDialog, m.dialog.err)

	stories := storiesOf(t, h, 1)
	last := stories[len(stories)-1]
	require.Len(t, last.Images, 2)
	assert.Equal(t, "a.png", last.Images[0].Name)
	assert.Equal(t, "b.png", last.Images[1].Name)
	require.NotNil(t, last.Video)
	assert.Equal(t, "video/mp4", last.Video.MIMEType)
}

func TestModel_StoryTooManyImages(t *testing.T) {
	m, h := newTestModel(t)
	before := len(storiesOf(t, h, 1))

	m = press(t, m, "s", "X", "tab", "Y", "tab", "1.png,2.png,3.png,4.png,5.png", "ctrl+s")
	assert.True(t, m.showDialog)
	assert.Equal(t, noticeError, m.notice.kind)
	assert.Contains(t, m.notice.text, "at most 4 photos")
	assert.Len(t, storiesOf(t, h, 1), before)
}

func TestModel_StoryRejectsNonImage(t *testing.T) {
	m, h := newTestModel(t)
	before := len(storiesOf(t, h, 1))
	notes := writeFile(t, t.TempDir(), "notes.txt", []byte("plain text"))

	m = press(t, m, "s", "X", "tab", "Y", "tab", notes, "ctrl+s")
	assert.True(t, m.showDialog)
	assert.Contains(t, m.dialog.err, "is not an image")
	assert.Len(t, storiesOf(t, h, 1), before)
}

func TestModel_StaleImageBatchIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "s", "tab", "tab", "old.png")

	_, err := m.dialog.loadImages(0)
	require.NoError(t, err)
	staleSeq := m.dialog.imageSeq
	_, err = m.dialog.loadImages(0)
	require.NoError(t, err)

	assert.False(t, m.dialog.recordImage(imageReadMsg{seq: staleSeq, index: 0, media: catalog.Media{Name: "old.png", MIMEType: "image/png"}}))
	assert.True(t, m.dialog.loading())

	assert.True(t, m.dialog.recordImage(imageReadMsg{seq: m.dialog.imageSeq, index: 0, media: catalog.Media{Name: "old.png", MIMEType: "image/png"}}))
	assert.False(t, m.dialog.loading())
	assert.Len(t, m.dialog.draftImages, 1)
}

func TestModel_CancelDialogDiscardsDraft(t *testing.T) {
	m, h := newTestModel(t)
	before := len(storiesOf(t, h, 1))

	m = press(t, m, "s", "X", "esc")
	assert.False(t, m.showDialog)
	assert.Len(t, storiesOf(t, h, 1), before)

	m = press(t, m, "s")
	assert.Empty(t, m.dialog.author.Value())
}

func TestModel_CopySelected(t *testing.T) {
	m, h := newTestModel(t)

	m = press(t, m, "c")
	require.Len(t, h.copied, 1)
	assert.True(t, strings.HasPrefix(h.copied[0], "Red October Steelworks (1993)"))
	assert.Equal(t, noticeSuccess, m.notice.kind)
}

func TestModel_QuitModal(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "q")
	assert.True(t, m.showQuitModal)
	assert.Contains(t, m.View(), "Leave the catalog?")

	m = press(t, m, "n")
	assert.False(t, m.showQuitModal)

	m = press(t, m, "q")
	_, cmd := m.Update(keyRunes("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_NoticeExpires(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "c")
	seq := m.notice.seq
	require.NotEmpty(t, m.notice.text)

	m = send(t, m, noticeExpiredMsg{seq: seq - 1})
	assert.NotEmpty(t, m.notice.text, "an older timer leaves the newer notice alone")

	m = send(t, m, noticeExpiredMsg{seq: seq})
	assert.Empty(t, m.notice.text)
}

func TestClampLines(t *testing.T) {
	long := strings.Repeat("word ", 40)
	out := clampLines(long, 20, 2)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], "…"))

	assert.Equal(t, "short", clampLines("short", 20, 2))
}
