// Package console is the interactive terminal browser for the catalog.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/jwebster45206/abandoned-sites/internal/media"
	"github.com/jwebster45206/abandoned-sites/internal/storage"
	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
)

// Catalog is the subset of services.Catalog the console needs.
type Catalog interface {
	Locations(ctx context.Context, filter catalog.Filter) ([]catalog.Location, error)
	Rate(ctx context.Context, id int, value int) (*catalog.Location, error)
	UserRatings(ctx context.Context, ids []int) (map[int]int, error)
	SubmitStory(ctx context.Context, id int, draft catalog.StoryDraft) (*catalog.Story, *catalog.Location, error)
}

type Options struct {
	MaxMediaBytes int64
	NoticeTTL     time.Duration // 0 keeps notices until replaced
	Copy          func(string) error
	MarkdownStyle string // glamour standard style name
}

func DefaultOptions() Options {
	return Options{
		MaxMediaBytes: 10 << 20,
		NoticeTTL:     4 * time.Second,
		Copy:          clipboard.WriteAll,
		MarkdownStyle: "dark",
	}
}

type detailTab int

const (
	tabHistory detailTab = iota
	tabStories
)

type noticeKind int

const (
	noticeInfo noticeKind = iota
	noticeSuccess
	noticeError
)

type notice struct {
	text string
	kind noticeKind
	seq  int
}

var showAll = catalog.Filter{Difficulty: catalog.DifficultyAll, Type: catalog.TypeAll}

const (
	chromeHeight = 8 // header, filter bar, notice and help lines
	dialogWidth  = 70
)

// Model is the bubbletea model for the catalog browser.
type Model struct {
	catalog Catalog
	opts    Options
	logger  *slog.Logger

	keys       keyMap
	dialogKeys dialogKeyMap
	help       help.Model
	list       viewport.Model

	filter      catalog.Filter
	locations   []catalog.Location
	loaded      bool
	cursor      int
	expandedID  int // 0 when every card is collapsed
	tab         detailTab
	userRatings map[int]int
	ratePending map[int]bool // votes sent but not yet answered

	dialog        storyDialog
	showDialog    bool
	showQuitModal bool
	notice        notice

	width    int
	height   int
	ready    bool
	markdown *glamour.TermRenderer
}

func New(c Catalog, logger *slog.Logger, opts Options) Model {
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.MaxMediaBytes <= 0 {
		opts.MaxMediaBytes = DefaultOptions().MaxMediaBytes
	}
	if opts.MarkdownStyle == "" {
		opts.MarkdownStyle = DefaultOptions().MarkdownStyle
	}

	list := viewport.New(80, 20)
	list.MouseWheelEnabled = true

	return Model{
		catalog:     c,
		opts:        opts,
		logger:      logger,
		keys:        defaultKeyMap(),
		dialogKeys:  defaultDialogKeyMap(),
		help:        help.New(),
		list:        list,
		filter:      showAll,
		userRatings: make(map[int]int),
		ratePending: make(map[int]bool),
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadLocations(m.filter)
}

// Selected returns the location under the cursor.
func (m Model) Selected() (catalog.Location, bool) {
	if m.cursor < 0 || m.cursor >= len(m.locations) {
		return catalog.Location{}, false
	}
	return m.locations[m.cursor], true
}

// ExpandedID is the id of the expanded card, 0 when none is.
func (m Model) ExpandedID() int {
	return m.expandedID
}

func (m Model) Filter() catalog.Filter {
	return m.filter
}

func (m Model) Locations() []catalog.Location {
	return m.locations
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.Width = msg.Width
		m.list.Height = max(msg.Height-chromeHeight, 3)
		m.help.Width = msg.Width
		m.markdown = newMarkdownRenderer(m.opts.MarkdownStyle, m.detailWidth()-4)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.showQuitModal {
			return m.updateQuitModal(msg)
		}
		if m.showDialog {
			return m.updateDialog(msg)
		}
		return m.updateBrowser(msg)

	case tea.MouseMsg:
		if m.showDialog || m.showQuitModal {
			return m, nil
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case locationsLoadedMsg:
		if msg.filter != m.filter {
			return m, nil
		}
		if msg.err != nil {
			return m, m.notify(noticeError, "Could not load locations: "+msg.err.Error())
		}
		m.setLocations(msg.locations)
		for id, v := range msg.ratings {
			m.userRatings[id] = v
		}
		m.loaded = true
		m.refresh()
		return m, nil

	case ratedMsg:
		delete(m.ratePending, msg.locationID)
		if msg.err != nil {
			m.refresh()
			if errors.Is(msg.err, storage.ErrAlreadyRated) {
				// The stored vote wins; fetch it rather than trusting msg.value.
				return m, tea.Batch(
					m.notify(noticeInfo, "You already rated this location."),
					m.loadUserRatings([]int{msg.locationID}),
				)
			}
			return m, m.notify(noticeError, "Rating failed: "+msg.err.Error())
		}
		m.userRatings[msg.locationID] = msg.value
		m.replaceLocation(*msg.location)
		m.refresh()
		return m, m.notify(noticeSuccess, fmt.Sprintf("Thanks! You rated %s %d/5.", msg.location.Title, msg.value))

	case userRatingsMsg:
		if msg.err != nil {
			m.logger.Warn("Failed to load session ratings", "error", msg.err)
			return m, nil
		}
		for id, v := range msg.ratings {
			m.userRatings[id] = v
		}
		m.refresh()
		return m, nil

	case storySubmittedMsg:
		return m.storySubmitted(msg)

	case imageReadMsg:
		if !m.showDialog || !m.dialog.recordImage(msg) {
			return m, nil
		}
		return m.afterMediaLoaded()

	case videoReadMsg:
		if !m.showDialog || !m.dialog.recordVideo(msg) {
			return m, nil
		}
		return m.afterMediaLoaded()

	case clipboardMsg:
		if msg.err != nil {
			m.logger.Warn("Clipboard copy failed", "error", msg.err)
			return m, m.notify(noticeError, "Could not copy to clipboard: "+msg.err.Error())
		}
		return m, m.notify(noticeSuccess, fmt.Sprintf("Copied %s to the clipboard.", msg.title))

	case noticeExpiredMsg:
		if msg.seq == m.notice.seq {
			m.notice = notice{seq: m.notice.seq}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateBrowser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel, hasSel := m.Selected()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.showQuitModal = true
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.refresh()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.locations)-1 {
			m.cursor++
			m.refresh()
		}

	case key.Matches(msg, m.keys.Toggle):
		if hasSel {
			m.toggle(sel.ID)
			m.refresh()
		}

	case key.Matches(msg, m.keys.Collapse):
		m.expandedID = 0
		m.refresh()

	case key.Matches(msg, m.keys.Tab):
		if m.expandedID != 0 {
			m.tab = (m.tab + 1) % 2
			m.refresh()
		}

	case key.Matches(msg, m.keys.Difficulty):
		m.filter.Difficulty = catalog.NextDifficulty(m.filter.Difficulty)
		m.refresh()
		return m, m.loadLocations(m.filter)

	case key.Matches(msg, m.keys.Type):
		m.filter.Type = catalog.NextLocationType(m.filter.Type)
		m.refresh()
		return m, m.loadLocations(m.filter)

	case key.Matches(msg, m.keys.ResetFilter):
		m.filter = showAll
		m.refresh()
		return m, m.loadLocations(m.filter)

	case key.Matches(msg, m.keys.Rate):
		if !hasSel || m.userRatings[sel.ID] > 0 || m.ratePending[sel.ID] {
			return m, nil
		}
		value := int(msg.String()[0] - '0')
		m.ratePending[sel.ID] = true
		m.refresh()
		return m, m.rate(sel.ID, value)

	case key.Matches(msg, m.keys.Story):
		if hasSel {
			m.dialog = newStoryDialog(sel, dialogWidth)
			m.showDialog = true
		}

	case key.Matches(msg, m.keys.Copy):
		if hasSel {
			return m, m.copyLocation(sel)
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.refresh()
	}

	return m, nil
}

// toggle expands id, collapsing any other card, or collapses id when it is
// already expanded.
func (m *Model) toggle(id int) {
	if m.expandedID == id {
		m.expandedID = 0
		return
	}
	m.expandedID = id
	m.tab = tabHistory
}

func (m Model) updateQuitModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEnter:
		return m, tea.Quit
	case tea.KeyEsc:
		m.showQuitModal = false
		return m, nil
	}
	switch msg.String() {
	case "y", "Y", "q":
		return m, tea.Quit
	case "n", "N":
		m.showQuitModal = false
	}
	return m, nil
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.showQuitModal = true
		return m, nil
	}

	switch {
	case key.Matches(msg, m.dialogKeys.Cancel):
		m.closeDialog()
		return m, nil

	case key.Matches(msg, m.dialogKeys.Submit):
		return m.publishStory()

	case key.Matches(msg, m.dialogKeys.Next):
		m.dialog.setFocus(m.dialog.focus + 1)
		return m, nil

	case key.Matches(msg, m.dialogKeys.Prev):
		m.dialog.setFocus(m.dialog.focus - 1)
		return m, nil

	case key.Matches(msg, m.dialogKeys.Attach) && m.dialog.focus != fieldText:
		switch m.dialog.focus {
		case fieldAuthor:
			m.dialog.setFocus(fieldText)
			return m, nil
		case fieldImages:
			cmd, err := m.dialog.loadImages(m.opts.MaxMediaBytes)
			if err != nil {
				m.dialog.err = err.Error()
			}
			return m, cmd
		case fieldVideo:
			return m, m.dialog.loadVideo(m.opts.MaxMediaBytes)
		}
	}

	if m.dialog.submitting {
		return m, nil
	}
	return m, m.dialog.updateFocused(msg)
}

func (m *Model) closeDialog() {
	m.showDialog = false
	m.dialog = storyDialog{}
}

// publishStory reads any attachments whose paths changed since the last
// load, then submits. When reads are still in flight the submit runs once
// they complete.
func (m Model) publishStory() (tea.Model, tea.Cmd) {
	d := &m.dialog
	if d.submitting {
		return m, nil
	}
	d.err = ""

	var cmds []tea.Cmd
	if d.imagesStale() {
		cmd, err := d.loadImages(m.opts.MaxMediaBytes)
		if err != nil {
			d.err = err.Error()
			return m, m.notify(noticeError, storyErrorText(err))
		}
		cmds = append(cmds, cmd)
	}
	if d.videoStale() {
		cmds = append(cmds, d.loadVideo(m.opts.MaxMediaBytes))
	}

	if d.loading() {
		d.submitAfterLoad = true
		return m, tea.Batch(cmds...)
	}

	d.submitting = true
	d.submitAfterLoad = false
	return m, m.submitStoryCmd(d.locationID, d.draft())
}

func (m Model) afterMediaLoaded() (tea.Model, tea.Cmd) {
	if m.dialog.err != "" {
		return m, m.notify(noticeError, m.dialog.err)
	}
	if m.dialog.submitAfterLoad && !m.dialog.loading() {
		return m.publishStory()
	}
	return m, nil
}

func (m Model) storySubmitted(msg storySubmittedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if m.showDialog && m.dialog.locationID == msg.locationID {
			m.dialog.submitting = false
			m.dialog.err = storyErrorText(msg.err)
		}
		return m, m.notify(noticeError, storyErrorText(msg.err))
	}

	m.closeDialog()
	m.replaceLocation(*msg.location)
	if m.indexOf(msg.locationID) >= 0 {
		m.expandedID = msg.locationID
		m.tab = tabStories
	}
	m.refresh()
	return m, m.notify(noticeSuccess, fmt.Sprintf("Your story about %s was published.", msg.location.Title))
}

func storyErrorText(err error) string {
	switch {
	case errors.Is(err, catalog.ErrMissingFields):
		return "Please fill in your name and your story."
	case errors.Is(err, catalog.ErrTooManyImages):
		return fmt.Sprintf("You can attach at most %d photos.", catalog.MaxStoryImages)
	case errors.Is(err, media.ErrTooLarge), errors.Is(err, catalog.ErrUnsupportedMedia):
		return err.Error()
	default:
		return "Could not publish story: " + err.Error()
	}
}

func (m *Model) notify(kind noticeKind, text string) tea.Cmd {
	m.notice = notice{text: text, kind: kind, seq: m.notice.seq + 1}
	if m.opts.NoticeTTL <= 0 {
		return nil
	}
	return expireNotice(m.notice.seq, m.opts.NoticeTTL)
}

// setLocations swaps in a freshly filtered list. The cursor follows the
// selected location when it is still visible and the expanded card is
// collapsed when the filter hides it.
func (m *Model) setLocations(locs []catalog.Location) {
	prev, hadSel := m.Selected()
	m.locations = locs

	m.cursor = 0
	if hadSel {
		if i := m.indexOf(prev.ID); i >= 0 {
			m.cursor = i
		}
	}
	if m.expandedID != 0 && m.indexOf(m.expandedID) < 0 {
		m.expandedID = 0
	}
}

func (m *Model) replaceLocation(loc catalog.Location) {
	if i := m.indexOf(loc.ID); i >= 0 {
		m.locations[i] = loc
	}
}

func (m Model) indexOf(id int) int {
	for i, l := range m.locations {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (m Model) detailWidth() int {
	return max(m.width-8, 20)
}

func newMarkdownRenderer(style string, width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}
