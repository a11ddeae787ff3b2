package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

const (
	emptyText       = "No locations found. Try changing the filters."
	descriptionRows = 2
)

// refresh re-renders the card list into the viewport and scrolls so the
// selected card stays visible.
func (m *Model) refresh() {
	sel, hasSel := m.Selected()
	m.keys.Rate.SetEnabled(hasSel && m.userRatings[sel.ID] == 0 && !m.ratePending[sel.ID])
	m.keys.Tab.SetEnabled(m.expandedID != 0)

	if !m.ready {
		return
	}

	if m.loaded && len(m.locations) == 0 {
		m.list.SetContent(mutedStyle.Render("\n  " + emptyText))
		m.list.GotoTop()
		return
	}

	var (
		b        strings.Builder
		selStart int
		selEnd   int
		line     int
	)
	for i, loc := range m.locations {
		card := m.renderCard(loc, i == m.cursor, loc.ID == m.expandedID)
		height := lipgloss.Height(card)
		if i == m.cursor {
			selStart, selEnd = line, line+height
		}
		b.WriteString(card)
		b.WriteString("\n")
		line += height
	}
	m.list.SetContent(b.String())

	switch {
	case selStart < m.list.YOffset:
		m.list.SetYOffset(selStart)
	case selEnd > m.list.YOffset+m.list.Height:
		m.list.SetYOffset(min(selStart, selEnd-m.list.Height))
	}
}

func (m Model) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Loading catalog..."
	}
	if m.showDialog {
		return placeModal(m.width, m.height, m.dialog.view(min(dialogWidth, m.width-4), m.help.View(m.dialogKeys)))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderFilterBar(),
		m.list.View(),
		m.renderNotice(),
		footerStyle.Render(m.help.View(m.keys)),
	)
}

func (m Model) renderHeader() string {
	count := fmt.Sprintf("%d locations", len(m.locations))
	if len(m.locations) == 1 {
		count = "1 location"
	}
	return headerStyle.Render("ABANDONED SITES") + "  " + subtitleStyle.Render("urban exploration catalog · "+count)
}

func (m Model) renderFilterBar() string {
	diffs := make([]string, 0, len(catalog.Difficulties)+1)
	for _, d := range append([]catalog.Difficulty{catalog.DifficultyAll}, catalog.Difficulties...) {
		diffs = append(diffs, filterOption(d.Label(), d == m.filter.Difficulty))
	}
	types := make([]string, 0, len(catalog.LocationTypes)+1)
	for _, t := range append([]catalog.LocationType{catalog.TypeAll}, catalog.LocationTypes...) {
		types = append(types, filterOption(t.Label(), t == m.filter.Type))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		filterLabelStyle.Render("Difficulty")+strings.Join(diffs, ""),
		filterLabelStyle.Render("Type")+strings.Join(types, ""),
		"",
	)
}

func filterOption(label string, selected bool) string {
	if selected {
		return filterSelectedStyle.Render(label)
	}
	return filterOptionStyle.Render(label)
}

func (m Model) renderCard(loc catalog.Location, selected, expanded bool) string {
	width := m.detailWidth()

	var b strings.Builder
	b.WriteString(titleStyle.Render(loc.Title))
	if loc.Year != "" {
		b.WriteString("  " + yearStyle.Render(loc.Year))
	}
	b.WriteString("\n")

	b.WriteString(difficultyBadge(loc.Difficulty))
	b.WriteString(mutedStyle.Render("  " + loc.Type.Label() + " · "))
	b.WriteString(dangerStyle(loc.Danger).Render(fmt.Sprintf("Danger %d/%d", loc.Danger, catalog.MaxDanger)))
	b.WriteString(mutedStyle.Render(" · "))
	b.WriteString(renderRating(loc))
	b.WriteString("\n")

	if expanded {
		b.WriteString(wordwrap.String(loc.Description, width))
		b.WriteString("\n\n")
		b.WriteString(m.renderDetail(loc, width))
	} else {
		b.WriteString(clampLines(loc.Description, width, descriptionRows))
	}

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	return style.Width(width + 2).Render(b.String())
}

func renderRating(loc catalog.Location) string {
	if loc.RatingsCount == 0 {
		return mutedStyle.Render("not rated yet")
	}
	return starStyle.Render("★") + fmt.Sprintf(" %.1f", loc.Rating) + mutedStyle.Render(fmt.Sprintf(" (%d)", loc.RatingsCount))
}

func renderStars(value int) string {
	var b strings.Builder
	for i := 1; i <= catalog.MaxRating; i++ {
		if i <= value {
			b.WriteString(starStyle.Render("★"))
		} else {
			b.WriteString(dimStarStyle.Render("☆"))
		}
	}
	return b.String()
}

func (m Model) renderDetail(loc catalog.Location, width int) string {
	history := tabStyle.Render("History")
	stories := tabStyle.Render(fmt.Sprintf("Stories (%d)", len(loc.Stories)))
	if m.tab == tabHistory {
		history = activeTabStyle.Render("History")
	} else {
		stories = activeTabStyle.Render(fmt.Sprintf("Stories (%d)", len(loc.Stories)))
	}

	var b strings.Builder
	b.WriteString(history + stories + "\n\n")
	if m.tab == tabHistory {
		b.WriteString(m.renderHistory(loc.History, width))
	} else {
		b.WriteString(renderStories(loc.Stories, width))
	}
	b.WriteString("\n\n")

	if v := m.userRatings[loc.ID]; v > 0 {
		b.WriteString(sectionStyle.Render("Your rating ") + renderStars(v))
	} else {
		b.WriteString(sectionStyle.Render("Rate it ") + renderStars(0) + mutedStyle.Render("  press 1-5"))
	}
	return b.String()
}

func (m Model) renderHistory(history string, width int) string {
	if m.markdown != nil {
		if out, err := m.markdown.Render(history); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return wordwrap.String(strings.ReplaceAll(history, "**", ""), width)
}

func renderStories(stories []catalog.Story, width int) string {
	if len(stories) == 0 {
		return mutedStyle.Render("No stories yet. Press s to share yours.")
	}

	parts := make([]string, len(stories))
	for i, s := range stories {
		var b strings.Builder
		b.WriteString(authorStyle.Render(s.Author) + mutedStyle.Render(" · "+s.Date) + "\n")
		b.WriteString(wordwrap.String(s.Text, width-3))
		if n := len(s.Images); n > 0 {
			b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("[%d photo%s]", n, plural(n))))
		}
		if s.Video != nil {
			b.WriteString("\n" + mutedStyle.Render("[video: "+s.Video.Name+"]"))
		}
		parts[i] = storyStyle.Render(b.String())
	}
	return strings.Join(parts, "\n\n")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// clampLines wraps s to width and keeps at most n lines, marking the cut
// with an ellipsis.
func clampLines(s string, width, n int) string {
	lines := strings.Split(wordwrap.String(s, width), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	lines = lines[:n]
	last := truncate.StringWithTail(strings.TrimRight(lines[n-1], " "), uint(width-1), "…")
	if !strings.HasSuffix(last, "…") {
		last += "…"
	}
	lines[n-1] = last
	return strings.Join(lines, "\n")
}

func (m Model) renderNotice() string {
	switch {
	case m.notice.text == "":
		return ""
	case m.notice.kind == noticeError:
		return errorStyle.Render(m.notice.text)
	case m.notice.kind == noticeSuccess:
		return successStyle.Render(m.notice.text)
	default:
		return infoStyle.Render(m.notice.text)
	}
}

func (m Model) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the catalog?"))
	content.WriteString("\n\n")
	content.WriteString("Your ratings and stories last only for this session.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to keep exploring"))

	return placeModal(m.width, m.height, modalStyle.Width(50).Render(content.String()))
}
