package console

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
)

var (
	bloodRed = lipgloss.Color("160")

	headerStyle = lipgloss.NewStyle().
			Foreground(bloodRed).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	filterLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Width(12)

	filterOptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Padding(0, 1)

	filterSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")).
				Background(bloodRed).
				Bold(true).
				Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	selectedCardStyle = cardStyle.
				BorderForeground(bloodRed)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	yearStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("238")).
			Bold(true).
			Padding(0, 2)

	authorStyle = lipgloss.NewStyle().
			Foreground(bloodRed).
			Bold(true)

	storyStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("238")).
			PaddingLeft(1)

	starStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	dimStarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")) // green

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(bloodRed).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(bloodRed).
			Bold(true).
			Align(lipgloss.Center)

	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	focusedFieldLabelStyle = lipgloss.NewStyle().
				Foreground(bloodRed).
				Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

var difficultyColors = map[catalog.Difficulty]lipgloss.Color{
	catalog.DifficultyEasy:    lipgloss.Color("28"),
	catalog.DifficultyMedium:  lipgloss.Color("136"),
	catalog.DifficultyHard:    lipgloss.Color("166"),
	catalog.DifficultyExtreme: bloodRed,
}

func difficultyBadge(d catalog.Difficulty) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(difficultyColors[d]).
		Padding(0, 1).
		Render(d.Label())
}

var dangerColors = map[catalog.DangerLevel]lipgloss.Color{
	catalog.DangerLow:      lipgloss.Color("40"),
	catalog.DangerModerate: lipgloss.Color("220"),
	catalog.DangerHigh:     lipgloss.Color("208"),
	catalog.DangerCritical: bloodRed,
}

func dangerStyle(danger int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(dangerColors[catalog.DangerLevelOf(danger)])
}
