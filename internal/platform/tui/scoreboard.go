package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-2048/internal/storage"
)

// Scoreboard layout constants
const (
	maxScores       = 100 // Max results to load
	scoreboardRows  = 12  // Visible table rows
	playerColWidth  = 14
	scoreColWidth   = 8
	maxTileColWidth = 8
	dateColWidth    = 12
)

// ScoreLister lists stored results. *storage.Store satisfies it.
type ScoreLister interface {
	TopScores(limit int) ([]storage.Result, error)
}

// Scoreboard is the high-score overlay shown over the game screen.
type Scoreboard struct {
	table   table.Model
	results []storage.Result
	err     error
}

// NewScoreboard creates an empty scoreboard.
func NewScoreboard() Scoreboard {
	columns := []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Player", Width: playerColWidth},
		{Title: "Score", Width: scoreColWidth},
		{Title: "Tile", Width: maxTileColWidth},
		{Title: "Date", Width: dateColWidth},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(scoreboardRows),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return Scoreboard{table: t}
}

// Load refreshes the results from lister. A nil lister leaves the board empty.
func (s *Scoreboard) Load(lister ScoreLister) {
	s.results, s.err = nil, nil
	if lister != nil {
		s.results, s.err = lister.TopScores(maxScores)
	}

	rows := make([]table.Row, len(s.results))
	for i, r := range s.results {
		player := r.Player
		if len(player) > playerColWidth {
			player = player[:playerColWidth-1] + "."
		}
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			player,
			fmt.Sprintf("%d", r.Score),
			fmt.Sprintf("%d", r.MaxTile),
			r.CreatedAt.Local().Format("Jan 02 15:04"),
		}
	}
	s.table.SetRows(rows)
	s.table.GotoTop()
}

// Len returns the number of loaded results.
func (s Scoreboard) Len() int {
	return len(s.results)
}

// Update passes scrolling keys to the table.
func (s Scoreboard) Update(msg tea.Msg) (Scoreboard, tea.Cmd) {
	var cmd tea.Cmd
	s.table, cmd = s.table.Update(msg)
	return s, cmd
}

// View renders the table or an explanatory message.
func (s Scoreboard) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(1, 2)

	var body string
	switch {
	case s.err != nil:
		body = emptyStyle.Render("Could not load scores:\n" + s.err.Error())
	case len(s.results) == 0:
		body = emptyStyle.Render("No scores recorded yet.\nFinish a game to set a high score!")
	default:
		body = s.table.View()
	}

	return titleStyle.Render("HIGH SCORES") + "\n" + boxStyle.Render(body)
}
