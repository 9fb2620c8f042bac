package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/games/t2048"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

// Recorder persists finished games. *storage.Store satisfies it.
type Recorder interface {
	SaveResult(storage.Result) (int64, error)
}

// Options configures a game model.
type Options struct {
	Player   string
	Seed     int64 // 0 = random
	Theme    config.ThemeConfig
	Recorder Recorder    // optional
	Scores   ScoreLister // optional
	Logger   *log.Logger // optional
	Now      func() time.Time
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	wonStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	overStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is the Bubble Tea model for one player's 2048 game.
type Model struct {
	state      t2048.GameState
	rnd        t2048.RandomSource
	sessionID  string
	player     string
	moves      int
	recorded   bool
	best       int
	board      *Board
	keys       KeyMap
	help       help.Model
	scoreboard Scoreboard
	showScores bool
	recorder   Recorder
	scores     ScoreLister
	logger     *log.Logger
	now        func() time.Time
	width      int
	height     int
	quitting   bool
}

// NewModel creates a model with a fresh game.
func NewModel(opts Options) Model {
	rnd := t2048.DefaultSource()
	if opts.Seed != 0 {
		rnd = t2048.SeededSource(opts.Seed)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := Model{
		state:      t2048.NewGame(rnd),
		rnd:        rnd,
		sessionID:  uuid.NewString(),
		player:     opts.Player,
		board:      NewBoard(opts.Theme),
		keys:       DefaultKeyMap(),
		help:       help.New(),
		scoreboard: NewScoreboard(),
		recorder:   opts.Recorder,
		scores:     opts.Scores,
		logger:     opts.Logger,
		now:        opts.Now,
	}

	if m.scores != nil {
		if top, err := m.scores.TopScores(1); err == nil && len(top) > 0 {
			m.best = top[0].Score
		}
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showScores {
			return m.handleScoreboardKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input on the game screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.finish()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Restart):
		m.finish()
		m.state = t2048.NewGame(m.rnd)
		m.sessionID = uuid.NewString()
		m.moves = 0
		m.recorded = false
		return m, nil

	case key.Matches(msg, m.keys.Scores):
		m.scoreboard.Load(m.scores)
		m.showScores = true
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if dir, ok := m.keys.Direction(msg); ok {
		next := t2048.Move(m.state, dir, m.rnd)
		if next != m.state {
			m.state = next
			m.moves++
			m.best = max(m.best, m.state.Score)
			if m.state.Over {
				m.finish()
			}
		}
	}
	return m, nil
}

// handleScoreboardKey processes input while the scoreboard is shown.
func (m Model) handleScoreboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "Q":
		m.finish()
		m.quitting = true
		return m, tea.Quit
	case "esc", "t":
		m.showScores = false
		return m, nil
	}

	var cmd tea.Cmd
	m.scoreboard, cmd = m.scoreboard.Update(msg)
	return m, cmd
}

// finish records the current game once if it ended or has a score.
func (m *Model) finish() {
	if m.recorded || (!m.state.Over && m.state.Score == 0) {
		return
	}
	m.recorded = true
	if m.recorder == nil {
		return
	}

	result := storage.Result{
		SessionID: m.sessionID,
		Player:    m.player,
		Score:     m.state.Score,
		MaxTile:   t2048.MaxTile(m.state.Grid),
		Won:       m.state.Won,
		Moves:     m.moves,
		CreatedAt: m.now(),
	}
	if _, err := m.recorder.SaveResult(result); err != nil {
		m.logger.Error("failed to record result", "player", m.player, "err", err)
	}
}

// State returns the current game.
func (m Model) State() t2048.GameState {
	return m.state
}

// View renders the game screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.board.Width()
	var b strings.Builder

	title := titleStyle.Render("2048")
	score := fmt.Sprintf("Score: %d  Best: %d", m.state.Score, max(m.best, m.state.Score))
	gap := max(1, width-lipgloss.Width(title)-lipgloss.Width(score))
	b.WriteString(title + strings.Repeat(" ", gap) + score)
	b.WriteString("\n\n")

	var status []string
	if m.state.Won {
		status = append(status, wonStyle.Render("You win! Continue playing…"))
	}
	if m.state.Over {
		status = append(status, overStyle.Render("Game over - press r to restart"))
	}
	b.WriteString(strings.Join(status, "  "))
	b.WriteString("\n\n")

	if m.showScores {
		b.WriteString(m.scoreboard.View())
	} else {
		b.WriteString(m.board.Render(m.state.Grid))
	}
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render(m.help.View(m.keys)))

	view := b.String()
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, view)
	}
	return view
}

// Run starts a local game in the alternate screen and blocks until the player quits.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
