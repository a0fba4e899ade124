// Package tui provides the Bubble Tea card pairs interface.
package tui

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/verte-zerg/tuipairs/internal/deck"
	"github.com/verte-zerg/tuipairs/internal/game"
	"github.com/verte-zerg/tuipairs/internal/ledger"
	"github.com/verte-zerg/tuipairs/internal/logging"
	"github.com/verte-zerg/tuipairs/internal/model"
	"github.com/verte-zerg/tuipairs/internal/session"
	"github.com/verte-zerg/tuipairs/internal/stats"
	"github.com/verte-zerg/tuipairs/internal/symbols"
)

type screen int

const (
	screenMenu screen = iota
	screenGame
	screenScores
	screenResult
)

const nameLimit = 24

// tickMsg drives the one second clock of the session started as generation.
type tickMsg struct {
	generation int
}

// taskMsg fires a deferred engine task. Messages from an older generation
// belong to a discarded board and are dropped.
type taskMsg struct {
	generation int
	id         game.TaskID
}

// Options configures a Model.
type Options struct {
	Config  model.Config
	Symbols []string
	Scores  *ledger.Ledger
	History session.HistorySink
	Logger  *log.Logger
	Bell    *Bell
	// Seed fixes the deck order when non-zero.
	Seed int64
}

// Model implements the Bubble Tea game UI and receives session events.
type Model struct {
	opts    Options
	keys    KeyMap
	help    help.Model
	name    textinput.Model
	gen     *deck.Generator
	screen  screen
	gridIdx int
	sound   bool

	width  int
	height int

	sess       *session.Session
	queue      *game.Queue
	generation int
	gridSize   int
	cards      []game.CardView
	cursor     int
	status     string
	timer      string
	warning    bool
	won        bool
	summary    string
	err        error
}

// NewModel constructs a game UI model showing the start menu.
func NewModel(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if len(opts.Symbols) == 0 {
		opts.Symbols = symbols.Default
	}
	var rnd *rand.Rand
	if opts.Seed != 0 {
		rnd = rand.New(rand.NewSource(opts.Seed))
	}

	name := textinput.New()
	name.Placeholder = session.DefaultPlayer
	name.CharLimit = nameLimit
	name.Prompt = ""
	name.SetValue(opts.Config.PlayerName)
	name.Focus()

	m := &Model{
		opts:  opts,
		keys:  Keys,
		help:  help.New(),
		name:  name,
		gen:   deck.NewWithAlphabet(rnd, opts.Symbols),
		sound: opts.Config.Sound,
	}
	for i, size := range deck.SupportedSizes {
		if size == opts.Config.GridSize {
			m.gridIdx = i
		}
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		if msg.generation != m.generation || m.sess == nil || m.sess.Ended() {
			return m, nil
		}
		m.sess.Tick()
		if m.sess.Ended() {
			return m, nil
		}
		return m, tickCmd(m.generation)
	case taskMsg:
		if msg.generation != m.generation || m.queue == nil {
			return m, nil
		}
		m.queue.Fire(msg.id)
		return m, m.drainTasks()
	case tea.KeyMsg:
		switch m.screen {
		case screenMenu:
			return m.updateMenu(msg)
		case screenGame:
			return m.updateGame(msg)
		case screenScores:
			return m.updateScores(msg)
		case screenResult:
			return m.updateResult(msg)
		}
	}
	if m.screen == screenMenu {
		var cmd tea.Cmd
		m.name, cmd = m.name.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, menuKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, menuKeys.Up):
		if m.gridIdx > 0 {
			m.gridIdx--
		}
		return m, nil
	case key.Matches(msg, menuKeys.Down):
		if m.gridIdx < len(deck.SupportedSizes)-1 {
			m.gridIdx++
		}
		return m, nil
	case key.Matches(msg, menuKeys.Start):
		return m, m.startGame()
	case key.Matches(msg, menuKeys.Scores):
		m.screen = screenScores
		return m, nil
	}
	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

func (m *Model) updateGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.closeSession()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.closeSession()
		m.screen = screenMenu
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Sound):
		m.sound = !m.sound
	case key.Matches(msg, m.keys.Up):
		m.cursor = moveCursor(m.cursor, m.gridSize, -1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = moveCursor(m.cursor, m.gridSize, 1, 0)
	case key.Matches(msg, m.keys.Left):
		m.cursor = moveCursor(m.cursor, m.gridSize, 0, -1)
	case key.Matches(msg, m.keys.Right):
		m.cursor = moveCursor(m.cursor, m.gridSize, 0, 1)
	case key.Matches(msg, m.keys.Select):
		if m.sess == nil {
			return m, nil
		}
		m.sess.OnCardActivated(m.cursor)
		return m, m.drainTasks()
	}
	return m, nil
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.closeSession()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Select):
		return m, m.startGame()
	case key.Matches(msg, m.keys.Back):
		m.closeSession()
		m.screen = screenMenu
	case key.Matches(msg, menuKeys.Scores):
		m.closeSession()
		m.screen = screenScores
	case key.Matches(msg, m.keys.Sound):
		m.sound = !m.sound
	}
	return m, nil
}

func (m *Model) updateScores(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back), key.Matches(msg, menuKeys.Scores), key.Matches(msg, menuKeys.Start):
		m.screen = screenMenu
	}
	return m, nil
}

// startGame discards any running session and deals a new board.
func (m *Model) startGame() tea.Cmd {
	m.closeSession()
	m.generation++
	m.queue = game.NewQueue()
	m.gridSize = deck.SupportedSizes[m.gridIdx]
	m.cards = make([]game.CardView, m.gridSize*m.gridSize)
	m.cursor = 0
	m.won = false
	m.summary = ""
	m.err = nil

	opts := session.Options{
		Player:    m.name.Value(),
		GridSize:  m.gridSize,
		TimeLimit: m.opts.Config.TimeLimit,
		Generator: m.gen,
		Scheduler: m.queue,
		History:   m.opts.History,
		Logger:    m.opts.Logger,
	}
	if m.opts.Scores != nil {
		opts.Scores = m.opts.Scores
	}
	sess, err := session.New(opts, m)
	if err != nil {
		m.opts.Logger.Error("failed to start session", "err", err)
		m.err = err
		m.cards = nil
		m.screen = screenMenu
		return nil
	}
	m.sess = sess
	m.screen = screenGame
	return tea.Batch(tickCmd(m.generation), m.drainTasks())
}

func (m *Model) closeSession() {
	if m.sess == nil {
		return
	}
	m.sess.Close()
	m.sess = nil
}

// drainTasks turns newly scheduled engine tasks into timed messages.
func (m *Model) drainTasks() tea.Cmd {
	if m.queue == nil {
		return nil
	}
	tasks := m.queue.Drain()
	if len(tasks) == 0 {
		return nil
	}
	generation := m.generation
	cmds := make([]tea.Cmd, 0, len(tasks))
	for _, task := range tasks {
		id := task.ID
		cmds = append(cmds, tea.Tick(task.Delay, func(time.Time) tea.Msg {
			return taskMsg{generation: generation, id: id}
		}))
	}
	return tea.Batch(cmds...)
}

func tickCmd(generation int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{generation: generation}
	})
}

// RenderCard implements session.Presenter.
func (m *Model) RenderCard(index int, card game.CardView) {
	if index < 0 || index >= len(m.cards) {
		return
	}
	m.cards[index] = card
}

// RenderStatus implements session.Presenter.
func (m *Model) RenderStatus(text string) {
	m.status = text
}

// RenderTimer implements session.Presenter.
func (m *Model) RenderTimer(clock string, warning bool) {
	m.timer = clock
	m.warning = warning
}

// PlaySound implements session.Presenter.
func (m *Model) PlaySound(kind game.SoundKind) {
	if !m.sound {
		return
	}
	m.opts.Bell.Play(kind)
}

// SessionEnd implements session.Presenter.
func (m *Model) SessionEnd(won bool, summary string) {
	m.won = won
	m.summary = summary
	m.screen = screenResult
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.screen {
	case screenGame:
		content = m.renderGame()
	case screenScores:
		content = m.renderScores()
	case screenResult:
		content = m.renderResult()
	default:
		content = m.renderMenu()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tuipairs"))
	b.WriteString("\n\n")
	b.WriteString("Name: ")
	b.WriteString(m.name.View())
	b.WriteString("\n\nDifficulty:\n")
	for i, size := range deck.SupportedSizes {
		cursor := "  "
		line := fmt.Sprintf("%s (%dx%d)", model.DifficultyLabel(size), size, size)
		if i == m.gridIdx {
			cursor = "> "
			line = titleStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}
	limit := m.opts.Config.TimeLimit
	if limit <= 0 {
		limit = session.DefaultTimeLimit
	}
	b.WriteString(fmt.Sprintf("\nTime limit: %s\n", game.FormatSeconds(limit)))
	if m.err != nil {
		b.WriteString("\n" + lostStyle.Render(m.err.Error()) + "\n")
	}
	box := boxStyle.Render(b.String())
	footer := m.help.ShortHelpView([]key.Binding{menuKeys.Up, menuKeys.Start, menuKeys.Scores, menuKeys.Quit})
	return lipgloss.JoinVertical(lipgloss.Center, box, footer)
}

func (m *Model) renderGame() string {
	return lipgloss.JoinVertical(lipgloss.Center,
		m.renderHeader(),
		"",
		renderBoard(m.cards, m.gridSize, m.cursor),
		"",
		statusStyle.Render(m.status),
		m.renderFooter(),
	)
}

func (m *Model) renderHeader() string {
	timer := timerStyle
	if m.warning {
		timer = warningStyle
	}
	return titleStyle.Render("tuipairs") + "  " + timer.Render("Time: "+m.timer)
}

func (m *Model) renderFooter() string {
	sound := "off"
	if m.sound {
		sound = "on"
	}
	return footerStyle.Render("Sound: "+sound) + "\n" + m.help.View(m.keys)
}

func (m *Model) renderResult() string {
	style := lostStyle
	if m.won {
		style = wonStyle
	}
	hint := footerStyle.Render("enter play again • esc menu • tab high scores • q quit")
	return lipgloss.JoinVertical(lipgloss.Center,
		m.renderHeader(),
		"",
		renderBoard(m.cards, m.gridSize, -1),
		"",
		boxStyle.Render(style.Render(m.summary)),
		hint,
	)
}

func (m *Model) renderScores() string {
	var entries []ledger.Entry
	if m.opts.Scores != nil {
		entries = m.opts.Scores.Top()
	}
	var b strings.Builder
	if err := stats.RenderScores(&b, entries); err != nil {
		m.opts.Logger.Warn("failed to render scores", "err", err)
	}
	body := titleStyle.Render("High Scores") + "\n\n" + strings.TrimRight(b.String(), "\n")
	return lipgloss.JoinVertical(lipgloss.Center,
		boxStyle.Render(body),
		footerStyle.Render("esc back • q quit"),
	)
}
