// Package tui provides the Bubble Tea reaction-time interface.
package tui

import (
	"fmt"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/verte-zerg/tuireact/internal/model"
	"github.com/verte-zerg/tuireact/internal/session"
	"github.com/verte-zerg/tuireact/internal/stats"
)

type state int

const (
	stateIntro state = iota
	stateStarting
	stateReady
	stateAwaiting
	stateDone
)

type startMsg struct{}

// showMsg reveals the letter of trial index.
type showMsg struct {
	index int
}

// Model implements the Bubble Tea reaction UI.
type Model struct {
	source session.Source
	now    func() time.Time
	logger *zap.Logger

	width  int
	height int

	letters   []rune
	index     int
	state     state
	startedAt time.Time
	wrong     int
	feedback  string
	results   []model.Trial

	interrupted bool
	table       table.Model
}

// NewModel constructs a reaction UI that draws letters from source.
func NewModel(source session.Source, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	letters := source.Letters()
	return &Model{
		source:  source,
		now:     time.Now,
		logger:  logger,
		letters: letters,
		results: make([]model.Trial, 0, len(letters)),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Results returns the completed trials in order.
func (m *Model) Results() []model.Trial {
	return m.results
}

// Interrupted reports whether the user quit with Ctrl-C.
func (m *Model) Interrupted() bool {
	return m.interrupted
}

// Finished reports whether every letter has been answered.
func (m *Model) Finished() bool {
	return m.state == stateDone
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.state == stateDone {
			m.table = buildResultsTable(m.results, m.tableHeight())
		}
		return m, nil
	case startMsg:
		return m, m.nextTrial()
	case showMsg:
		if m.state != stateReady || msg.index != m.index {
			return m, nil
		}
		m.state = stateAwaiting
		m.startedAt = m.now()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			if m.state == stateDone {
				return m, tea.Quit
			}
			m.interrupted = true
			m.logger.Debug("interrupted", zap.Int("completed", len(m.results)))
			return m, tea.Quit
		}
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateIntro:
		if msg.Type != tea.KeyEnter {
			return m, nil
		}
		m.state = stateStarting
		m.feedback = "Starting..."
		return m, tea.Tick(session.StartDelay, func(time.Time) tea.Msg { return startMsg{} })
	case stateAwaiting:
		return m, m.answer(keyRune(msg))
	case stateDone:
		switch msg.String() {
		case "q", "esc", "enter":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	default:
		// Keys pressed before the letter is shown are dropped.
		return m, nil
	}
}

func (m *Model) nextTrial() tea.Cmd {
	if m.index >= len(m.letters) {
		m.state = stateDone
		m.table = buildResultsTable(m.results, m.tableHeight())
		m.logger.Debug("session finished", zap.Float64("mean_ms", stats.MeanMs(m.results)))
		return nil
	}
	m.state = stateReady
	m.wrong = 0
	index := m.index
	return tea.Tick(m.source.ReadyDelay(), func(time.Time) tea.Msg { return showMsg{index: index} })
}

func (m *Model) answer(key rune) tea.Cmd {
	letter := unicode.ToLower(m.letters[m.index])
	if unicode.ToLower(key) != letter {
		m.wrong++
		m.feedback = "Wrong key! Try again."
		return nil
	}
	trial := model.Trial{Letter: letter, Elapsed: m.now().Sub(m.startedAt)}
	m.results = append(m.results, trial)
	m.feedback = fmt.Sprintf("Good! %s ms", stats.FormatMs(trial.Elapsed))
	m.logger.Debug("trial complete",
		zap.String("letter", string(letter)),
		zap.Duration("elapsed", trial.Elapsed),
		zap.Int("wrong", m.wrong))
	m.index++
	return m.nextTrial()
}

func (m *Model) tableHeight() int {
	if m.height <= 0 {
		return len(m.results) + 1
	}
	return maxInt(1, m.height-8)
}

// keyRune maps a key to the rune it types. Keys without one never match.
func keyRune(msg tea.KeyMsg) rune {
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) > 0 {
			return msg.Runes[0]
		}
	case tea.KeySpace:
		return ' '
	}
	return unicode.ReplacementChar
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
