package tui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuireact/internal/model"
	"github.com/verte-zerg/tuireact/internal/stats"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#73D13D"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	letterStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(1, 4).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
)

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderBody()
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderBody() string {
	switch m.state {
	case stateIntro:
		return lipgloss.JoinVertical(lipgloss.Center,
			titleStyle.Render("Reaction Time Calibration"),
			"",
			textStyle.Render("When a letter appears, press it as fast as you can!"),
			"",
			pendingStyle.Render("Press Enter to begin..."),
		)
	case stateStarting:
		return pendingStyle.Render(m.feedback)
	case stateReady:
		lines := []string{pendingStyle.Render("Get ready for next letter...")}
		if m.feedback != "" {
			lines = append(lines, "", m.renderFeedback())
		}
		return lipgloss.JoinVertical(lipgloss.Center, lines...)
	case stateAwaiting:
		letter := letterStyle.Render(string(unicode.ToUpper(m.letters[m.index])))
		if m.wrong == 0 {
			return letter
		}
		return lipgloss.JoinVertical(lipgloss.Center, letter, "", m.renderFeedback())
	case stateDone:
		return lipgloss.JoinVertical(lipgloss.Center,
			titleStyle.Render("Results"),
			"",
			m.table.View(),
			"",
			textStyle.Render(stats.AverageLine(m.results)),
			"",
			footerStyle.Render("↑/↓ scroll · q quit"),
		)
	default:
		return ""
	}
}

func (m *Model) renderFeedback() string {
	if strings.HasPrefix(m.feedback, "Wrong") {
		return wrongStyle.Render(m.feedback)
	}
	return goodStyle.Render(m.feedback)
}

func (m *Model) renderFooter() string {
	total := len(m.letters)
	current := m.index + 1
	if current > total {
		current = total
	}
	segments := []string{fmt.Sprintf("Letter %d/%d", current, total)}
	if n := len(m.results); n > 0 {
		segments = append(segments,
			fmt.Sprintf("Last %s ms", stats.FormatMs(m.results[n-1].Elapsed)),
			fmt.Sprintf("Avg %.1f ms", stats.MeanMs(m.results)))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func buildResultsTable(results []model.Trial, height int) table.Model {
	titles := []string{"Letter", "Time (ms)"}
	rows := make([]table.Row, 0, len(results))
	for _, trial := range results {
		rows = append(rows, table.Row{
			string(unicode.ToUpper(trial.Letter)),
			stats.FormatMs(trial.Elapsed),
		})
	}
	columns := make([]table.Column, len(titles))
	for i, title := range titles {
		columns[i] = table.Column{Title: title, Width: columnWidth(title, rows, i)}
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height)),
		table.WithFocused(true),
	)
	t.SetStyles(resultsTableStyles())
	return t
}

func columnWidth(title string, rows []table.Row, col int) int {
	width := runewidth.StringWidth(title)
	for _, row := range rows {
		if col < len(row) {
			if w := runewidth.StringWidth(row[col]); w > width {
				width = w
			}
		}
	}
	return width + 1
}

func resultsTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
