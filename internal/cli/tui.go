package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pinfold/pinfold/pkg/lint"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// FindingListModel - Interactive lint finding browser
// =============================================================================

// FindingListModel is the bubbletea model for browsing lint findings.
// Findings can be filtered by severity; the detail pane shows the full
// message for the selected finding.
type FindingListModel struct {
	Root     string
	Findings []lint.Finding
	Filtered []lint.Finding
	Filter   string // "", "error", "warning", "info"
	Cursor   int
	Height   int
	Offset   int
}

// NewFindingListModel creates a finding browser for the given report.
func NewFindingListModel(root string, findings []lint.Finding) FindingListModel {
	return FindingListModel{
		Root:     root,
		Findings: findings,
		Filtered: findings,
		Height:   15,
	}
}

func (m FindingListModel) Init() tea.Cmd {
	return nil
}

func (m FindingListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Filtered)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "e":
			m = m.withFilter("error")
		case "w":
			m = m.withFilter("warning")
		case "i":
			m = m.withFilter("info")
		case "a":
			m = m.withFilter("")
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// withFilter narrows the list to one severity; repeating clears it.
func (m FindingListModel) withFilter(sev string) FindingListModel {
	if m.Filter == sev {
		sev = ""
	}
	m.Filter = sev
	m.Cursor = 0
	m.Offset = 0

	if sev == "" {
		m.Filtered = m.Findings
		return m
	}
	filtered := make([]lint.Finding, 0, len(m.Findings))
	for _, f := range m.Findings {
		if f.Severity.String() == sev {
			filtered = append(filtered, f)
		}
	}
	m.Filtered = filtered
	return m
}

func (m FindingListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Lint Findings"))
	b.WriteString(" " + listDimStyle.Render(m.Root))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  e/w/i filter  a all  q quit"))
	b.WriteString("\n\n")

	if len(m.Filtered) == 0 {
		b.WriteString(listDimStyle.Render("  no findings match the filter"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.Filtered) {
		end = len(m.Filtered)
	}

	for i := m.Offset; i < end; i++ {
		f := m.Filtered[i]
		style, icon := severityStyle(f.Severity)

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%s %s:%d  %s",
			cursor,
			style.Render(icon),
			shortFile(f.File), f.Line,
			f.Rule)

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	selected := m.Filtered[m.Cursor]
	b.WriteString("  " + StyleValue.Render(selected.Message))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Filtered))))

	return b.String()
}

// shortFile trims a path to its last two elements for list display.
func shortFile(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
