package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ofsd-io/ofsd/internal/automation"
	"github.com/ofsd-io/ofsd/internal/models"
)

// View renders the monitor.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("ofsd") + labelStyle.Render("  "+m.settings.Automation.AppName+" badges"))
	b.WriteString("\n\n")
	b.WriteString(panelStyle.Render(m.renderCounts()))
	b.WriteString("\n")

	if m.showPerspectives {
		b.WriteString(panelStyle.Render(m.renderPerspectives()))
		b.WriteString("\n")
	}

	b.WriteString(renderStatusBar(&m, m.width))
	return b.String()
}

func (m Model) renderCounts() string {
	var rows []string
	rows = append(rows, sectionHeaderStyle.Render("Counts"))

	if len(m.results) == 0 {
		rows = append(rows, m.spinner.View()+labelStyle.Render(" querying..."))
		return strings.Join(rows, "\n")
	}

	for _, r := range m.results {
		label := labelStyle.Render(fmt.Sprintf("%-8s", r.Source.Label()))
		state := m.deriver.Derive(r.Count, r.Source)
		value := stateStyle(state).Render(fmt.Sprintf("%4d  %-5s", r.Count, state))
		line := label + " " + value
		if r.Err != nil {
			line += "  " + errorStyle.Render(errorSummary(r.Err))
		}
		rows = append(rows, line)
	}

	footer := labelStyle.Render(fmt.Sprintf("short threshold %d", m.deriver.Thresholds().Short))
	if !m.lastUpdated.IsZero() {
		footer += labelStyle.Render("  updated " + m.lastUpdated.Format("15:04:05"))
	}
	if m.loading {
		footer += " " + m.spinner.View()
	}
	rows = append(rows, footer)
	return strings.Join(rows, "\n")
}

func (m Model) renderPerspectives() string {
	rows := []string{sectionHeaderStyle.Render("Perspectives")}
	switch {
	case m.loadingPerspective:
		rows = append(rows, m.spinner.View()+labelStyle.Render(" loading..."))
	case m.perspectivesErr != nil:
		rows = append(rows, errorStyle.Render(errorSummary(m.perspectivesErr)))
	case len(m.perspectives) == 0:
		rows = append(rows, labelStyle.Render("(none)"))
	default:
		visible := m.perspectives[m.offset:]
		if limit := m.height - 14; limit > 0 && len(visible) > limit {
			visible = visible[:limit]
		}
		rows = append(rows, visible...)
	}
	return strings.Join(rows, "\n")
}

func stateStyle(s models.DueTasksState) lipgloss.Style {
	switch s {
	case models.DueTasksStateShort:
		return stateShortStyle
	case models.DueTasksStateLong:
		return stateLongStyle
	default:
		return stateNoneStyle
	}
}

func errorSummary(err error) string {
	switch {
	case automation.IsUnavailable(err):
		return "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	default:
		return err.Error()
	}
}
