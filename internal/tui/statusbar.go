package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(m *Model, width int) string {
	if m.err != nil {
		return renderErrorBar(m.err.Error(), width)
	}

	left := " " + keyHint("q", "quit") + "  " + keyHint("r", "refresh") + "  " + keyHint("p", "perspectives")
	if m.showPerspectives {
		left += "  " + keyHint("j/k", "scroll")
	}

	var right string
	if m.plugin.Running {
		right = runningStyle.Render(fmt.Sprintf("plugin running (PID %d)", m.plugin.PID)) + " "
	} else {
		right = labelStyle.Render("plugin not running") + " "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func keyHint(k, desc string) string {
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}

func renderErrorBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorRed).
		Width(width).
		Render(" " + msg)
}
