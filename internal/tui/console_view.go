package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/redraft/internal/coordinator"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	badgePending = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	badgeDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	badgeError   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
)

// View renders the whole console.
func (a *App) View() string {
	header := titleStyle.Render("⌁ REDRAFT") + dimStyle.Render("  session "+a.shortSession())

	leftWidth := max(30, a.width/3)
	rightWidth := max(40, a.width-leftWidth-8)

	controls := lipgloss.JoinVertical(lipgloss.Left,
		a.taskMenu.View(),
		"Span  "+a.spanInput.View(),
		"Note  "+a.instrInput.View(),
	)
	left := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(leftWidth).Render(controls),
		panelStyle.Width(leftWidth).Render(a.renderOperations()),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(rightWidth).Render(a.renderDocumentPane(rightWidth-4)),
		panelStyle.Width(rightWidth).Render(a.renderCandidatePane(rightWidth-4)),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	sections := []string{header, body, a.renderStatusBar()}
	if tail := a.renderLogTail(); tail != "" {
		sections = append(sections, tail)
	}
	sections = append(sections, footerStyle.Render(
		"tab focus · enter submit · ctrl+r cancel newest · ctrl+x cancel all · esc clear notice · ctrl+c quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) shortSession() string {
	id := a.status.SessionID
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (a *App) renderOperations() string {
	if len(a.ops) == 0 {
		return dimStyle.Render("No operations in flight.")
	}
	lines := make([]string, 0, len(a.ops)+1)
	lines = append(lines, titleStyle.Render("Operations"))
	for _, op := range a.ops {
		badge := badgePending.Render("…")
		switch op.Status {
		case coordinator.StatusCompleted:
			badge = badgeDone.Render("✓")
		case coordinator.StatusError:
			badge = badgeError.Render("✗")
		}
		detail := fmt.Sprintf("%s %s %s %s", badge, op.Task.Name, op.Span, op.ID)
		if op.Status == coordinator.StatusError && op.Error != "" {
			detail += dimStyle.Render(" · " + op.Error)
		}
		if op.Status == coordinator.StatusCompleted {
			detail += dimStyle.Render(fmt.Sprintf(" · %s", op.Duration.Round(time.Millisecond)))
		}
		lines = append(lines, detail)
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderDocumentPane(width int) string {
	body := a.docText
	if body == "" {
		body = dimStyle.Render("(empty document)")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Document"),
		clampLines(body, 10, width),
	)
}

func (a *App) renderCandidatePane(width int) string {
	if a.candidate == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Candidate"),
			dimStyle.Render("No completions yet."),
		)
	}
	label := fmt.Sprintf("Candidate · %s over %s", a.candidate.Op.Task, a.candidate.Op.Span)
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(label),
		clampLines(a.candidate.Text, 10, width),
	)
}

func (a *App) renderStatusBar() string {
	st := a.status
	parts := []string{
		fmt.Sprintf("state %s", st.State),
		fmt.Sprintf("pending %d", st.Pending),
		fmt.Sprintf("done %d", st.Completed),
		fmt.Sprintf("failed %d", st.Errored),
	}
	if a.session.Meter != nil {
		total := a.session.Meter.Total()
		parts = append(parts, fmt.Sprintf("units %d across %d calls", total.Usage.Total(), total.Calls))
	}
	bar := dimStyle.Render(strings.Join(parts, " · "))
	if a.errorNotice != "" {
		bar += "  " + noticeStyle.Render("! "+a.errorNotice)
	}
	if a.statusMsg != "" {
		bar += "  " + dimStyle.Render(a.statusMsg)
	}
	return bar
}

func (a *App) renderLogTail() string {
	if len(a.logLines) == 0 {
		return ""
	}
	return dimStyle.Render(strings.Join(a.logLines, "\n"))
}

// clampLines trims text to the pane: at most maxLines lines, each at most
// width runes.
func clampLines(body string, maxLines, width int) string {
	lines := strings.Split(body, "\n")
	if len(lines) > maxLines {
		lines = append(lines[:maxLines-1], dimStyle.Render("…"))
	}
	if width < 10 {
		width = 10
	}
	for i, line := range lines {
		runes := []rune(line)
		if len(runes) > width {
			lines[i] = string(runes[:width-1]) + "…"
		}
	}
	return strings.Join(lines, "\n")
}
