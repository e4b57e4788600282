package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/w31r4/gofreeze/internal/process"

	"github.com/charmbracelet/lipgloss"
)

var (
	docStyle       = lipgloss.NewStyle().Margin(0, 1)
	selectedStyle  = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("255"))
	faintStyle     = lipgloss.NewStyle().Faint(true)
	killingStyle   = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("9"))
	pausedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	paneStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	processPane    = paneStyle.Width(72).BorderForeground(lipgloss.Color("62"))
	detailTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	detailPane     = paneStyle.BorderForeground(lipgloss.Color("63")).Padding(1, 2)
	detailLabel    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	detailValue    = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	detailMetric   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	helpLineStyle  = faintStyle.MarginTop(1)
	errorTitle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	errorPane      = paneStyle.BorderForeground(lipgloss.Color("9")).Width(70).Padding(1, 2)
	errorMessage   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	confirmTitle   = lipgloss.NewStyle().Foreground(lipgloss.Color("178")).Bold(true)
	confirmPane    = paneStyle.BorderForeground(lipgloss.Color("178")).Width(70).Padding(1, 2)
	confirmMessage = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	helpTitle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	helpPane       = paneStyle.BorderForeground(lipgloss.Color("12")).Width(70).Padding(1, 2)
	rootUserStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("87"))
	pidStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	timeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	commandStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	portStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

// viewHeight is how many processes the list shows at once.
const viewHeight = 12

// View renders the model. Overlays win over the list in this order:
// error, confirm, help, details.
func (m model) View() string {
	if m.err != nil {
		return m.renderErrorView()
	}
	if m.confirm != nil {
		return m.renderConfirmView()
	}
	if m.helpOpen {
		return m.renderHelpView()
	}
	if m.showDetails {
		return m.renderDetailsView()
	}

	if len(m.processes) == 0 {
		return "Loading processes..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	if len(m.filtered) == 0 {
		return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "  No results...", footer))
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, m.renderProcessPane(), footer))
}

func (m model) renderHeader() string {
	var warnings string
	if len(m.warnings) > 0 {
		warnings = faintStyle.Render(fmt.Sprintf(" (%d skipped)", len(m.warnings)))
	}
	paused := 0
	for _, p := range m.processes {
		if p.Status == process.Paused {
			paused++
		}
	}
	count := fmt.Sprintf("(%d/%d, %d suspended)", len(m.filtered), len(m.processes), paused)
	return fmt.Sprintf("Search processes %s%s: %s", faintStyle.Render(count), warnings, m.textInput.View())
}

func (m model) renderFooter() string {
	var b strings.Builder
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	if m.textInput.Focused() {
		b.WriteString(faintStyle.Render(" enter/esc to exit search"))
	} else {
		b.WriteString(faintStyle.Render("?: help • /: search • s/p: suspend • r: resume • x/enter: kill • i: info • q: quit"))
	}
	return b.String()
}

func (m model) renderProcessPane() string {
	var b strings.Builder

	start := m.cursor - viewHeight/2
	if start < 0 {
		start = 0
	}
	end := start + viewHeight
	if end > len(m.filtered) {
		end = len(m.filtered)
		start = max(0, end-viewHeight)
	}

	for i := start; i < end; i++ {
		p := m.filtered[i]
		status := " "
		switch p.Status {
		case process.Killed:
			status = "K"
		case process.Paused:
			status = "S"
		}

		user := userStyle
		if p.User == "root" || strings.EqualFold(p.User, `NT AUTHORITY\SYSTEM`) {
			user = rootUserStyle
		}
		line := fmt.Sprintf("[%s] %s %s %s %s %s",
			status,
			commandStyle.Width(22).Render(truncate(p.Executable, 22)),
			timeStyle.Width(6).Render(p.StartTime),
			user.Width(12).Render(truncate(p.User, 12)),
			faintStyle.Width(5).Render(fmt.Sprintf("%dt", p.Threads)),
			pidStyle.Render(fmt.Sprintf("%d", p.Pid)),
		)

		switch p.Status {
		case process.Killed:
			line = killingStyle.Render(line)
		case process.Paused:
			line = pausedStyle.Render(line)
		}

		if i == m.cursor {
			fmt.Fprintln(&b, selectedStyle.Render("❯ "+line))
		} else {
			fmt.Fprintln(&b, "  "+line)
		}
	}
	return processPane.Render(strings.TrimRight(b.String(), "\n"))
}

// truncate cuts s to maxLen runes, marking the cut with "…".
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}

func (m model) renderDetailsView() string {
	title := detailTitle.Render("Process Details")
	body := faintStyle.Render("Loading...")
	if m.processDetails != "" {
		body = m.detailsViewport.View()
	}
	help := helpLineStyle.Render(" esc/i: back to list • up/down/pgup/pgdn: scroll")
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, detailPane.Render(body), help))
}

func (m model) renderErrorView() string {
	title := errorTitle.Render("Something went wrong")
	body := errorPane.Render(errorMessage.Render(friendlyErrorMessage(m.err)))
	help := helpLineStyle.Render(" esc: dismiss • q: quit")
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, body, help))
}

func (m model) renderConfirmView() string {
	title := confirmTitle.Render("Confirm Action")
	msg := fmt.Sprintf("Action: %s\nProcess: %s (%d)", m.confirm.op, m.confirm.name, m.confirm.pid)
	body := confirmPane.Render(confirmMessage.Render(msg))
	help := helpLineStyle.Render(" y/enter: confirm • n/esc: cancel • q: quit")
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, body, help))
}

func (m model) renderHelpView() string {
	title := helpTitle.Render("Help / Commands")
	body := helpPane.Render(strings.Join([]string{
		"up/down (k/j): move cursor",
		"/: search by name or pid",
		"s or p: suspend every thread of the process",
		"r: resume (harmless if the process is not suspended)",
		"x or enter: kill",
		"i: details • ctrl+r: refresh",
		"q/ctrl+c: quit • ?: close help",
		"",
		"Suspensions are remembered; `gofreeze thaw` resumes them all.",
	}, "\n"))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}

// formatProcessDetails lays out "Label: value" lines with right-aligned
// labels and wraps long values under their own column.
func formatProcessDetails(details string, contentWidth int) string {
	raw := strings.TrimRight(details, "\n")
	if raw == "" {
		return faintStyle.Render("(no details)")
	}
	lines := strings.Split(raw, "\n")
	if contentWidth <= 0 {
		contentWidth = 80
	}

	labelWidth := computeDetailLabelWidth(lines, contentWidth)
	valueColumnStart := labelWidth + 1
	valueWidth := contentWidth - valueColumnStart

	var rows []string
	for _, rawLine := range lines {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			rows = append(rows, "")
			continue
		}
		label, value := splitDetailLine(line)
		if label == "" {
			for _, wl := range wrapPlainText(line, contentWidth) {
				rows = append(rows, detailValue.Render(wl))
			}
			continue
		}

		labelCell := detailLabel.Width(labelWidth).Align(lipgloss.Right).Render(label + ":")
		style := detailValueStyleFor(label, value)
		if valueWidth <= 0 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, labelCell, " ", style.Render(value)))
			continue
		}

		wrapped := wrapPlainText(value, valueWidth)
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, labelCell, " ", style.Render(wrapped[0])))
		indent := strings.Repeat(" ", valueColumnStart)
		for _, cont := range wrapped[1:] {
			rows = append(rows, indent+style.Render(cont))
		}
	}
	return strings.Join(rows, "\n")
}

// computeDetailLabelWidth sizes the label column: at least 12, at most 24,
// and always leaving room for a value column.
func computeDetailLabelWidth(lines []string, contentWidth int) int {
	maxPossible := max(contentWidth-1, 1)
	minWidth := min(12, maxPossible)
	maxWidth := min(24, maxPossible)

	width := minWidth
	for _, line := range lines {
		label, _ := splitDetailLine(strings.TrimSpace(line))
		if label == "" {
			continue
		}
		width = max(width, lipgloss.Width(label+":"))
	}
	return min(width, maxWidth)
}

func detailValueStyleFor(label, value string) lipgloss.Style {
	switch label {
	case "PID", "PPID":
		return pidStyle
	case "User":
		if strings.EqualFold(strings.TrimSpace(value), "root") {
			return rootUserStyle
		}
		return userStyle
	case "Name", "Command":
		return commandStyle
	case "Started":
		return timeStyle
	case "Ports":
		return portStyle
	case "Status", "Suspended", "Threads":
		return detailMetric
	default:
		return detailValue
	}
}

func wrapPlainText(text string, width int) []string {
	txt := strings.TrimSpace(text)
	if txt == "" {
		return []string{""}
	}
	if width <= 0 {
		return []string{txt}
	}

	var lines []string
	var current string
	for _, word := range strings.Fields(txt) {
		parts := []string{word}
		if lipgloss.Width(word) > width {
			parts = splitLongToken(word, width)
		}
		for _, part := range parts {
			if current == "" {
				current = part
				continue
			}
			if candidate := current + " " + part; lipgloss.Width(candidate) <= width {
				current = candidate
				continue
			}
			lines = append(lines, current)
			current = part
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func splitLongToken(token string, width int) []string {
	var out []string
	var b strings.Builder
	curWidth := 0
	for _, r := range token {
		w := lipgloss.Width(string(r))
		if curWidth > 0 && curWidth+w > width {
			out = append(out, b.String())
			b.Reset()
			curWidth = 0
		}
		b.WriteRune(r)
		curWidth += w
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}

// splitDetailLine splits "Label: value" (or "Label:\tvalue") at the first
// colon. Lines without a colon have no label.
func splitDetailLine(line string) (string, string) {
	if idx := strings.Index(line, ":\t"); idx != -1 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+2:])
	}
	if idx := strings.Index(line, ":"); idx != -1 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
	}
	return "", line
}

// friendlyErrorMessage appends a hint for the failures users can fix.
func friendlyErrorMessage(err error) string {
	if err == nil {
		return "(n/a)"
	}
	raw := strings.TrimSpace(err.Error())
	switch {
	case errors.Is(err, process.ErrAccessDenied):
		return fmt.Sprintf("%s\n\nHint: Try running gofreeze with sudo or as an administrator.", raw)
	case errors.Is(err, process.ErrNotFound):
		return fmt.Sprintf("%s\n\nHint: The process may have already exited. Try refreshing (ctrl+r).", raw)
	default:
		return raw
	}
}
