package tui

import (
	"fmt"

	"github.com/w31r4/gofreeze/internal/process"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles every message and returns the next model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.detailsViewport.Width = max(msg.Width-8, 20)
		m.detailsViewport.Height = max(msg.Height-8, 5)
		if m.processDetails != "" {
			m.detailsViewport.SetContent(formatProcessDetails(m.processDetails, m.detailsViewport.Width))
		}
		return m, nil

	case processesLoadedMsg:
		m.processes = msg.processes
		m.warnings = msg.warnings
		m.filtered = m.filterProcesses(m.textInput.Value())
		m.clampCursor()
		return m, nil

	case processDetailsMsg:
		m.processDetails = string(msg)
		m.detailsViewport.SetContent(formatProcessDetails(m.processDetails, m.detailsViewport.Width))
		m.detailsViewport.GotoTop()
		return m, nil

	case errMsg:
		// A process that exited between listing and acting on it is a
		// race, not a failure: mark it and move on.
		if process.IsGone(msg.err) {
			m.notice = "process already exited; ctrl+r to refresh"
			return m, nil
		}
		m.err = msg.err
		return m, nil

	case actionOKMsg:
		if it := m.findProcess(msg.pid); it != nil {
			switch msg.op {
			case opSuspend:
				it.Status = process.Paused
			case opResume:
				if msg.depth > 0 {
					it.Status = process.Paused
				} else {
					it.Status = process.Alive
				}
			case opKill:
				it.Status = process.Killed
			}
		}
		m.notice = actionNotice(msg)
		if msg.op == opKill {
			m.filtered = m.filterProcesses(m.textInput.Value())
			m.clampCursor()
		}
		return m, nil

	case tea.KeyMsg:
		if m.helpOpen {
			switch msg.String() {
			case "?", "esc":
				m.helpOpen = false
			case "ctrl+c", "q":
				return m, tea.Quit
			}
			return m, nil
		}

		if m.confirm != nil {
			switch msg.String() {
			case "y", "enter":
				c := *m.confirm
				m.confirm = nil
				return m, runAction(m.ctl, c.pid, c.op)
			case "n", "esc":
				m.confirm = nil
			case "ctrl+c", "q":
				return m, tea.Quit
			}
			return m, nil
		}

		if m.err != nil {
			switch msg.String() {
			case "esc":
				m.err = nil
			case "ctrl+c", "q":
				return m, tea.Quit
			}
			return m, nil
		}

		if m.showDetails {
			switch msg.String() {
			case "esc", "i":
				m.showDetails = false
				m.processDetails = ""
				return m, nil
			case "ctrl+c", "q":
				return m, tea.Quit
			}
			m.detailsViewport, cmd = m.detailsViewport.Update(msg)
			return m, cmd
		}

		if m.textInput.Focused() {
			switch msg.String() {
			case "enter", "esc":
				m.textInput.Blur()
			}
			m.textInput, cmd = m.textInput.Update(msg)
			m.filtered = m.filterProcesses(m.textInput.Value())
			m.clampCursor()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "ctrl+r":
			m.notice = ""
			return m, getProcesses(m.ctl)
		case "?":
			m.helpOpen = true
			return m, nil
		case "/":
			return m, m.textInput.Focus()
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		case "s", "p":
			return m.act(opSuspend)
		case "r":
			return m.act(opResume)
		case "x", "enter":
			return m.act(opKill)
		case "i":
			if p := m.selected(); p != nil {
				m.showDetails = true
				m.processDetails = ""
				return m, getProcessDetails(m.ctl, p.Pid)
			}
			return m, nil
		}
	}

	var filterCmd tea.Cmd
	m.textInput, filterCmd = m.textInput.Update(msg)
	m.filtered = m.filterProcesses(m.textInput.Value())
	m.clampCursor()
	return m, tea.Batch(cmd, filterCmd)
}

// act starts o on the selected process, through the confirm prompt when
// confirmation is enabled.
func (m model) act(o op) (tea.Model, tea.Cmd) {
	p := m.selected()
	if p == nil {
		return m, nil
	}
	if m.opts.Confirm {
		m.confirm = &confirmPrompt{pid: p.Pid, name: p.Executable, op: o}
		return m, nil
	}
	return m, runAction(m.ctl, p.Pid, o)
}

func (m *model) clampCursor() {
	if m.cursor >= len(m.filtered) {
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
		} else {
			m.cursor = 0
		}
	}
}

func actionNotice(msg actionOKMsg) string {
	switch msg.op {
	case opSuspend:
		if msg.depth > 1 {
			return fmt.Sprintf("suspended %d (depth %d)", msg.pid, msg.depth)
		}
		return fmt.Sprintf("suspended %d", msg.pid)
	case opResume:
		if msg.depth > 0 {
			return fmt.Sprintf("resumed %d, still suspended %d more time(s)", msg.pid, msg.depth)
		}
		return fmt.Sprintf("resumed %d", msg.pid)
	case opKill:
		return fmt.Sprintf("killed %d", msg.pid)
	}
	return ""
}
