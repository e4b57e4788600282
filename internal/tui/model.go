package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/w31r4/gofreeze/internal/process"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

// controller is the slice of process.Controller the list drives.
type controller interface {
	List(ctx context.Context) ([]*process.Item, []string, error)
	Details(ctx context.Context, pid int32) (string, error)
	Suspend(ctx context.Context, pid int32) (process.Result, error)
	Resume(ctx context.Context, pid int32) (process.Result, error)
	Kill(pid int32) error
}

// op names an action the user can take on a process.
type op string

const (
	opSuspend op = "suspend"
	opResume  op = "resume"
	opKill    op = "kill"
)

// cmdTimeout bounds every background call into the controller.
const cmdTimeout = 10 * time.Second

// processesLoadedMsg carries a fresh process list.
type processesLoadedMsg struct {
	processes []*process.Item
	warnings  []string
}

// processDetailsMsg carries the details text of one process.
type processDetailsMsg string

type errMsg struct{ err error }

// actionOKMsg is sent only after the OS accepted an action, so the list
// never shows a state the process is not in.
type actionOKMsg struct {
	pid   int32
	op    op
	depth int
}

type confirmPrompt struct {
	pid  int32
	name string
	op   op
}

// Options tunes the interactive list.
type Options struct {
	// Filter pre-fills the search box.
	Filter string
	// Confirm asks before suspending, resuming or killing.
	Confirm bool
}

type model struct {
	ctl  controller
	opts Options

	processes []*process.Item
	filtered  []*process.Item
	warnings  []string
	cursor    int
	textInput textinput.Model

	err     error
	notice  string
	confirm *confirmPrompt

	helpOpen        bool
	showDetails     bool
	processDetails  string
	detailsViewport viewport.Model
	width, height   int
}

// InitialModel returns the list before any process has been loaded.
func InitialModel(ctl controller, opts Options) model {
	ti := textinput.New()
	ti.Placeholder = "Search processes"
	ti.CharLimit = 156
	ti.Width = 20
	ti.SetValue(opts.Filter)

	return model{
		ctl:             ctl,
		opts:            opts,
		textInput:       ti,
		detailsViewport: viewport.New(80, 20),
	}
}

func (m model) Init() tea.Cmd {
	return getProcesses(m.ctl)
}

func getProcesses(ctl controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		procs, warnings, err := ctl.List(ctx)
		if err != nil {
			return errMsg{err}
		}
		return processesLoadedMsg{processes: procs, warnings: warnings}
	}
}

func getProcessDetails(ctl controller, pid int32) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		details, err := ctl.Details(ctx, pid)
		if err != nil {
			return errMsg{err}
		}
		return processDetailsMsg(details)
	}
}

// runAction performs o on pid in the background and reports the outcome.
func runAction(ctl controller, pid int32, o op) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()

		var (
			res process.Result
			err error
		)
		switch o {
		case opSuspend:
			res, err = ctl.Suspend(ctx, pid)
		case opResume:
			res, err = ctl.Resume(ctx, pid)
		case opKill:
			err = ctl.Kill(pid)
		default:
			err = fmt.Errorf("unknown action %q", o)
		}
		if err != nil {
			return errMsg{err}
		}
		return actionOKMsg{pid: pid, op: o, depth: res.Depth}
	}
}

// fuzzyProcessSource lets fuzzy match on executable name and pid together.
type fuzzyProcessSource struct {
	processes []*process.Item
}

func (s fuzzyProcessSource) String(i int) string {
	p := s.processes[i]
	return fmt.Sprintf("%s %d", p.Executable, p.Pid)
}

func (s fuzzyProcessSource) Len() int {
	return len(s.processes)
}

// filterProcesses returns the non-killed processes matching filter, best
// match first. An empty filter keeps the list order.
func (m *model) filterProcesses(filter string) []*process.Item {
	var filtered []*process.Item
	if filter == "" {
		for _, p := range m.processes {
			if p.Status != process.Killed {
				filtered = append(filtered, p)
			}
		}
		return filtered
	}

	matches := fuzzy.FindFrom(filter, fuzzyProcessSource{processes: m.processes})
	for _, match := range matches {
		p := m.processes[match.Index]
		if p.Status != process.Killed {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func (m model) findProcess(pid int32) *process.Item {
	for _, p := range m.processes {
		if p.Pid == pid {
			return p
		}
	}
	return nil
}

func (m model) selected() *process.Item {
	if len(m.filtered) == 0 || m.cursor >= len(m.filtered) {
		return nil
	}
	return m.filtered[m.cursor]
}

// Start runs the interactive list until the user quits.
func Start(ctl *process.Controller, opts Options) error {
	p := tea.NewProgram(InitialModel(ctl, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run list: %w", err)
	}
	return nil
}
