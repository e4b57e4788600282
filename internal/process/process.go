// Package process lists processes and suspends, resumes or terminates them.
//
// Handles are acquired here (see Open) and lent to the suspend package for
// the actual OS call; suspensions that succeed are remembered in a Ledger
// so they can be undone later, even from another gofreeze invocation.
package process

import (
	"context"
	"fmt"
	"sort"
	"time"

	psutil "github.com/shirou/gopsutil/v3/process"
)

// Status is the state of a process as shown to the user.
type Status int

const (
	Alive Status = iota
	Paused
	Killed
)

func (s Status) String() string {
	switch s {
	case Paused:
		return "paused"
	case Killed:
		return "killed"
	default:
		return "alive"
	}
}

// Item is one entry of the process list.
type Item struct {
	Pid        int32  `json:"pid"`
	PPid       int32  `json:"ppid"`
	Executable string `json:"executable"`
	User       string `json:"user"`
	StartTime  string `json:"start_time"`
	CreateTime int64  `json:"create_time"`
	Threads    int32  `json:"threads"`
	Status     Status `json:"status"`
}

// NewItem builds a minimal Item, mostly useful in tests.
func NewItem(pid int32, executable, user string) *Item {
	return &Item{Pid: pid, Executable: executable, User: user}
}

// GetProcesses returns every visible process sorted by executable name,
// then PID. Processes that vanish or refuse inspection while the list is
// built are skipped and reported as warnings.
func GetProcesses(ctx context.Context) ([]*Item, []string, error) {
	procs, err := psutil.ProcessesWithContext(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list processes: %w", err)
	}

	now := time.Now()
	items := make([]*Item, 0, len(procs))
	var warnings []string
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		it, err := newItemFromProcess(ctx, p, now)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("pid %d: %v", p.Pid, err))
			continue
		}
		items = append(items, it)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Executable == items[j].Executable {
			return items[i].Pid < items[j].Pid
		}
		return items[i].Executable < items[j].Executable
	})
	return items, warnings, nil
}

func newItemFromProcess(ctx context.Context, p *psutil.Process, now time.Time) (*Item, error) {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return nil, err
	}
	it := &Item{Pid: p.Pid, Executable: name}

	// The remaining fields are best-effort: a process owned by another
	// user still belongs in the list.
	if ppid, err := p.PpidWithContext(ctx); err == nil {
		it.PPid = ppid
	}
	if user, err := p.UsernameWithContext(ctx); err == nil {
		it.User = user
	}
	if ct, err := p.CreateTimeWithContext(ctx); err == nil {
		it.CreateTime = ct
		it.StartTime = formatStartTime(ct, now)
	}
	if n, err := p.NumThreadsWithContext(ctx); err == nil {
		it.Threads = n
	}
	if states, err := p.StatusWithContext(ctx); err == nil && isStopped(states) {
		it.Status = Paused
	}
	return it, nil
}

// isStopped reports whether the OS already considers the process stopped.
func isStopped(states []string) bool {
	for _, s := range states {
		if s == psutil.Stop {
			return true
		}
	}
	return false
}

// formatStartTime renders a create time (ms since epoch) as a clock time
// for processes started today and as a date otherwise.
func formatStartTime(createMillis int64, now time.Time) string {
	if createMillis <= 0 {
		return ""
	}
	t := time.UnixMilli(createMillis).In(now.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return t.Format("15:04")
	}
	return t.Format("Jan02")
}

// identify returns the name and create time of a live process. The create
// time is what tells a recycled pid apart in the ledger, so a process
// whose create time cannot be read is an error.
func identify(ctx context.Context, pid int32) (string, int64, error) {
	p, err := psutil.NewProcessWithContext(ctx, pid)
	if err != nil {
		return "", 0, fmt.Errorf("process %d: %w: %w", pid, ErrNotFound, err)
	}
	name, _ := p.NameWithContext(ctx)
	ct, err := p.CreateTimeWithContext(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("process %d: create time: %w", pid, err)
	}
	if ct <= 0 {
		return "", 0, fmt.Errorf("process %d: create time unknown", pid)
	}
	return name, ct, nil
}
