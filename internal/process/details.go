package process

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	psutil "github.com/shirou/gopsutil/v3/process"
)

// DetailsOptions controls the optional, slower parts of GetProcessDetails.
type DetailsOptions struct {
	// ScanPorts collects listening ports.
	ScanPorts bool
	// PortTimeout bounds the port scan; zero means 300ms.
	PortTimeout time.Duration
}

// GetProcessDetails describes pid as "Label: value" lines. Fields the OS
// refuses to reveal are left out rather than failing the whole call.
func GetProcessDetails(ctx context.Context, pid int32, opts DetailsOptions) (string, error) {
	p, err := psutil.NewProcessWithContext(ctx, pid)
	if err != nil {
		return "", fmt.Errorf("process %d: %w: %w", pid, ErrNotFound, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "PID: %d\n", pid)
	if ppid, err := p.PpidWithContext(ctx); err == nil {
		fmt.Fprintf(&b, "PPID: %d\n", ppid)
	}
	if name, err := p.NameWithContext(ctx); err == nil {
		fmt.Fprintf(&b, "Name: %s\n", name)
	}
	if user, err := p.UsernameWithContext(ctx); err == nil {
		fmt.Fprintf(&b, "User: %s\n", user)
	}
	if states, err := p.StatusWithContext(ctx); err == nil && len(states) > 0 {
		fmt.Fprintf(&b, "Status: %s\n", strings.Join(states, ", "))
	}
	if n, err := p.NumThreadsWithContext(ctx); err == nil {
		fmt.Fprintf(&b, "Threads: %d\n", n)
	}
	if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		fmt.Fprintf(&b, "Memory: %s RSS\n", formatBytesIEC(mem.RSS))
	}
	if ct, err := p.CreateTimeWithContext(ctx); err == nil && ct > 0 {
		fmt.Fprintf(&b, "Started: %s\n", time.UnixMilli(ct).Format(time.DateTime))
	}
	if cmdline, err := p.CmdlineWithContext(ctx); err == nil && cmdline != "" {
		fmt.Fprintf(&b, "Command: %s\n", cmdline)
	}
	if line := childrenLine(ctx, p); line != "" {
		// Suspending a process leaves its children running.
		fmt.Fprintf(&b, "Children: %s\n", line)
	}
	if opts.ScanPorts {
		timeout := opts.PortTimeout
		if timeout <= 0 {
			timeout = 300 * time.Millisecond
		}
		if ports := listeningPorts(ctx, p, timeout); len(ports) > 0 {
			fmt.Fprintf(&b, "Ports: %s\n", formatPorts(ports))
		}
	}
	return b.String(), nil
}

const maxChildrenShown = 8

// childrenLine lists direct children as "pid(name)", lowest pid first,
// eliding past maxChildrenShown. It returns "" when there are none.
func childrenLine(ctx context.Context, p *psutil.Process) string {
	children, err := p.ChildrenWithContext(ctx)
	if err != nil || len(children) == 0 {
		return ""
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Pid < children[j].Pid })

	limit := min(len(children), maxChildrenShown)
	parts := make([]string, 0, limit)
	for _, ch := range children[:limit] {
		part := fmt.Sprintf("%d", ch.Pid)
		if name, err := ch.NameWithContext(ctx); err == nil && strings.TrimSpace(name) != "" {
			part = fmt.Sprintf("%d(%s)", ch.Pid, strings.TrimSpace(name))
		}
		parts = append(parts, part)
	}
	val := strings.Join(parts, ", ")
	if len(children) > limit {
		val = fmt.Sprintf("%s … (+%d)", val, len(children)-limit)
	}
	return val
}

func formatBytesIEC(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit && exp < 5; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
