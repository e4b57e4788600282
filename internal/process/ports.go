package process

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	psutil "github.com/shirou/gopsutil/v3/process"
)

// listeningPorts returns the sorted, de-duplicated local ports p listens
// on. The scan is bounded by timeout so a slow process cannot stall the
// details view.
func listeningPorts(ctx context.Context, p *psutil.Process, timeout time.Duration) []uint32 {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conns, err := p.ConnectionsWithContext(ctx)
	if err != nil {
		return nil
	}

	unique := make(map[uint32]struct{})
	for _, conn := range conns {
		if conn.Laddr.Port == 0 {
			continue
		}
		// gopsutil reports UDP sockets and some platforms' listeners with
		// an empty or NONE status.
		if conn.Status != "LISTEN" && conn.Status != "NONE" && conn.Status != "" {
			continue
		}
		unique[conn.Laddr.Port] = struct{}{}
	}
	if len(unique) == 0 {
		return nil
	}

	ports := make([]uint32, 0, len(unique))
	for port := range unique {
		ports = append(ports, port)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })
	return ports
}

func formatPorts(ports []uint32) string {
	if len(ports) == 0 {
		return ""
	}
	parts := make([]string, len(ports))
	for i, port := range ports {
		parts[i] = fmt.Sprintf("%d", port)
	}
	return strings.Join(parts, ", ")
}
