package tui

import (
	"fmt"
	"testing"

	"github.com/w31r4/gofreeze/internal/process"
)

func generateMockProcesses(count int) []*process.Item {
	procs := make([]*process.Item, count)
	for i := 0; i < count; i++ {
		procs[i] = &process.Item{
			Pid:        int32(1000 + i),
			PPid:       1,
			Executable: fmt.Sprintf("process-%d", i),
			User:       "testuser",
			Threads:    4,
		}
		if i%7 == 0 {
			procs[i].Status = process.Paused
		}
	}
	return procs
}

func BenchmarkFilterProcesses(b *testing.B) {
	testCases := []struct {
		name   string
		count  int
		filter string
	}{
		{"Small-100-empty", 100, ""},
		{"Medium-1000-fuzzy", 1000, "proc 12"},
		{"Large-5000-fuzzy", 5000, "process-49"},
	}

	for _, tc := range testCases {
		b.Run(tc.name, func(b *testing.B) {
			m := model{processes: generateMockProcesses(tc.count)}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = m.filterProcesses(tc.filter)
			}
		})
	}
}

func BenchmarkView(b *testing.B) {
	m := InitialModel(&fakeController{}, Options{})
	m.processes = generateMockProcesses(2000)
	m.filtered = m.processes
	m.cursor = 1000

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.View()
	}
}
