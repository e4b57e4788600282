package process

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatStartTime(t *testing.T) {
	now := time.Date(2026, 5, 10, 18, 30, 0, 0, time.UTC)

	today := time.Date(2026, 5, 10, 9, 5, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, "09:05", formatStartTime(today, now))

	earlier := time.Date(2026, 4, 2, 9, 5, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, "Apr02", formatStartTime(earlier, now))

	assert.Equal(t, "", formatStartTime(0, now))
}

func TestIsStopped(t *testing.T) {
	assert.True(t, isStopped([]string{"stop"}))
	assert.True(t, isStopped([]string{"sleep", "stop"}))
	assert.False(t, isStopped([]string{"running"}))
	assert.False(t, isStopped(nil))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "alive", Alive.String())
	assert.Equal(t, "paused", Paused.String())
	assert.Equal(t, "killed", Killed.String())
}

func TestFormatPorts(t *testing.T) {
	assert.Equal(t, "", formatPorts(nil))
	assert.Equal(t, "80, 443", formatPorts([]uint32{80, 443}))
}

func TestFormatBytesIEC(t *testing.T) {
	assert.Equal(t, "512 B", formatBytesIEC(512))
	assert.Equal(t, "1.5 KiB", formatBytesIEC(1536))
	assert.Equal(t, "2.0 GiB", formatBytesIEC(2<<30))
}

func TestGetProcessesIsSorted(t *testing.T) {
	items, _, err := GetProcesses(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, items)
	for i := 1; i < len(items); i++ {
		a, b := items[i-1], items[i]
		ok := a.Executable < b.Executable || (a.Executable == b.Executable && a.Pid < b.Pid)
		require.True(t, ok, "items %d/%d out of order: %q(%d) then %q(%d)", i-1, i, a.Executable, a.Pid, b.Executable, b.Pid)
	}
}

func BenchmarkGetProcesses(b *testing.B) {
	ctx := context.Background()
	for i := 0; i < b.N; i++ {
		if _, _, err := GetProcesses(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
