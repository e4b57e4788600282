//go:build windows

package suspend

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

func startSleeper(t *testing.T) Handle {
	t.Helper()
	cmd := exec.Command("ping", "-n", "30", "127.0.0.1")
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})

	h, err := windows.OpenProcess(windows.PROCESS_SUSPEND_RESUME|windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(cmd.Process.Pid))
	require.NoError(t, err)
	t.Cleanup(func() { _ = windows.CloseHandle(h) })
	return h
}

func TestSuspendThenResume(t *testing.T) {
	h := startSleeper(t)

	st := Suspend(h)
	require.True(t, st.OK(), st.String())
	st = Resume(h)
	require.True(t, st.OK(), st.String())

	var code uint32
	require.NoError(t, windows.GetExitCodeProcess(h, &code))
	assert.Equal(t, uint32(259), code, "process should still be running (STILL_ACTIVE)")
}

func TestResumeNeverSuspended(t *testing.T) {
	h := startSleeper(t)
	assert.True(t, Resume(h).OK())
}

func TestSuspendTwice(t *testing.T) {
	h := startSleeper(t)

	require.True(t, Nests)
	require.True(t, Suspend(h).OK())
	require.True(t, Suspend(h).OK())
	require.True(t, Resume(h).OK())
	require.True(t, Resume(h).OK())
}

func TestInvalidHandle(t *testing.T) {
	st := Suspend(InvalidHandle)
	assert.False(t, st.OK())
	assert.Error(t, st.Err())

	st = Resume(InvalidHandle)
	assert.False(t, st.OK())
	assert.ErrorIs(t, st.Err(), windows.STATUS_INVALID_HANDLE)
}

func TestStatus(t *testing.T) {
	var ok Status
	assert.True(t, ok.OK())
	assert.NoError(t, ok.Err())
	assert.Equal(t, "ok", ok.String())

	bad := Status(windows.STATUS_ACCESS_DENIED)
	assert.ErrorIs(t, bad.Err(), windows.STATUS_ACCESS_DENIED)
	assert.Equal(t, "NTSTATUS 0xC0000022", bad.String())
}
