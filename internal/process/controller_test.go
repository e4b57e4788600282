package process

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w31r4/gofreeze/internal/suspend"
)

type fakeHandle struct {
	h      suspend.Handle
	closed *int
}

func (f fakeHandle) Handle() suspend.Handle { return f.h }
func (f fakeHandle) Close() error           { *f.closed++; return nil }

type fakeOS struct {
	procs    map[int32]int64 // pid -> create time
	names    map[int32]string
	suspends map[int32]int
	resumes  map[int32]int
	killed   map[int32]bool
	status   suspend.Status
	openErr  error
	closed   int

	// unreadable pids exist but their create time cannot be read.
	unreadable map[int32]bool
}

func newFakeController(t *testing.T, nests bool) (*Controller, *fakeOS) {
	t.Helper()
	f := &fakeOS{
		procs:    map[int32]int64{},
		names:    map[int32]string{},
		suspends: map[int32]int{},
		resumes:  map[int32]int{},
		killed:   map[int32]bool{},

		unreadable: map[int32]bool{},
	}
	c := NewController(filepath.Join(t.TempDir(), "ledger.json"), zerolog.Nop(), DetailsOptions{})
	c.nests = nests
	c.now = func() time.Time { return t0 }
	c.identify = func(_ context.Context, pid int32) (string, int64, error) {
		ct, ok := f.procs[pid]
		if !ok {
			return "", 0, ErrNotFound
		}
		if f.unreadable[pid] {
			return "", 0, errors.New("create time unknown")
		}
		return f.names[pid], ct, nil
	}
	c.openFn = func(pid int32) (handle, error) {
		if f.openErr != nil {
			return nil, f.openErr
		}
		return fakeHandle{h: suspend.Handle(pid), closed: &f.closed}, nil
	}
	c.suspendFn = func(h suspend.Handle) suspend.Status {
		if f.status == 0 {
			f.suspends[int32(h)]++
		}
		return f.status
	}
	c.resumeFn = func(h suspend.Handle) suspend.Status {
		if f.status == 0 {
			f.resumes[int32(h)]++
		}
		return f.status
	}
	c.killFn = func(pid int32) error {
		f.killed[pid] = true
		return nil
	}
	return c, f
}

func (f *fakeOS) spawn(pid int32, name string, ct int64) {
	f.procs[pid] = ct
	f.names[pid] = name
}

func TestControllerSuspendRecordsLedger(t *testing.T) {
	c, f := newFakeController(t, false)
	f.spawn(42, "worker", 100)

	res, err := c.Suspend(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, Result{Pid: 42, Executable: "worker", Depth: 1}, res)
	assert.Equal(t, 1, f.suspends[42])
	assert.Equal(t, 1, f.closed, "handle must be closed after use")

	entries, err := c.Ledger()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(100), entries[0].CreateTime)

	res, err = c.Resume(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Depth)
	entries, err = c.Ledger()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestControllerNestedSuspend(t *testing.T) {
	c, f := newFakeController(t, true)
	f.spawn(7, "svc", 1)
	ctx := context.Background()

	_, err := c.Suspend(ctx, 7)
	require.NoError(t, err)
	res, err := c.Suspend(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Depth)

	res, err = c.Resume(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Depth)
}

func TestControllerRejectedRequest(t *testing.T) {
	c, f := newFakeController(t, false)
	f.spawn(42, "worker", 100)
	f.status = 5

	_, err := c.Suspend(context.Background(), 42)
	var cerr *ControlError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "suspend", cerr.Op)
	assert.Equal(t, int32(42), cerr.Pid)
	assert.Equal(t, suspend.Status(5), cerr.Status)
	assert.Equal(t, 1, f.closed)

	entries, err := c.Ledger()
	require.NoError(t, err)
	assert.Empty(t, entries, "failed suspend must not be recorded")
}

func TestControllerOpenFailure(t *testing.T) {
	c, f := newFakeController(t, false)
	f.spawn(42, "worker", 100)
	f.openErr = ErrAccessDenied

	_, err := c.Suspend(context.Background(), 42)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Zero(t, f.suspends[42])
}

func TestControllerMissingProcess(t *testing.T) {
	c, _ := newFakeController(t, false)

	_, err := c.Suspend(context.Background(), 1234)
	assert.True(t, IsGone(err))
	_, err = c.Resume(context.Background(), 1234)
	assert.True(t, IsGone(err))
}

func TestControllerResumeNeverSuspended(t *testing.T) {
	c, f := newFakeController(t, false)
	f.spawn(9, "idle", 1)

	res, err := c.Resume(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Depth)
	assert.Equal(t, 1, f.resumes[9])
}

func TestControllerResumeGoneProcessForgetsIt(t *testing.T) {
	c, f := newFakeController(t, false)
	f.spawn(9, "idle", 1)
	_, err := c.Suspend(context.Background(), 9)
	require.NoError(t, err)

	delete(f.procs, 9)
	_, err = c.Resume(context.Background(), 9)
	assert.True(t, IsGone(err))

	entries, err := c.Ledger()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestControllerResumeAll(t *testing.T) {
	c, f := newFakeController(t, true)
	ctx := context.Background()
	f.spawn(1, "a", 10)
	f.spawn(2, "b", 20)
	f.spawn(3, "c", 30)

	for _, pid := range []int32{1, 2, 2, 3} {
		_, err := c.Suspend(ctx, pid)
		require.NoError(t, err)
	}

	// pid 3 exited, pid 1 was recycled by another process.
	delete(f.procs, 3)
	f.spawn(1, "impostor", 99)

	results, err := c.ResumeAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int32(2), results[0].Pid)
	assert.Equal(t, 0, results[0].Depth)
	assert.Equal(t, 2, f.resumes[2])
	assert.Zero(t, f.resumes[1], "recycled pid must not be resumed")

	entries, err := c.Ledger()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestControllerUnknownCreateTime(t *testing.T) {
	c, f := newFakeController(t, false)
	ctx := context.Background()
	f.spawn(8, "locked", 1)
	f.unreadable[8] = true

	_, err := c.Suspend(ctx, 8)
	require.Error(t, err)
	assert.Zero(t, f.suspends[8])
	entries, err := c.Ledger()
	require.NoError(t, err)
	assert.Empty(t, entries)

	f.spawn(9, "svc", 1)
	_, err = c.Suspend(ctx, 9)
	require.NoError(t, err)
	f.unreadable[9] = true

	results, err := c.ResumeAll(ctx)
	require.Error(t, err)
	assert.Empty(t, results)
	assert.Zero(t, f.resumes[9])

	entries, err = c.Ledger()
	require.NoError(t, err)
	require.Len(t, entries, 1, "an entry that cannot be verified is kept, not pruned")
	assert.Equal(t, int32(9), entries[0].Pid)
}

func TestControllerKillForgetsSuspension(t *testing.T) {
	c, f := newFakeController(t, false)
	f.spawn(5, "x", 1)
	_, err := c.Suspend(context.Background(), 5)
	require.NoError(t, err)

	require.NoError(t, c.Kill(5))
	assert.True(t, f.killed[5])

	entries, err := c.Ledger()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMarkSuspended(t *testing.T) {
	items := []*Item{
		{Pid: 1, CreateTime: 10},
		{Pid: 2, CreateTime: 20},
		{Pid: 3, CreateTime: 30},
		{Pid: 4},
	}
	markSuspended(items, []LedgerEntry{
		{Pid: 1, CreateTime: 10, Depth: 1},
		{Pid: 2, CreateTime: 21, Depth: 1},
		{Pid: 4, Depth: 1},
	})
	assert.Equal(t, Paused, items[0].Status)
	assert.Equal(t, Alive, items[1].Status)
	assert.Equal(t, Alive, items[2].Status)
	assert.Equal(t, Alive, items[3].Status, "unknown create time never matches")
}
