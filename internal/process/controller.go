package process

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/w31r4/gofreeze/internal/suspend"
)

// Result describes the outcome of a successful suspend or resume.
type Result struct {
	Pid        int32
	Executable string
	// Depth is the number of suspensions still outstanding afterwards.
	Depth int
}

// Controller runs suspend, resume and kill requests and keeps the ledger
// in step with them. Requests for the same pid are not ordered against
// each other; callers that need ordering must serialize themselves.
type Controller struct {
	ledgerPath string
	log        zerolog.Logger
	opts       DetailsOptions

	// mu serializes ledger read-modify-write cycles within this process;
	// lockLedger does the same across processes.
	mu sync.Mutex

	nests     bool
	now       func() time.Time
	openFn    func(pid int32) (handle, error)
	identify  func(ctx context.Context, pid int32) (string, int64, error)
	suspendFn func(suspend.Handle) suspend.Status
	resumeFn  func(suspend.Handle) suspend.Status
	killFn    func(pid int32) error
}

// handle is the part of Target the controller needs.
type handle interface {
	Handle() suspend.Handle
	Close() error
}

// NewController returns a Controller storing its ledger at ledgerPath.
func NewController(ledgerPath string, logger zerolog.Logger, opts DetailsOptions) *Controller {
	return &Controller{
		ledgerPath: ledgerPath,
		log:        logger,
		opts:       opts,
		nests:      suspend.Nests,
		now:        time.Now,
		openFn:     func(pid int32) (handle, error) { return Open(pid) },
		identify:   identify,
		suspendFn:  suspend.Suspend,
		resumeFn:   suspend.Resume,
		killFn:     terminate,
	}
}

// LedgerPath returns where the controller keeps its ledger.
func (c *Controller) LedgerPath() string { return c.ledgerPath }

// Suspend stops every thread of pid and records it in the ledger.
func (c *Controller) Suspend(ctx context.Context, pid int32) (Result, error) {
	name, createTime, err := c.identify(ctx, pid)
	if err != nil {
		return Result{Pid: pid}, err
	}
	if err := c.call("suspend", pid, c.suspendFn); err != nil {
		return Result{Pid: pid, Executable: name}, err
	}

	var entry LedgerEntry
	err = c.withLedger(func(l *Ledger) bool {
		entry = l.Record(pid, name, createTime, c.nests, c.now())
		return true
	})
	if err != nil {
		// The process is suspended either way; report the bookkeeping
		// failure without pretending the suspend failed.
		c.log.Error().Err(err).Int32("pid", pid).Msg("ledger update failed after suspend")
		entry.Depth = 1
	}
	c.log.Info().Int32("pid", pid).Str("exe", name).Int("depth", entry.Depth).Msg("suspended")
	return Result{Pid: pid, Executable: name, Depth: entry.Depth}, err
}

// Resume undoes one suspension of pid. It is harmless on a process that
// was never suspended.
func (c *Controller) Resume(ctx context.Context, pid int32) (Result, error) {
	name, createTime, err := c.identify(ctx, pid)
	if err != nil {
		// Gone for good: nothing to resume, but the ledger must not keep it.
		if IsGone(err) {
			_ = c.withLedger(func(l *Ledger) bool {
				if _, ok := l.Lookup(pid); !ok {
					return false
				}
				l.Forget(pid)
				return true
			})
		}
		return Result{Pid: pid}, err
	}
	if err := c.call("resume", pid, c.resumeFn); err != nil {
		return Result{Pid: pid, Executable: name}, err
	}

	var depth int
	err = c.withLedger(func(l *Ledger) bool {
		if _, ok := l.Lookup(pid); !ok {
			return false
		}
		depth = l.Release(pid, createTime, c.nests)
		return true
	})
	if err != nil {
		c.log.Error().Err(err).Int32("pid", pid).Msg("ledger update failed after resume")
	}
	c.log.Info().Int32("pid", pid).Str("exe", name).Int("depth", depth).Msg("resumed")
	return Result{Pid: pid, Executable: name, Depth: depth}, err
}

// ResumeAll resumes every process recorded in the ledger as many times as
// it was suspended. Entries whose process exited, or whose pid now belongs
// to a different process, are dropped without touching anything.
func (c *Controller) ResumeAll(ctx context.Context) ([]Result, error) {
	var entries []LedgerEntry
	err := c.withLedger(func(l *Ledger) bool {
		removed := l.Prune(func(e LedgerEntry) bool {
			_, ct, err := c.identify(ctx, e.Pid)
			if err != nil {
				// Only a process known to be gone is stale; anything else
				// is reported by the resume below.
				return !IsGone(err)
			}
			return ct == e.CreateTime
		})
		for _, e := range removed {
			c.log.Info().Int32("pid", e.Pid).Str("exe", e.Executable).Msg("dropped stale ledger entry")
		}
		entries = l.Entries()
		return len(removed) > 0
	})
	if err != nil {
		return nil, err
	}

	var results []Result
	var errs []error
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return results, errors.Join(append(errs, err)...)
		}
		var res Result
		var rerr error
		for i := 0; i < max(e.Depth, 1); i++ {
			res, rerr = c.Resume(ctx, e.Pid)
			if rerr != nil || res.Depth == 0 {
				break
			}
		}
		if rerr != nil {
			errs = append(errs, rerr)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// Kill terminates pid and forgets any suspension recorded for it. It
// works on processes stopped by gofreeze or by anything else.
func (c *Controller) Kill(pid int32) error {
	if err := c.killFn(pid); err != nil {
		c.log.Warn().Err(err).Int32("pid", pid).Msg("kill failed")
		return err
	}
	c.log.Info().Int32("pid", pid).Msg("killed")
	return c.withLedger(func(l *Ledger) bool {
		if _, ok := l.Lookup(pid); !ok {
			return false
		}
		l.Forget(pid)
		return true
	})
}

// List returns the process list with ledger entries marked Paused.
func (c *Controller) List(ctx context.Context) ([]*Item, []string, error) {
	items, warnings, err := GetProcesses(ctx)
	if err != nil {
		return nil, nil, err
	}
	entries, err := c.Ledger()
	if err != nil {
		warnings = append(warnings, err.Error())
		return items, warnings, nil
	}
	markSuspended(items, entries)
	return items, warnings, nil
}

// Details describes pid, including any outstanding suspensions.
func (c *Controller) Details(ctx context.Context, pid int32) (string, error) {
	details, err := GetProcessDetails(ctx, pid, c.opts)
	if err != nil {
		return "", err
	}
	entries, err := c.Ledger()
	if err != nil {
		return details, nil
	}
	for _, e := range entries {
		if e.Pid == pid {
			details += fmt.Sprintf("Suspended: since %s (depth %d)\n", e.SuspendedAt.Format(time.DateTime), e.Depth)
			break
		}
	}
	return details, nil
}

// Ledger returns the current ledger entries.
func (c *Controller) Ledger() ([]LedgerEntry, error) {
	var entries []LedgerEntry
	err := c.withLedger(func(l *Ledger) bool {
		entries = l.Entries()
		return false
	})
	return entries, err
}

// call opens pid, runs the gateway function fn on its handle and turns a
// rejected request into a ControlError.
func (c *Controller) call(op string, pid int32, fn func(suspend.Handle) suspend.Status) error {
	t, err := c.openFn(pid)
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Int32("pid", pid).Msg("open failed")
		return err
	}
	defer t.Close()

	st := fn(t.Handle())
	if !st.OK() {
		cerr := &ControlError{Op: op, Pid: pid, Status: st}
		c.log.Warn().Err(cerr).Str("op", op).Int32("pid", pid).Uint32("status", uint32(st)).Msg("request rejected")
		return cerr
	}
	return nil
}

// withLedger loads the ledger, runs fn and saves when fn reports a change.
// The whole cycle runs under the ledger file lock, so concurrent gofreeze
// invocations do not lose each other's updates.
func (c *Controller) withLedger(fn func(l *Ledger) bool) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	unlock, err := lockLedger(c.ledgerPath)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, unlock()) }()

	l, err := LoadLedger(c.ledgerPath)
	if err != nil {
		return err
	}
	if !fn(l) {
		return nil
	}
	return l.Save()
}

// markSuspended flags items recorded in the ledger. The create time must
// match so a recycled pid is not shown as paused.
func markSuspended(items []*Item, entries []LedgerEntry) {
	if len(entries) == 0 {
		return
	}
	byPid := make(map[int32]LedgerEntry, len(entries))
	for _, e := range entries {
		byPid[e.Pid] = e
	}
	for _, it := range items {
		if it.CreateTime <= 0 {
			continue
		}
		if e, ok := byPid[it.Pid]; ok && e.CreateTime == it.CreateTime {
			it.Status = Paused
		}
	}
}
