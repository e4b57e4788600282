package process

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const ledgerFileName = "gofreeze_ledger.json"

// LedgerEntry remembers one process gofreeze suspended.
type LedgerEntry struct {
	Pid        int32  `json:"pid"`
	Executable string `json:"executable"`
	// CreateTime (ms since epoch) tells a recycled pid apart from the
	// process that was actually suspended.
	CreateTime int64 `json:"create_time"`
	// Depth counts outstanding suspensions. It only exceeds 1 where the
	// OS nests suspend requests.
	Depth       int       `json:"depth"`
	SuspendedAt time.Time `json:"suspended_at"`
}

// Ledger is the on-disk record of suspended processes. It is not safe for
// concurrent use; Controller serializes access with a mutex and, across
// gofreeze processes, an advisory lock on a sidecar ".lock" file.
type Ledger struct {
	path    string
	entries map[int32]*LedgerEntry
}

// DefaultLedgerPath places the ledger in the user's cache directory, e.g.
// ~/.cache/gofreeze_ledger.json on Linux.
func DefaultLedgerPath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, ledgerFileName), nil
}

// LoadLedger reads the ledger at path. A missing file is an empty ledger;
// a file that does not parse is an error.
func LoadLedger(path string) (*Ledger, error) {
	l := &Ledger{path: path, entries: make(map[int32]*LedgerEntry)}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	var list []LedgerEntry
	if err := json.NewDecoder(f).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode ledger %s: %w", path, err)
	}
	for i := range list {
		e := list[i]
		if e.Pid <= 0 || e.Depth <= 0 || e.CreateTime <= 0 {
			continue
		}
		l.entries[e.Pid] = &e
	}
	return l, nil
}

// Save writes the ledger through a temporary file so a crash never leaves
// a half-written ledger behind.
func (l *Ledger) Save() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".gofreeze-ledger-*")
	if err != nil {
		return fmt.Errorf("create ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l.Entries()); err != nil {
		tmp.Close()
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// Path returns the file backing the ledger.
func (l *Ledger) Path() string { return l.path }

// Record notes a successful suspension and returns the resulting entry.
// With nests set, suspending a process already in the ledger deepens it;
// otherwise the depth stays at 1.
func (l *Ledger) Record(pid int32, executable string, createTime int64, nests bool, now time.Time) LedgerEntry {
	e, ok := l.entries[pid]
	if !ok || e.CreateTime != createTime {
		e = &LedgerEntry{Pid: pid, Executable: executable, CreateTime: createTime, SuspendedAt: now}
		l.entries[pid] = e
	}
	if nests || e.Depth == 0 {
		e.Depth++
	}
	if executable != "" {
		e.Executable = executable
	}
	return *e
}

// Release notes a successful resume and returns the suspensions still
// outstanding. An entry for a different process incarnation is dropped.
func (l *Ledger) Release(pid int32, createTime int64, nests bool) int {
	e, ok := l.entries[pid]
	if !ok {
		return 0
	}
	if e.CreateTime != createTime || !nests {
		delete(l.entries, pid)
		return 0
	}
	e.Depth--
	if e.Depth <= 0 {
		delete(l.entries, pid)
		return 0
	}
	return e.Depth
}

// Forget drops pid regardless of depth, e.g. after the process was killed.
func (l *Ledger) Forget(pid int32) {
	delete(l.entries, pid)
}

// Lookup returns the entry for pid, if any.
func (l *Ledger) Lookup(pid int32) (LedgerEntry, bool) {
	e, ok := l.entries[pid]
	if !ok {
		return LedgerEntry{}, false
	}
	return *e, true
}

// Entries returns a copy of all entries sorted by pid.
func (l *Ledger) Entries() []LedgerEntry {
	out := make([]LedgerEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pid < out[j].Pid })
	return out
}

// Prune removes every entry for which alive returns false and returns the
// removed entries.
func (l *Ledger) Prune(alive func(LedgerEntry) bool) []LedgerEntry {
	var removed []LedgerEntry
	for _, e := range l.Entries() {
		if !alive(e) {
			delete(l.entries, e.Pid)
			removed = append(removed, e)
		}
	}
	return removed
}
