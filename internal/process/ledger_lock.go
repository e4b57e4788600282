package process

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// lockLedger takes an exclusive advisory lock shared by every gofreeze
// process using the ledger at path. The lock lives in a sidecar file
// because Save replaces the ledger file itself.
func lockLedger(path string) (unlock func() error, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	f, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open ledger lock: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock ledger: %w", err)
	}
	return func() error {
		return errors.Join(unlockFile(f), f.Close())
	}, nil
}
