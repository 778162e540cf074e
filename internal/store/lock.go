package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockRetryInterval = 50 * time.Millisecond
	lockTimeout       = 10 * time.Second
)

// LockTemplate takes an exclusive cross-process lock on one template's draft. Hold it for a
// whole load-edit-save cycle; the returned func releases it.
func (s Store) LockTemplate(ctx context.Context, id int64) (func() error, error) {
	dir := filepath.Join(s.Dir, "locks")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	fl := flock.New(filepath.Join(dir, fmt.Sprintf("template-%d.lock", id)))
	ok, err := fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("lock template %d: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock template %d: not acquired", id)
	}
	return fl.Unlock, nil
}
