// Package counter persists the session index across power cycles. The index
// lives in a small file holding a fixed-width decimal integer; each run reads
// it once at startup to claim its index and writes back the index the next
// run should use.
package counter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// recordWidth is the number of decimal digits in the on-storage record.
// Zero-padded, no trailing newline.
const recordWidth = 5

// PersistentCounter reads and rewrites the session index record.
type PersistentCounter struct {
	fs   afero.Fs
	path string
}

// New returns a counter backed by the record at path on fs.
func New(fs afero.Fs, path string) *PersistentCounter {
	return &PersistentCounter{fs: fs, path: path}
}

// Next returns the index the current session should use. A missing record
// means the device has never logged and yields index 1 with no error. An
// unreadable or garbled record also falls back to 1, but the error is
// returned so the caller can surface it.
func (c *PersistentCounter) Next() (uint64, error) {
	exists, err := afero.Exists(c.fs, c.path)
	if err != nil {
		return 1, fmt.Errorf("stat counter record: %w", err)
	}
	if !exists {
		return 1, nil
	}

	raw, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		return 1, fmt.Errorf("read counter record: %w", err)
	}

	n, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 1, fmt.Errorf("parse counter record %q: %w", raw, err)
	}
	if n == 0 {
		return 1, fmt.Errorf("counter record %q holds no valid index", raw)
	}

	return n, nil
}

// Commit replaces the record with next. The old record is removed before the
// new one is written; a power loss between the two steps loses the counter
// and the following boot starts over at index 1. Known non-atomicity, kept
// to preserve the on-storage layout.
func (c *PersistentCounter) Commit(next uint64) error {
	if exists, _ := afero.Exists(c.fs, c.path); exists {
		if err := c.fs.Remove(c.path); err != nil {
			return fmt.Errorf("remove counter record: %w", err)
		}
	}

	record := fmt.Sprintf("%0*d", recordWidth, next)
	if err := afero.WriteFile(c.fs, c.path, []byte(record), 0644); err != nil {
		return fmt.Errorf("write counter record: %w", err)
	}

	return nil
}
