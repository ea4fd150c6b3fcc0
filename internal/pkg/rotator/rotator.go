// Package rotator appends buffered samples to the current session file. The
// file name is derived once from the session index and the file is only ever
// opened for append, never truncated.
package rotator

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/zeebo/xxh3"

	"github.com/fixlog/fixlog/internal/pkg/buffer"
	"github.com/fixlog/fixlog/internal/pkg/log"
)

// FileNameFormat is the template for session file names, parameterized by
// the zero-padded session index. Indexes are monotonic across the device's
// lifetime so names are never reused.
const FileNameFormat = "track-%05d.csv"

// ErrShortWrite is returned when storage reports fewer bytes written than
// requested. The caller must keep the buffer intact so the next flush
// attempt re-sends the same data.
var ErrShortWrite = errors.New("short write to session file")

// ParseFileName extracts the session index from a file name produced by
// FileNameFormat. The second return value is false for anything else.
func ParseFileName(name string) (uint64, bool) {
	rest, found := strings.CutPrefix(name, "track-")
	if !found {
		return 0, false
	}
	digits, found := strings.CutSuffix(rest, ".csv")
	if !found || len(digits) < 5 {
		return 0, false
	}
	index, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return index, true
}

// Rotator owns the destination file of one logging session.
type Rotator struct {
	fs       afero.Fs
	dir      string
	fileName string
}

// New returns a rotator writing to the session file for index under dir.
func New(fs afero.Fs, dir string, index uint64) *Rotator {
	return &Rotator{
		fs:       fs,
		dir:      dir,
		fileName: fmt.Sprintf(FileNameFormat, index),
	}
}

// FileName returns the session file name without the directory.
func (r *Rotator) FileName() string {
	return r.fileName
}

// Path returns the full path of the session file.
func (r *Rotator) Path() string {
	return path.Join(r.dir, r.fileName)
}

// FlushIfDue appends the buffer's contents to the session file when due
// holds and returns the number of bytes written. When due is false, or the
// buffer is empty, nothing is written. On success the caller is expected to
// reset the buffer; on error the buffer must be left alone.
func (r *Rotator) FlushIfDue(buf *buffer.SampleBuffer, due bool) (int, error) {
	if !due {
		return 0, nil
	}

	snapshot := buf.Snapshot()
	if len(snapshot) == 0 {
		return 0, nil
	}

	if err := r.fs.MkdirAll(r.dir, os.ModePerm); err != nil {
		return 0, fmt.Errorf("create data directory: %w", err)
	}

	f, err := r.fs.OpenFile(r.Path(), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return 0, fmt.Errorf("open session file for append: %w", err)
	}

	n, err := f.Write(snapshot)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, fmt.Errorf("append to session file: %w", err)
	}
	if n != len(snapshot) {
		return n, fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(snapshot))
	}

	log.Info().WithFields(logrus.Fields{
		"file":    r.fileName,
		"bytes":   n,
		"samples": buf.SampleCount(),
		"digest":  fmt.Sprintf("%016x", xxh3.Hash(snapshot)),
	}).Debug("flushed sample buffer")

	return n, nil
}
