package rotator

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixlog/fixlog/internal/pkg/buffer"
)

func newBuffer(t *testing.T, lines ...string) *buffer.SampleBuffer {
	t.Helper()
	b := buffer.NewSampleBuffer(4096)
	for _, l := range lines {
		require.NoError(t, b.Append([]byte(l)))
	}
	return b
}

func TestFileNameDerivedFromIndex(t *testing.T) {
	r := New(afero.NewMemMapFs(), "tracks", 7)
	assert.Equal(t, "track-00007.csv", r.FileName())
	assert.Equal(t, "tracks/track-00007.csv", r.Path())
}

func TestParseFileName(t *testing.T) {
	index, ok := ParseFileName("track-00007.csv")
	require.True(t, ok)
	assert.Equal(t, uint64(7), index)

	for _, name := range []string{"counter.txt", "track-.csv", "track-abc.csv", "track-00007.txt", "track-007.csv"} {
		_, ok := ParseFileName(name)
		assert.False(t, ok, name)
	}
}

func TestFlushSkippedWhenNotDue(t *testing.T) {
	appFS := afero.NewMemMapFs()
	r := New(appFS, "tracks", 1)
	b := newBuffer(t, "line\n")

	n, err := r.FlushIfDue(b, false)
	require.NoError(t, err)
	assert.Zero(t, n)

	exists, err := afero.Exists(appFS, r.Path())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFlushAppendsAndCreatesFile(t *testing.T) {
	appFS := afero.NewMemMapFs()
	r := New(appFS, "tracks", 1)
	b := newBuffer(t, "first\n", "second\n")

	n, err := r.FlushIfDue(b, true)
	require.NoError(t, err)
	assert.Equal(t, len("first\nsecond\n"), n)

	content, err := afero.ReadFile(appFS, r.Path())
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(content))
}

func TestSessionFileGrowsByConcatenationOfFlushes(t *testing.T) {
	appFS := afero.NewMemMapFs()
	r := New(appFS, "tracks", 3)

	var want bytes.Buffer
	b := buffer.NewSampleBuffer(4096)
	for flush := 0; flush < 4; flush++ {
		for s := 0; s < 3; s++ {
			line := strings.Repeat("s", flush+1) + "\n"
			require.NoError(t, b.Append([]byte(line)))
			want.WriteString(line)
		}
		n, err := r.FlushIfDue(b, true)
		require.NoError(t, err)
		require.Equal(t, b.Len(), n)
		b.Reset()
	}

	content, err := afero.ReadFile(appFS, r.Path())
	require.NoError(t, err)
	assert.Equal(t, want.String(), string(content))
}

func TestEmptyBufferFlushWritesNothing(t *testing.T) {
	appFS := afero.NewMemMapFs()
	r := New(appFS, "tracks", 1)

	n, err := r.FlushIfDue(buffer.NewSampleBuffer(64), true)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestShortWriteSurfacesError(t *testing.T) {
	appFS := &shortWriteFs{Fs: afero.NewMemMapFs(), max: 90}
	r := New(appFS, "tracks", 1)
	b := newBuffer(t, strings.Repeat("x", 119)+"\n")

	n, err := r.FlushIfDue(b, true)
	require.ErrorIs(t, err, ErrShortWrite)
	assert.Equal(t, 90, n)

	// The buffer is untouched so the next attempt re-sends everything.
	assert.Equal(t, 120, b.Len())
}

// shortWriteFs caps the number of bytes a single Write can push through,
// modelling storage that reports a partial write.
type shortWriteFs struct {
	afero.Fs
	max int
}

func (s *shortWriteFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := s.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &shortWriteFile{File: f, max: s.max}, nil
}

type shortWriteFile struct {
	afero.File
	max int
}

func (f *shortWriteFile) Write(p []byte) (int, error) {
	if len(p) > f.max {
		p = p[:f.max]
	}
	return f.File.Write(p)
}
