package tracker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fixlog/fixlog/internal/pkg/buffer"
	"github.com/fixlog/fixlog/internal/pkg/gnss"
	"github.com/fixlog/fixlog/internal/pkg/rotator"
	"github.com/fixlog/fixlog/internal/pkg/stats"
)

func TestMain(m *testing.M) {
	stats.Init()
	goleak.VerifyTestMain(m)
}

// scriptedSource hands out a fixed set of fixes, then times out forever.
type scriptedSource struct {
	fixes []gnss.Fix
	next  int
}

func (s *scriptedSource) WaitForFix(ctx context.Context, timeout time.Duration) (gnss.Fix, bool) {
	if s.next < len(s.fixes) {
		fix := s.fixes[s.next]
		s.next++
		return fix, true
	}

	select {
	case <-time.After(timeout):
	case <-ctx.Done():
	}
	return gnss.Fix{}, false
}

func (s *scriptedSource) LastFix() (gnss.Fix, bool) {
	if s.next == 0 {
		return gnss.Fix{}, false
	}
	return s.fixes[s.next-1], true
}

func (s *scriptedSource) Close() error { return nil }

func makeFixes(n int) []gnss.Fix {
	fixes := make([]gnss.Fix, n)
	for i := range fixes {
		fixes[i] = gnss.Fix{
			Time:       time.Date(2024, 6, 1, 12, 0, i, 0, time.UTC),
			Latitude:   52.52 + float64(i)*0.0001,
			Longitude:  13.40,
			Altitude:   34,
			Speed:      1.4,
			Track:      90,
			Satellites: 8,
		}
	}
	return fixes
}

func runTracker(t *testing.T, tr *Tracker, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	tr.Run(ctx)
}

func TestFlushOnThreshold(t *testing.T) {
	appFS := afero.NewMemMapFs()
	fixes := makeFixes(3)

	buf := buffer.NewSampleBuffer(4096)
	rot := rotator.New(appFS, "tracks", 1)
	tr := New(&scriptedSource{fixes: fixes}, buf, rot, 3, time.Millisecond)

	runTracker(t, tr, 50*time.Millisecond)

	content, err := afero.ReadFile(appFS, rot.Path())
	require.NoError(t, err)

	var want strings.Builder
	for _, fix := range fixes {
		want.Write(fix.Line())
	}
	assert.Equal(t, want.String(), string(content))
	assert.Zero(t, buf.Len(), "buffer should be reset after the flush")
}

func TestFinalFlushDrainsBufferOnShutdown(t *testing.T) {
	appFS := afero.NewMemMapFs()
	fixes := makeFixes(2)

	buf := buffer.NewSampleBuffer(4096)
	rot := rotator.New(appFS, "tracks", 1)

	// Threshold higher than the number of samples: only the shutdown
	// drain can write them out.
	tr := New(&scriptedSource{fixes: fixes}, buf, rot, 100, time.Millisecond)
	runTracker(t, tr, 50*time.Millisecond)

	content, err := afero.ReadFile(appFS, rot.Path())
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(content), "\n"))
}

func TestOverflowForcesFlushAndRetriesSample(t *testing.T) {
	appFS := afero.NewMemMapFs()
	fixes := makeFixes(3)
	lineLen := len(fixes[0].Line())

	// Room for two lines but not three, so the third append overflows.
	buf := buffer.NewSampleBuffer(2*lineLen + 1)
	rot := rotator.New(appFS, "tracks", 1)
	tr := New(&scriptedSource{fixes: fixes}, buf, rot, 100, time.Millisecond)

	runTracker(t, tr, 50*time.Millisecond)

	// All three samples must survive: two from the forced flush, the
	// retried one from the shutdown drain.
	content, err := afero.ReadFile(appFS, rot.Path())
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(content), "\n"))

	var want strings.Builder
	for _, fix := range fixes {
		want.Write(fix.Line())
	}
	assert.Equal(t, want.String(), string(content))
}

func TestTimeoutsAreNotErrors(t *testing.T) {
	appFS := afero.NewMemMapFs()

	buf := buffer.NewSampleBuffer(4096)
	rot := rotator.New(appFS, "tracks", 1)
	tr := New(&scriptedSource{}, buf, rot, 3, time.Millisecond)

	runTracker(t, tr, 30*time.Millisecond)

	exists, err := afero.Exists(appFS, rot.Path())
	require.NoError(t, err)
	assert.False(t, exists, "no samples, no session file")
}
