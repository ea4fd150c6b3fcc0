package gnss

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineFormat(t *testing.T) {
	fix := Fix{
		Time:       time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC),
		Latitude:   52.520008,
		Longitude:  13.404954,
		Altitude:   34.25,
		Speed:      1.389,
		Track:      87.6,
		Satellites: 9,
	}

	line := string(fix.Line())
	assert.Equal(t, "2024-06-01T12:30:45Z,52.520008,13.404954,34.2,1.39,87.6,9\n", line)
	assert.True(t, strings.HasSuffix(line, string(LineTerminator)))
}

func TestSimulatorDeliversFixes(t *testing.T) {
	s := NewSimulator(time.Millisecond)
	defer s.Close()

	_, seen := s.LastFix()
	assert.False(t, seen)

	fix, ok := s.WaitForFix(context.Background(), 50*time.Millisecond)
	require.True(t, ok)
	assert.InDelta(t, 52.52, fix.Latitude, 0.01)

	last, seen := s.LastFix()
	require.True(t, seen)
	assert.Equal(t, fix, last)
}

func TestSimulatorTimesOutWhenCadenceExceedsInterval(t *testing.T) {
	s := NewSimulator(time.Second)
	defer s.Close()

	_, ok := s.WaitForFix(context.Background(), 10*time.Millisecond)
	assert.False(t, ok)
}

func TestSimulatorStopsOnCancel(t *testing.T) {
	s := NewSimulator(time.Minute)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := s.WaitForFix(ctx, time.Minute)
	assert.False(t, ok)
}
