package gnss

import (
	"context"
	"math"
	"sync"
	"time"
)

// Simulator produces a deterministic fix every cadence, walking a small
// circle around a starting position. Used for development without a
// receiver, and by tests.
type Simulator struct {
	cadence time.Duration
	start   Fix

	mu   sync.Mutex
	step int
	last Fix
	seen bool
}

// NewSimulator returns a simulator emitting one fix per cadence.
func NewSimulator(cadence time.Duration) *Simulator {
	return &Simulator{
		cadence: cadence,
		start: Fix{
			Latitude:   52.520008,
			Longitude:  13.404954,
			Altitude:   34.0,
			Satellites: 9,
		},
	}
}

// WaitForFix implements Source. The simulated receiver "delivers" a fix
// after one cadence, or times out like a real one would.
func (s *Simulator) WaitForFix(ctx context.Context, timeout time.Duration) (Fix, bool) {
	wait := s.cadence
	if timeout < wait {
		wait = timeout
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		if s.cadence > timeout {
			return Fix{}, false
		}
	case <-ctx.Done():
		return Fix{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	angle := float64(s.step) * math.Pi / 180
	fix := s.start
	fix.Time = time.Now()
	fix.Latitude += 0.0005 * math.Sin(angle)
	fix.Longitude += 0.0005 * math.Cos(angle)
	fix.Speed = 1.4
	fix.Track = math.Mod(float64(s.step)+90, 360)

	s.step++
	s.last = fix
	s.seen = true

	return fix, true
}

// LastFix implements Source.
func (s *Simulator) LastFix() (Fix, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.seen
}

// Close implements Source.
func (s *Simulator) Close() error {
	return nil
}
