// Package gnss acquires position fixes. The tracker only needs two things
// from a source: a blocking wait for the next fix with a timeout, and the
// last fix seen. Two sources are provided, a gpsd client and a deterministic
// simulator.
package gnss

import (
	"context"
	"fmt"
	"time"
)

// Fix is one position report.
type Fix struct {
	Time       time.Time
	Latitude   float64
	Longitude  float64
	Altitude   float64 // meters
	Speed      float64 // m/s
	Track      float64 // course over ground, degrees
	Satellites int
}

// LineTerminator ends every formatted track line.
const LineTerminator = '\n'

// Line renders the fix as one CSV track record, terminated by
// LineTerminator.
func (f Fix) Line() []byte {
	return []byte(fmt.Sprintf("%s,%.6f,%.6f,%.1f,%.2f,%.1f,%d%c",
		f.Time.UTC().Format(time.RFC3339),
		f.Latitude, f.Longitude, f.Altitude,
		f.Speed, f.Track, f.Satellites,
		LineTerminator))
}

// Source delivers fixes to the tracker loop.
type Source interface {
	// WaitForFix blocks until the next fix arrives, the timeout elapses,
	// or ctx is cancelled. The second return value reports whether a fix
	// was delivered; a timeout is not an error, the loop simply comes
	// around again.
	WaitForFix(ctx context.Context, timeout time.Duration) (Fix, bool)

	// LastFix returns the most recent fix seen, if any.
	LastFix() (Fix, bool)

	Close() error
}
