// Package tracker drives the logging cycle: wait for a fix, format it,
// buffer it, and flush the buffer to the session file when the sample
// threshold is reached or the buffer overflows. Everything runs on one
// goroutine; the only suspension point is the bounded wait for the next fix.
package tracker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fixlog/fixlog/internal/pkg/buffer"
	"github.com/fixlog/fixlog/internal/pkg/gnss"
	"github.com/fixlog/fixlog/internal/pkg/log"
	"github.com/fixlog/fixlog/internal/pkg/rotator"
	"github.com/fixlog/fixlog/internal/pkg/stats"
)

// Tracker owns the sample buffer and the session's rotator for the lifetime
// of the process. Nothing else mutates them.
type Tracker struct {
	source    gnss.Source
	buf       *buffer.SampleBuffer
	rot       *rotator.Rotator
	threshold int
	interval  time.Duration
}

// New wires a tracker from its collaborators.
func New(source gnss.Source, buf *buffer.SampleBuffer, rot *rotator.Rotator, threshold int, interval time.Duration) *Tracker {
	return &Tracker{
		source:    source,
		buf:       buf,
		rot:       rot,
		threshold: threshold,
		interval:  interval,
	}
}

// Run loops until ctx is cancelled. No failure inside the loop is fatal:
// overflows force an emergency flush, write errors raise the error
// indicator and leave the buffer intact so the data rides along to the next
// attempt.
func (t *Tracker) Run(ctx context.Context) {
	log.Info().WithFields(logrus.Fields{
		"file":      t.rot.FileName(),
		"threshold": t.threshold,
		"interval":  t.interval.String(),
	}).Info("tracker started")

	for {
		select {
		case <-ctx.Done():
			t.drain()
			return
		default:
		}

		// A timeout here is not an error, the receiver just had nothing
		// for us this interval.
		fix, ok := t.source.WaitForFix(ctx, t.interval)

		forced := false
		var retry []byte

		if ok {
			line := fix.Line()
			if err := t.buf.Append(line); err != nil {
				// The buffer is untouched. Force a flush and retry
				// this sample afterwards instead of dropping it.
				log.Warning().WithFields(logrus.Fields{
					"fill":   t.buf.Len(),
					"sample": len(line),
				}).Warn("sample buffer overflow, forcing flush")
				stats.IncOverflows()
				stats.SetErrorState(true)
				forced = true
				retry = line
			} else {
				stats.IncSamplesBuffered()
				stats.SetBufferFill(t.buf.Len())
			}
		}

		if !forced && !t.buf.ThresholdReached(t.threshold) {
			continue
		}

		n, err := t.rot.FlushIfDue(t.buf, true)
		if err != nil {
			// Keep the buffer: its contents get re-sent on the next
			// flush attempt. The sample that caused an overflow still
			// has nowhere to go, though.
			log.Error().WithFields(logrus.Fields{
				"file": t.rot.FileName(),
				"err":  err.Error(),
			}).Error("flush failed, keeping buffer for next attempt")
			stats.IncFlushErrors()
			stats.SetErrorState(true)
			if retry != nil {
				stats.IncSamplesDropped()
			}
			continue
		}

		t.buf.Reset()
		stats.IncFlushes(uint64(n))
		stats.SetBufferFill(0)
		stats.SetErrorState(false)

		if retry != nil {
			if err := t.buf.Append(retry); err != nil {
				// Larger than the whole buffer; nothing will ever fit it.
				log.Error().WithFields(logrus.Fields{
					"sample": len(retry),
					"cap":    t.buf.Cap(),
				}).Error("sample larger than buffer, dropped")
				stats.IncSamplesDropped()
			} else {
				stats.IncSamplesBuffered()
				stats.SetBufferFill(t.buf.Len())
			}
		}
	}
}

// drain performs the best-effort final flush on shutdown.
func (t *Tracker) drain() {
	n, err := t.rot.FlushIfDue(t.buf, true)
	if err != nil {
		log.Error().WithFields(logrus.Fields{
			"err": err.Error(),
		}).Error("final flush failed, buffered samples lost")
		stats.IncFlushErrors()
		return
	}

	t.buf.Reset()
	if n > 0 {
		stats.IncFlushes(uint64(n))
	}
	stats.SetBufferFill(0)

	log.Info().WithFields(logrus.Fields{
		"file":  t.rot.FileName(),
		"bytes": n,
	}).Info("tracker stopped")
}
