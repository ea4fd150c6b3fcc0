package gnss

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fixlog/fixlog/internal/pkg/log"
)

// gpsd TPV report, see https://gpsd.gitlab.io/gpsd/gpsd_json.html. Only the
// fields the track record needs are decoded.
type tpvReport struct {
	Class string    `json:"class"`
	Mode  int       `json:"mode"`
	Time  time.Time `json:"time"`
	Lat   float64   `json:"lat"`
	Lon   float64   `json:"lon"`
	Alt   float64   `json:"altMSL"`
	Speed float64   `json:"speed"`
	Track float64   `json:"track"`
}

type skyReport struct {
	Class      string `json:"class"`
	Satellites []struct {
		Used bool `json:"used"`
	} `json:"satellites"`
}

const gpsdWatchCommand = `?WATCH={"enable":true,"json":true}` + "\n"

// GPSDSource reads fixes from a gpsd daemon over its JSON socket protocol.
// A reader goroutine feeds decoded TPV reports into a channel the tracker
// drains; the channel holds a single fix and the reader drops stale ones so
// the loop always gets the freshest report.
type GPSDSource struct {
	conn  net.Conn
	fixes chan Fix
	done  chan struct{}

	mu   sync.Mutex
	last Fix
	seen bool
	sats int
}

// NewGPSDSource dials gpsd at address (host:port) and starts watching.
func NewGPSDSource(address string) (*GPSDSource, error) {
	conn, err := net.DialTimeout("tcp", address, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dial gpsd: %w", err)
	}

	if _, err := conn.Write([]byte(gpsdWatchCommand)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable gpsd watch: %w", err)
	}

	s := &GPSDSource{
		conn:  conn,
		fixes: make(chan Fix, 1),
		done:  make(chan struct{}),
	}

	go s.read()

	return s, nil
}

func (s *GPSDSource) read() {
	defer close(s.done)

	scanner := bufio.NewScanner(s.conn)
	for scanner.Scan() {
		var probe struct {
			Class string `json:"class"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &probe); err != nil {
			continue
		}

		switch probe.Class {
		case "SKY":
			var sky skyReport
			if err := json.Unmarshal(scanner.Bytes(), &sky); err != nil {
				continue
			}
			used := 0
			for _, sat := range sky.Satellites {
				if sat.Used {
					used++
				}
			}
			s.mu.Lock()
			s.sats = used
			s.mu.Unlock()
		case "TPV":
			var tpv tpvReport
			if err := json.Unmarshal(scanner.Bytes(), &tpv); err != nil {
				continue
			}
			// Mode 2 is a 2D fix, mode 3 a 3D fix. Anything below
			// means gpsd has no position yet.
			if tpv.Mode < 2 {
				continue
			}

			s.mu.Lock()
			fix := Fix{
				Time:       tpv.Time,
				Latitude:   tpv.Lat,
				Longitude:  tpv.Lon,
				Altitude:   tpv.Alt,
				Speed:      tpv.Speed,
				Track:      tpv.Track,
				Satellites: s.sats,
			}
			s.last = fix
			s.seen = true
			s.mu.Unlock()

			// Drop the stale fix if the loop hasn't picked it up yet.
			select {
			case s.fixes <- fix:
			default:
				select {
				case <-s.fixes:
				default:
				}
				s.fixes <- fix
			}
		}
	}

	if err := scanner.Err(); err != nil {
		log.Error().WithFields(logrus.Fields{"err": err.Error()}).Error("gpsd connection lost")
	}
}

// WaitForFix implements Source.
func (s *GPSDSource) WaitForFix(ctx context.Context, timeout time.Duration) (Fix, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case fix := <-s.fixes:
		return fix, true
	case <-timer.C:
		return Fix{}, false
	case <-ctx.Done():
		return Fix{}, false
	}
}

// LastFix implements Source.
func (s *GPSDSource) LastFix() (Fix, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.seen
}

// Close tears down the gpsd connection and waits for the reader to exit.
func (s *GPSDSource) Close() error {
	err := s.conn.Close()
	<-s.done
	return err
}
