// Package api exposes the status of a running logger over HTTP: a JSON
// snapshot of the stats on /status and, when enabled, Prometheus metrics on
// /metrics.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/fixlog/fixlog/internal/pkg/log"
	"github.com/fixlog/fixlog/internal/pkg/stats"
)

// Server is the status API listener.
type Server struct {
	srv *http.Server
}

// Start launches the listener on the given port. Serving happens on its own
// goroutine; the tracker loop is never blocked by a slow scrape.
func Start(port string, prometheus bool) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", statusHandler)
	if prometheus {
		mux.Handle("/metrics", promhttp.Handler())
	}

	s := &Server{
		srv: &http.Server{
			Addr:    ":" + port,
			Handler: mux,
		},
	}

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().WithFields(logrus.Fields{
				"err": err.Error(),
			}).Error("status API listener failed")
		}
	}()

	log.Info().WithFields(logrus.Fields{
		"port": port,
	}).Info("status API started")

	return s
}

// Stop shuts the listener down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		log.Error().WithFields(logrus.Fields{
			"err": err.Error(),
		}).Error("status API shutdown failed")
	}
}

func statusHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats.GetMap())
}
