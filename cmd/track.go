package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/fixlog/fixlog/internal/pkg/api"
	"github.com/fixlog/fixlog/internal/pkg/buffer"
	"github.com/fixlog/fixlog/internal/pkg/config"
	"github.com/fixlog/fixlog/internal/pkg/counter"
	"github.com/fixlog/fixlog/internal/pkg/gnss"
	"github.com/fixlog/fixlog/internal/pkg/log"
	"github.com/fixlog/fixlog/internal/pkg/rotator"
	"github.com/fixlog/fixlog/internal/pkg/stats"
	"github.com/fixlog/fixlog/internal/pkg/tracker"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Start logging position fixes",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if cfg == nil {
			return fmt.Errorf("viper config is nil")
		}

		return config.GenerateTrackConfig()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return runTrack()
	},
}

func trackCmdFlags(trackCmd *cobra.Command) {
	trackCmd.PersistentFlags().Int("buffer-size", 8192, "Sample buffer capacity in bytes, one byte is reserved for the line terminator.")
	trackCmd.PersistentFlags().Int("flush-threshold", 60, "Number of buffered samples that triggers a flush to the track file.")
	trackCmd.PersistentFlags().Duration("fix-interval", time.Second, "How long to wait for each fix; also the sampling cadence.")
	trackCmd.PersistentFlags().Bool("simulate", false, "Use the built-in fix simulator instead of a receiver.")
	trackCmd.PersistentFlags().String("gpsd-address", "localhost:2947", "Address of the gpsd daemon to read fixes from.")
	trackCmd.PersistentFlags().Bool("live-stats", false, "Display a live stats table. (implies --no-stdout-log)")
	trackCmd.PersistentFlags().Bool("no-stdout-log", false, "Do not mirror logs to stdout.")
	trackCmd.PersistentFlags().String("log-rotation", "6h", "Rotation period for log files.")
	trackCmd.PersistentFlags().Bool("api", false, "Enable the status API.")
	trackCmd.PersistentFlags().String("api-port", "9443", "Port the status API listens on.")
	trackCmd.PersistentFlags().Bool("prometheus", false, "Export metrics in Prometheus format. (implies --api)")
	trackCmd.PersistentFlags().String("prometheus-prefix", "fixlog", "Prefix for the exported Prometheus metrics.")

	config.BindFlags(trackCmd.PersistentFlags())
}

func runTrack() error {
	rotation, err := time.ParseDuration(cfg.LogRotation)
	if err != nil {
		rotation = 6 * time.Hour
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}

	var esURLs []string
	if cfg.ElasticSearchURLs != "" {
		esURLs = strings.Split(cfg.ElasticSearchURLs, ",")
	}

	err = log.Start(&log.Config{
		Dir:            cfg.LogsPath,
		Level:          level,
		Stdout:         !cfg.NoStdoutLogging,
		RotationPeriod: rotation,
		ESURLs:         esURLs,
		ESIndexPrefix:  cfg.ElasticSearchIndexPrefix,
	})
	if err != nil {
		return fmt.Errorf("error starting logging: %w", err)
	}

	if err := stats.Init(); err != nil {
		return fmt.Errorf("error initializing stats: %w", err)
	}

	appFS := afero.NewOsFs()

	// Claim this session's index and persist the next one right away. A
	// failed commit is worth surfacing but must not stop the logger.
	sessionCounter := counter.New(appFS, cfg.CounterPath)
	index, err := sessionCounter.Next()
	if err != nil {
		log.Warning().WithFields(logrus.Fields{
			"err": err.Error(),
		}).Warn("counter unreadable, starting over at session 1")
	}
	if err := sessionCounter.Commit(index + 1); err != nil {
		log.Error().WithFields(logrus.Fields{
			"err": err.Error(),
		}).Error("counter commit failed, next boot may reuse this session index")
		stats.SetErrorState(true)
	}

	rot := rotator.New(appFS, cfg.DataDir, index)
	stats.SetSession(rot.FileName(), index)

	var source gnss.Source
	if cfg.Simulate {
		source = gnss.NewSimulator(cfg.FixInterval)
	} else {
		source, err = gnss.NewGPSDSource(cfg.GPSDAddress)
		if err != nil {
			return fmt.Errorf("error connecting to gpsd: %w", err)
		}
	}
	defer source.Close()

	if cfg.API {
		server := api.Start(cfg.APIPort, cfg.Prometheus)
		defer server.Stop()
	}

	var printer *stats.Printer
	if cfg.LiveStats {
		printer = stats.NewPrinter()
		go printer.Run()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	buf := buffer.NewSampleBuffer(cfg.BufferSize)
	tracker.New(source, buf, rot, cfg.FlushThreshold, cfg.FixInterval).Run(ctx)

	if printer != nil {
		close(printer.StopChan)
		<-printer.DoneChan
	}

	return nil
}
