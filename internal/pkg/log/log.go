// Package log provides the process-wide loggers: JSON-formatted logrus
// loggers split per level, each backed by a rotating file under the log
// directory, mirrored to stdout unless live stats own the terminal, and
// optionally shipped to Elasticsearch.
package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/internetarchive/elogrus"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/olivere/elastic/v7"
	"github.com/sirupsen/logrus"
)

// Config holds the logging setup derived from the main configuration.
type Config struct {
	Dir            string
	Level          logrus.Level
	Stdout         bool
	RotationPeriod time.Duration
	ESURLs         []string
	ESIndexPrefix  string
}

var (
	once       sync.Once
	logInfo    = logrus.New()
	logWarning = logrus.New()
	logError   = logrus.New()
)

// Start initializes the three loggers. Before Start is called the package
// falls back to plain stdout logging, which keeps tests and the file shell
// usable without a log directory.
func Start(cfg *Config) error {
	var err error

	once.Do(func() {
		logInfo.SetFormatter(&logrus.JSONFormatter{})
		logWarning.SetFormatter(&logrus.JSONFormatter{})
		logError.SetFormatter(&logrus.JSONFormatter{})

		logInfo.SetLevel(cfg.Level)
		logWarning.SetLevel(cfg.Level)
		logError.SetLevel(cfg.Level)

		if err = os.MkdirAll(cfg.Dir, os.ModePerm); err != nil {
			err = fmt.Errorf("create logs directory: %w", err)
			return
		}

		rotation := cfg.RotationPeriod
		if rotation <= 0 {
			rotation = 6 * time.Hour
		}

		for _, l := range []struct {
			logger *logrus.Logger
			name   string
		}{
			{logInfo, "fixlog_info"},
			{logWarning, "fixlog_warning"},
			{logError, "fixlog_error"},
		} {
			var writer *rotatelogs.RotateLogs
			writer, err = rotatelogs.New(
				fmt.Sprintf("%s_%s.log", path.Join(cfg.Dir, l.name), "%Y%m%d%H%M%S"),
				rotatelogs.WithRotationTime(rotation),
			)
			if err != nil {
				err = fmt.Errorf("initialize %s log file: %w", l.name, err)
				return
			}

			if cfg.Stdout {
				l.logger.SetOutput(io.MultiWriter(writer, os.Stdout))
			} else {
				l.logger.SetOutput(writer)
			}
		}

		if len(cfg.ESURLs) > 0 {
			err = addElasticHooks(cfg)
		}
	})

	return err
}

// addElasticHooks wires async Elasticsearch shipping onto the loggers, one
// hook per level, indexed per day.
func addElasticHooks(cfg *Config) error {
	client, err := elastic.NewClient(elastic.SetURL(cfg.ESURLs...), elastic.SetSniff(false))
	if err != nil {
		return fmt.Errorf("create Elasticsearch client: %w", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		return err
	}

	prefix := cfg.ESIndexPrefix
	if prefix == "" {
		prefix = "fixlog"
	}
	index := strings.TrimSuffix(prefix, "-") + "-" + time.Now().Format("2006.01.02")

	for _, h := range []struct {
		logger *logrus.Logger
		level  logrus.Level
	}{
		{logInfo, logrus.InfoLevel},
		{logWarning, logrus.WarnLevel},
		{logError, logrus.ErrorLevel},
	} {
		hook, err := elogrus.NewAsyncElasticHook(client, hostname, h.level, index)
		if err != nil {
			return fmt.Errorf("create Elasticsearch hook: %w", err)
		}
		h.logger.Hooks.Add(hook)
	}

	return nil
}

// Info returns the info-level logger.
func Info() *logrus.Logger {
	return logInfo
}

// Warning returns the warning-level logger.
func Warning() *logrus.Logger {
	return logWarning
}

// Error returns the error-level logger.
func Error() *logrus.Logger {
	return logError
}
