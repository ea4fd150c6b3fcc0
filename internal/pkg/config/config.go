package config

import (
	"fmt"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for our program, parsed from various sources.
// The `mapstructure` tags are used to map the fields to the viper configuration.
type Config struct {
	DataDir string `mapstructure:"data-dir"`
	LogDir  string `mapstructure:"log-dir"`

	// DeviceID tags metrics and logs; defaults to a generated UUID when
	// not provided.
	DeviceID string `mapstructure:"device-id"`

	// Buffering and rotation
	BufferSize     int           `mapstructure:"buffer-size"`
	FlushThreshold int           `mapstructure:"flush-threshold"`
	FixInterval    time.Duration `mapstructure:"fix-interval"`

	// Fix source
	Simulate    bool   `mapstructure:"simulate"`
	GPSDAddress string `mapstructure:"gpsd-address"`

	// Logging
	LogLevel                 string `mapstructure:"log-level"`
	LogRotation              string `mapstructure:"log-rotation"`
	NoStdoutLogging          bool   `mapstructure:"no-stdout-log"`
	LiveStats                bool   `mapstructure:"live-stats"`
	ElasticSearchURLs        string `mapstructure:"es-url"`
	ElasticSearchIndexPrefix string `mapstructure:"es-index-prefix"`

	// API, Prometheus and metrics
	API              bool   `mapstructure:"api"`
	APIPort          string `mapstructure:"api-port"`
	Prometheus       bool   `mapstructure:"prometheus"`
	PrometheusPrefix string `mapstructure:"prometheus-prefix"`

	// CounterPath and LogsPath are derived from DataDir and LogDir.
	CounterPath string
	LogsPath    string
}

var (
	config *Config
	once   sync.Once
)

// InitConfig initializes the configuration.
// Flags -> Env -> Config file
// Latest has precedence over the rest.
func InitConfig() error {
	var err error
	once.Do(func() {
		config = &Config{}

		// Check if a config file is provided via flag
		if configFile := viper.GetString("config"); configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			home, homeErr := os.UserHomeDir()
			if homeErr != nil {
				err = homeErr
				return
			}

			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName("fixlog-config")
		}

		viper.SetEnvPrefix("FIXLOG")
		replacer := strings.NewReplacer("-", "_", ".", "_")
		viper.SetEnvKeyReplacer(replacer)
		viper.AutomaticEnv()

		if readErr := viper.ReadInConfig(); readErr == nil {
			fmt.Println("Using config file:", viper.ConfigFileUsed())
		}

		err = viper.Unmarshal(config)
	})
	return err
}

// BindFlags binds the flags to the viper configuration.
// This is needed because viper doesn't support same flag name accross
// multiple commands. Details here:
// https://github.com/spf13/viper/issues/375#issuecomment-794668149
func BindFlags(flagSet *pflag.FlagSet) {
	flagSet.VisitAll(func(flag *pflag.Flag) {
		viper.BindPFlag(flag.Name, flag)
	})
}

// Get returns the config struct.
func Get() *Config {
	return config
}

// GenerateTrackConfig computes the derived fields and applies the defaults
// that depend on other settings. Called by the track command after flags are
// parsed.
func GenerateTrackConfig() error {
	if config.DeviceID == "" {
		UUID, err := uuid.NewUUID()
		if err != nil {
			return err
		}

		config.DeviceID = UUID.String()
	}

	if config.DataDir == "" {
		config.DataDir = "tracks"
	}

	if config.LogDir == "" {
		config.LogDir = path.Join(config.DataDir, "logs")
	}

	config.CounterPath = path.Join(config.DataDir, "counter.txt")
	config.LogsPath = config.LogDir

	// The live table owns the terminal, logs go to files only.
	if config.LiveStats {
		config.NoStdoutLogging = true
	}

	// Prometheus metrics are served by the API listener.
	if config.Prometheus {
		config.API = true
	}

	if !strings.HasSuffix(config.PrometheusPrefix, "_") && config.PrometheusPrefix != "" {
		config.PrometheusPrefix += "_"
	}

	if config.BufferSize <= 0 {
		return fmt.Errorf("buffer-size must be positive, got %d", config.BufferSize)
	}

	if config.FlushThreshold <= 0 {
		return fmt.Errorf("flush-threshold must be positive, got %d", config.FlushThreshold)
	}

	return nil
}
