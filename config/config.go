// Package config holds the simulator settings. Values come from defaults,
// then an optional .env file, then SCHEDSIM_* environment variables. Command
// line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sarchlab/cpusched/datarecording"
	"github.com/sarchlab/cpusched/engine"
	"github.com/sarchlab/cpusched/logging"
	"github.com/sarchlab/cpusched/sched"
)

// DefaultEnvFile is read when no env file is named. It may be missing.
const DefaultEnvFile = ".env"

// ErrInvalidValue is returned for settings that cannot be parsed.
var ErrInvalidValue = errors.New("invalid configuration value")

// Config is the full set of simulator settings.
type Config struct {
	Algorithm    string
	Quantum      int
	Units        int
	MaxUnits     int
	SRTFEviction bool
	Interval     time.Duration
	MaxTicks     int

	Addr string

	LogLevel  string
	LogFormat string

	Recorder datarecording.RecorderConfig
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Algorithm:    string(sched.DefaultAlgorithm),
		Quantum:      sched.DefaultQuantum,
		Units:        sched.DefaultUnitCount,
		MaxUnits:     engine.DefaultMaxUnits,
		SRTFEviction: true,
		Interval:     engine.DefaultInterval,
		MaxTicks:     100000,
		Addr:         "localhost:0",
		LogLevel:     "info",
		LogFormat:    logging.FormatText,
		Recorder: datarecording.RecorderConfig{
			Type:      datarecording.BackendSQLite,
			BatchSize: datarecording.DefaultBatchSize,
		},
	}
}

// Load builds the settings from the defaults, the env file and the process
// environment. The process environment wins over the file. An empty
// envFile reads DefaultEnvFile if it exists.
func Load(envFile string) (Config, error) {
	file, err := readEnvFile(envFile)
	if err != nil {
		return Config{}, err
	}

	c := Default()

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}

		v, ok := file[key]

		return v, ok
	}

	if err := c.apply(lookup); err != nil {
		return Config{}, err
	}

	return c, c.Validate()
}

func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil, nil
		}

		path = DefaultEnvFile
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}

	return env, nil
}

func (c *Config) apply(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}

		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
		}

		*dst = n

		return nil
	}

	str("SCHEDSIM_ALGORITHM", &c.Algorithm)
	str("SCHEDSIM_ADDR", &c.Addr)
	str("SCHEDSIM_LOG_LEVEL", &c.LogLevel)
	str("SCHEDSIM_LOG_FORMAT", &c.LogFormat)
	str("SCHEDSIM_RECORDER", &c.Recorder.Type)
	str("SCHEDSIM_RECORD_PATH", &c.Recorder.Path)
	str("SCHEDSIM_CLICKHOUSE_DSN", &c.Recorder.DSN)

	for key, dst := range map[string]*int{
		"SCHEDSIM_QUANTUM":    &c.Quantum,
		"SCHEDSIM_UNITS":      &c.Units,
		"SCHEDSIM_MAX_UNITS":  &c.MaxUnits,
		"SCHEDSIM_MAX_TICKS":  &c.MaxTicks,
		"SCHEDSIM_BATCH_SIZE": &c.Recorder.BatchSize,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup("SCHEDSIM_SRTF_EVICTION"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: SCHEDSIM_SRTF_EVICTION=%q", ErrInvalidValue, v)
		}

		c.SRTFEviction = b
	}

	if v, ok := lookup("SCHEDSIM_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: SCHEDSIM_INTERVAL=%q", ErrInvalidValue, v)
		}

		c.Interval = d
	}

	return nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if _, err := sched.ParseAlgorithm(c.Algorithm); err != nil {
		return err
	}

	if c.Quantum < 1 {
		return fmt.Errorf("%w: quantum %d", ErrInvalidValue, c.Quantum)
	}

	if c.MaxUnits < 1 || c.Units < 1 || c.Units > c.MaxUnits {
		return fmt.Errorf("%w: units %d not in 1..%d",
			ErrInvalidValue, c.Units, c.MaxUnits)
	}

	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval %s", ErrInvalidValue, c.Interval)
	}

	if c.MaxTicks < 1 {
		return fmt.Errorf("%w: max ticks %d", ErrInvalidValue, c.MaxTicks)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return err
	}

	return nil
}

// Logger creates the logger the settings describe.
func (c Config) Logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return nil, err
	}

	return logging.NewLogger(level, format), nil
}

// EngineOptions converts the settings into simulator options.
func (c Config) EngineOptions(logger *slog.Logger) (engine.Options, error) {
	alg, err := sched.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return engine.Options{}, err
	}

	return engine.Options{
		Algorithm:        alg,
		Quantum:          c.Quantum,
		Units:            c.Units,
		DispatchOnlySRTF: !c.SRTFEviction,
		MaxUnits:         c.MaxUnits,
		Interval:         c.Interval,
		Logger:           logger,
	}, nil
}
