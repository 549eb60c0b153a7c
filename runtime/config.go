package runtime

import (
	"bytes"
	"io"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/value-runtime/alloc"
	"github.com/wippyai/value-runtime/errors"
)

// Backend names accepted in Config.Backend.
const (
	BackendHeap   = "heap"
	BackendLinear = "linear"
)

// Config describes a session. It is usually loaded from YAML:
//
//	backend: linear
//	policy: propagate
//	log_level: debug
//	linear:
//	  initial_pages: 1
//	  max_pages: 16
type Config struct {
	// Backend selects the allocator backend: "heap" or "linear".
	Backend string `yaml:"backend"`
	// Policy is the exhaustion policy: "abort" or "propagate".
	Policy string `yaml:"policy"`
	// HeapLimit caps the bytes live in the heap backend. Zero means no cap.
	HeapLimit int64 `yaml:"heap_limit"`
	// Linear sizes the linear backend's memory.
	Linear alloc.LinearConfig `yaml:"linear"`
	// LogLevel is a zap level name.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Backend:  BackendHeap,
		Policy:   alloc.PolicyAbort.String(),
		LogLevel: "warn",
	}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep their
// DefaultConfig values and unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read config "+path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config data over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field without creating anything.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendHeap, BackendLinear:
	default:
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(c.Backend).
			Detail("unknown backend %q, want %q or %q", c.Backend, BackendHeap, BackendLinear).
			Build()
	}

	if _, err := alloc.ParsePolicy(c.Policy); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "policy")
	}

	if c.HeapLimit < 0 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(c.HeapLimit).
			Detail("negative heap limit %d", c.HeapLimit).
			Build()
	}

	if c.Linear.MaxPages != 0 && c.Linear.InitialPages > c.Linear.MaxPages {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("linear initial_pages %d exceeds max_pages %d", c.Linear.InitialPages, c.Linear.MaxPages).
			Build()
	}

	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. An empty level means warn.
func (c Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.WarnLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log level")
	}
	return lvl, nil
}
