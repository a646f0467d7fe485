package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the streamdesk CLI.
type Config struct {
	APIBaseURL string `validate:"required,url"`
	StateFile  string `validate:"required"`

	RequestTimeout  time.Duration `validate:"gte=0"`
	TransferTimeout time.Duration `validate:"gte=0"`

	TranscodeWait         bool
	TranscodePollInterval time.Duration `validate:"gt=0"`
	TranscodeTimeout      time.Duration `validate:"gt=0"`

	SimulatedStep  int           `validate:"gte=1,lte=50"`
	SimulatedDelay time.Duration `validate:"gte=0"`
	Compensate     bool

	CacheTTL time.Duration `validate:"gte=0"`

	LogFormat string `validate:"oneof=text json console"`
	LogLevel  string `validate:"oneof=debug info warn error"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:3000"
	c.StateFile = defaultStateFile()
	c.RequestTimeout = 30 * time.Second
	c.TransferTimeout = 30 * time.Minute
	c.TranscodeWait = true
	c.TranscodePollInterval = 2 * time.Second
	c.TranscodeTimeout = 2 * time.Minute
	c.SimulatedStep = 10
	c.SimulatedDelay = 200 * time.Millisecond
	c.Compensate = true
	c.CacheTTL = time.Minute
	c.LogFormat = "text"
	c.LogLevel = "info"
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "streamdesk.db"
	}
	return filepath.Join(dir, "streamdesk", "state.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
