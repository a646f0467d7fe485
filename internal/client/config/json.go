package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/streamdesk/internal/flagx"
	"github.com/dmitrijs2005/streamdesk/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell an absent key from a zero value.
type JsonConfig struct {
	APIBaseURL            string          `json:"api_base_url"`
	StateFile             string          `json:"state_file"`
	RequestTimeout        *timex.Duration `json:"request_timeout"`
	TransferTimeout       *timex.Duration `json:"transfer_timeout"`
	TranscodeWait         *bool           `json:"transcode_wait"`
	TranscodePollInterval *timex.Duration `json:"transcode_poll_interval"`
	TranscodeTimeout      *timex.Duration `json:"transcode_timeout"`
	SimulatedStep         *int            `json:"simulated_step"`
	SimulatedDelay        *timex.Duration `json:"simulated_delay"`
	Compensate            *bool           `json:"compensate"`
	CacheTTL              *timex.Duration `json:"cache_ttl"`
	LogFormat             string          `json:"log_format"`
	LogLevel              string          `json:"log_level"`
}

// parseJSON overlays cfg with values from the JSON file named by -c or
// -config in args. Without such a flag it does nothing.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	jc.apply(cfg)
	return nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.StateFile, jc.StateFile)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.LogLevel, jc.LogLevel)

	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.TransferTimeout, jc.TransferTimeout)
	setDuration(&cfg.TranscodePollInterval, jc.TranscodePollInterval)
	setDuration(&cfg.TranscodeTimeout, jc.TranscodeTimeout)
	setDuration(&cfg.SimulatedDelay, jc.SimulatedDelay)
	setDuration(&cfg.CacheTTL, jc.CacheTTL)

	if jc.TranscodeWait != nil {
		cfg.TranscodeWait = *jc.TranscodeWait
	}
	if jc.Compensate != nil {
		cfg.Compensate = *jc.Compensate
	}
	if jc.SimulatedStep != nil {
		cfg.SimulatedStep = *jc.SimulatedStep
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
