// Package config loads runtime configuration for the streamdesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJSON) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the API gateway
//	-s string   path of the local state database
//	-l string   log format: text, json or console
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds. Keys absent from the file keep their earlier value:
//
//	{
//	  "api_base_url": "https://api.example.com",
//	  "state_file": "/home/me/.config/streamdesk/state.db",
//	  "request_timeout": "30s",
//	  "transfer_timeout": "30m",
//	  "transcode_wait": true,
//	  "transcode_poll_interval": "2s",
//	  "transcode_timeout": "2m",
//	  "simulated_step": 10,
//	  "simulated_delay": "200ms",
//	  "compensate": true,
//	  "cache_ttl": "1m",
//	  "log_format": "console",
//	  "log_level": "info"
//	}
//
// The merged result is checked with go-playground/validator before it is
// returned.
package config
