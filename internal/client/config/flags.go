package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/streamdesk/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   API base URL (default from Config)
//	-s string   state database path (default from Config)
//	-l string   log format (default from Config)
//
// args is filtered down to these flags with flagx.FilterArgs so that flags
// owned by other components do not cause parse errors.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-l"})

	fs := flag.NewFlagSet("streamdesk", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the API gateway")
	fs.StringVar(&cfg.StateFile, "s", cfg.StateFile, "path of the local state database")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format: text, json or console")

	return fs.Parse(args)
}
