package config

import (
	"flag"
	"os"
	"time"

	"github.com/what-to-eat/client/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   path to the settings database file
//	-t int      API request timeout in seconds
//	-l string   log level (debug, info, warn, error)
//
// Arguments are filtered with flagx.FilterArgs so this stage ignores flags
// owned by other parsing stages (such as -c/-config).
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the settings database file")
	httpTimeout := fs.Int("t", int(cfg.HTTPTimeout.Seconds()), "API request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.HTTPTimeout = time.Duration(*httpTimeout) * time.Second
}
