// Package logging configures the process wide go-ethereum logger.
package logging

import (
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
)

// DefaultVerbosity is the legacy level of Info.
const DefaultVerbosity = 3

// Init logs to stderr at a legacy verbosity, 0 (crit) to 5 (trace).
func Init(verbosity int) {
	color := isatty.IsTerminal(os.Stderr.Fd())
	handler := log.NewGlogHandler(log.NewTerminalHandler(os.Stderr, color))
	handler.Verbosity(log.FromLegacyLevel(verbosity))
	log.SetDefault(log.NewLogger(handler))
}
