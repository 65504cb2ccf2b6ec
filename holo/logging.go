package holo

/*------------------------------------------------------------------
 *
 * Purpose: Leveled logging for the codec core.
 *
 *------------------------------------------------------------------*/

import (
	"os"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "holo",
})

// SetLogLevel adjusts verbosity; CLI front ends wire this to their -v flag.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

func logDebug(msg string, kv ...any) {
	logger.Debug(msg, kv...)
}

func logInfo(msg string, kv ...any) {
	logger.Info(msg, kv...)
}

func logWarn(msg string, kv ...any) {
	logger.Warn(msg, kv...)
}
