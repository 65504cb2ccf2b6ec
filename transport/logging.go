package transport

import (
	"os"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "hnet",
})

// SetLogLevel adjusts verbosity; CLI front ends wire this to their -v flag.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}
