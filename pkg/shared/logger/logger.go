package logger

import (
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/iacshield/iacshield/pkg/shared/config"
)

// NewLogger builds a named hclog logger. The level comes from the config
// when set, otherwise from the IACSHIELD_LOG_LEVEL environment variable.
func NewLogger(cfg *config.Config, name string) hclog.Logger {
	var logLevel hclog.Level

	if cfg != nil && cfg.Logger.Level != "" {
		logLevel = getLogLevel(strings.ToUpper(cfg.Logger.Level))
	} else {
		logLevel = getLogLevel(strings.ToUpper(os.Getenv("IACSHIELD_LOG_LEVEL")))
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		DisableTime: true,
		Output:      os.Stdout,
		Level:       logLevel,
	})
}

func getLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}
