package utils

import (
	"io"
	"log"
	"os"
)

const defaultLogPrefix = "[EcoAware] "

// LoggerConfig controls how InitLogger builds the application logger.
type LoggerConfig struct {
	// Format is "text" (file:line, optional colours) or "plain".
	Format string
	// Output defaults to os.Stdout.
	Output io.Writer
	// EnableColors colours the prefix and lets the request logger colour status codes.
	EnableColors bool
	Prefix       string
}

// InitLogger builds the shared *log.Logger.
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultLogPrefix
	}

	if cfg.Format == "plain" {
		return log.New(cfg.Output, prefix, log.LstdFlags|log.LUTC|log.Lmsgprefix)
	}
	if cfg.EnableColors {
		prefix = "\033[36m" + prefix + "\033[0m"
	}
	return log.New(cfg.Output, prefix, log.LstdFlags|log.Lshortfile|log.LUTC)
}
