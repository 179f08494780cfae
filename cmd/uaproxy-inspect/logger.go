package main

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/smnsjas/go-uaproxy/config"
)

// initLogger builds the process logger and installs it as the zerolog global.
func initLogger(app string, cfg config.LogConfig, out io.Writer) zerolog.Logger {
	w := out
	if !cfg.JSON {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}
	logger := zerolog.New(w).Level(cfg.ParsedLevel()).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
