/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package dklog wraps a single process-wide zerolog logger, the way
// cuemby-warren/pkg/log wraps zerolog for its services.
package dklog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// Config controls the global logger; call Init once at process start.
type Config struct {
	JSONOutput bool
	Quiet      bool
	Output     io.Writer
	RunID      string
}

func Init(cfg Config) {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Quiet {
		zerolog.SetGlobalLevel(zerolog.Disabled)
	}
	if cfg.JSONOutput {
		logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
	if cfg.RunID != "" {
		logger = logger.With().Str("run_id", cfg.RunID).Logger()
	}
}

// L returns the process-wide logger.
func L() *zerolog.Logger {
	return &logger
}

// WithComponent returns a child logger tagged with the given component name.
func WithComponent(component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// WithRunID returns a child logger tagged with a per-invocation run id,
// so every log line from one CLI command or one plan_shards/plan_compaction
// call can be correlated.
func WithRunID(runID string) zerolog.Logger {
	return logger.With().Str("run_id", runID).Logger()
}
