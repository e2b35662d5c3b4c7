// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logging

import (
	"io"
	"log/slog"
)

// New creates a configured application logger writing to w.
// Callers pass stderr so that readouts on stdout stay clean.
// It standardizes common keys (e.g., "error" -> "err").
//
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a no-op logger.
//
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ForDebug returns a debug level logger on w if debug is set, a warning level
// one otherwise.
//
func ForDebug(w io.Writer, debug bool) *slog.Logger {
	if debug {
		return New(w, slog.LevelDebug)
	}
	return New(w, slog.LevelWarn)
}
