package logger

import (
	"io"
	"log/slog"
)

type Option func(*config)

func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = slog.LevelDebug
		} else {
			c.level = slog.LevelInfo
		}
	}
}

// WithPretty enables the charmbracelet/log handler for colorized console output.
func WithPretty(pretty bool) Option {
	return func(c *config) {
		c.pretty = pretty
	}
}

func WithJSON(json bool) Option {
	return func(c *config) {
		c.json = json
	}
}

// WithFormat maps a config value (pretty, text or json) onto the options above.
func WithFormat(format string) Option {
	return func(c *config) {
		c.pretty = format == FormatPretty
		c.json = format == FormatJSON
	}
}

// WithWriter overrides the output writer. Defaults to os.Stderr.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.writers = []io.Writer{w}
	}
}

func WithWriters(w ...io.Writer) Option {
	return func(c *config) {
		c.writers = w
	}
}
