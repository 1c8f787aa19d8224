// Package logging builds the zerolog logger used by the command line tool.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// FileConfig enables a size-rotated log file next to the console output.
type FileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"omitempty,min=1"`
	MaxBackups int    `mapstructure:"max_backups" validate:"omitempty,min=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"omitempty,min=0"`
	Compress   bool   `mapstructure:"compress"`
}

// Config selects level, format and destinations.
type Config struct {
	Level  string     `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Format string     `mapstructure:"format" validate:"omitempty,oneof=console json"`
	File   FileConfig `mapstructure:"file"`
}

// Logger is a zerolog.Logger that may own a log file.
type Logger struct {
	zerolog.Logger
	closer io.Closer
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// New builds a logger writing to out, and to cfg.File.Path when set.
func New(cfg Config, out io.Writer) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var w io.Writer
	switch cfg.Format {
	case "", FormatConsole:
		w = consoleWriter(out)
	case FormatJSON:
		w = out
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	logger := &Logger{}
	if cfg.File.Path != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
		logger.closer = file
		w = zerolog.MultiLevelWriter(w, file)
	}

	logger.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logger, nil
}

// ParseLevel maps a config level to zerolog. The empty string is info.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	noColor := true
	if f, ok := out.(*os.File); ok {
		if fi, err := f.Stat(); err == nil {
			noColor = fi.Mode()&os.ModeCharDevice == 0
		}
	}
	return zerolog.ConsoleWriter{
		Out:         out,
		NoColor:     noColor,
		TimeFormat:  time.DateTime,
		FormatLevel: formatLevel,
	}
}

func formatLevel(i any) string {
	return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
}
