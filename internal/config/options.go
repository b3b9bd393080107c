package config

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Options carries runtime options for healthmon. They override the
// persisted Settings in memory only and are never saved.
type Options struct {
	ConfigPath string
	Interval   time.Duration
	DiskPath   string
	Top        int
	Filter     string
	JSON       bool
	JSONStream bool
	LogLevel   string
	LogFile    string
}

// DefaultOptions returns options that leave the persisted settings untouched.
func DefaultOptions() Options {
	return Options{
		ConfigPath: DefaultPath,
		LogLevel:   "info",
	}
}

// FromFlags parses flags and environment overrides. A .env file in the
// working directory, if present, is loaded into the environment first;
// variables already set win over the file.
func FromFlags(args []string) (Options, error) {
	_ = godotenv.Load()

	opts := DefaultOptions()
	if v := os.Getenv("HEALTHMON_CONFIG"); v != "" {
		opts.ConfigPath = v
	}
	if v := os.Getenv("HEALTHMON_INTERVAL"); v != "" {
		if d, ok := parseInterval(v); ok {
			opts.Interval = d
		}
	}
	if v := os.Getenv("HEALTHMON_LOG_LEVEL"); v != "" {
		opts.LogLevel = v
	}

	fs := flag.NewFlagSet("healthmon", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "settings file (.json, .yaml)")
	fs.DurationVar(&opts.Interval, "interval", opts.Interval, "refresh interval override")
	fs.StringVar(&opts.DiskPath, "disk", opts.DiskPath, "mount point for disk usage")
	fs.IntVar(&opts.Top, "top", opts.Top, "number of top processes")
	fs.StringVar(&opts.Filter, "filter", opts.Filter, "regex filter for process names")
	fs.BoolVar(&opts.JSON, "json", opts.JSON, "output one-shot JSON and exit")
	fs.BoolVar(&opts.JSONStream, "json-stream", opts.JSONStream, "stream NDJSON until interrupted")
	fs.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&opts.LogFile, "log-file", opts.LogFile, "write logs to this file")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

// parseInterval accepts Go durations ("1500ms", "3s") and bare integers,
// which are read as milliseconds to match refresh_interval.
func parseInterval(v string) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d, true
	}
	if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond, true
	}
	return 0, false
}

// Apply overlays the non-zero options onto s.
func (o Options) Apply(s Settings) Settings {
	if o.Interval > 0 {
		s.RefreshInterval = int(o.Interval / time.Millisecond)
		if s.RefreshInterval == 0 {
			s.RefreshInterval = 1
		}
	}
	if o.DiskPath != "" {
		s.DiskPath = o.DiskPath
	}
	if o.Top > 0 {
		s.ProcessCount = o.Top
	}
	return s
}

// Level maps LogLevel to a slog level, defaulting to info.
func (o Options) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(o.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
