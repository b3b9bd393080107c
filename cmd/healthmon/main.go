package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dicklesworthstone/healthmon/internal/config"
	"github.com/Dicklesworthstone/healthmon/internal/poller"
	"github.com/Dicklesworthstone/healthmon/internal/sampler"
	"github.com/Dicklesworthstone/healthmon/internal/ui"
)

// Build info
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "healthmon:", err)
		os.Exit(1)
	}
}

func run() error {
	opts, err := config.FromFlags(os.Args[1:])
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(opts)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("starting", "version", version, "commit", commit, "config", opts.ConfigPath)

	store := config.NewStore(opts.ConfigPath)
	stored, err := store.Load()
	if err != nil {
		if errors.Is(err, config.ErrCorrupt) {
			return fmt.Errorf("%w (fix or remove the file)", err)
		}
		return err
	}
	settings := opts.Apply(stored)
	if err := settings.Validate(); err != nil {
		return err
	}

	s := sampler.FromSettings(settings, logger)
	if err := s.SetFilter(opts.Filter); err != nil {
		return err
	}
	p := poller.New(s, settings, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case opts.JSON:
		u, err := p.RunOnce(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(u)
	case opts.JSONStream:
		return streamJSON(ctx, p, os.Stdout)
	default:
		reload := func() error {
			next, err := store.LoadInto(stored)
			if err != nil {
				return err
			}
			applied := opts.Apply(next)
			if err := applied.Validate(); err != nil {
				return err
			}
			stored = next
			p.Apply(applied)
			logger.Info("settings reloaded", "interval", applied.Interval(), "disk", applied.DiskPath)
			return nil
		}
		return ui.RunTUI(ctx, p, reload)
	}
}

// streamJSON writes one Update per line until ctx is cancelled.
func streamJSON(ctx context.Context, p *poller.Poller, w io.Writer) error {
	updates := p.Stream(ctx, poller.DefaultStreamBuffer)
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	enc := json.NewEncoder(w)
	for u := range updates {
		if err := enc.Encode(u); err != nil {
			return err
		}
	}
	return <-done
}

// newLogger logs to stderr in the JSON modes. The TUI owns the terminal, so
// there logs go to -log-file or nowhere.
func newLogger(opts config.Options) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case opts.LogFile != "":
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case !opts.JSON && !opts.JSONStream:
		w = io.Discard
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level()})
	return slog.New(h), closeFn, nil
}
