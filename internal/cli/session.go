package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/binder/internal/config"
	"github.com/roach88/binder/internal/model"
	"github.com/roach88/binder/internal/persist"
	"github.com/roach88/binder/internal/roster"
	"github.com/roach88/binder/internal/store"
)

// session is everything one command invocation works with: the resolved
// configuration, an open backend and the coordinator over it.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	coord  *persist.Coordinator
	roster *roster.Roster
	out    *OutputFormatter
	closer io.Closer // nil for the file backend
}

// openSession loads the configuration, applies flag overrides and opens the
// configured backend. Logs go to the command's stderr.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.BaseDir != "" {
		cfg.BaseDir = opts.BaseDir
	}
	if opts.Backend != "" {
		cfg.Backend = opts.Backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}

	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	var (
		backend store.Backend
		closer  io.Closer
	)
	switch cfg.Backend {
	case config.BackendSQLite:
		if err := store.EnsureDir(cfg.BaseDir); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to prepare data directory", err)
		}
		logger.Debug("opening database", "path", cfg.SQLiteFile())
		db, err := store.OpenSQLite(cfg.SQLiteFile())
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		backend, closer = db, db
	default:
		files, err := store.NewFileBackend(cfg.BaseDir)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open data directory", err)
		}
		backend = files
	}

	coord, err := persist.New(persist.Options{
		Backend: backend,
		Logger:  logger,
		Paths:   cfg.Paths,
	})
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, WrapExitError(ExitCommandError, "invalid store paths", err)
	}

	return &session{
		cfg:    cfg,
		logger: logger,
		coord:  coord,
		roster: roster.New(coord, roster.WithLogger(logger)),
		out:    opts.formatter(cmd),
		closer: closer,
	}, nil
}

// Close writes any records the command cached but did not get stored,
// then releases the backend.
func (s *session) Close() {
	if err := s.coord.Flush(); err != nil {
		s.logger.Error("failed to flush collections", "error", err)
	}
	if s.closer == nil {
		return
	}
	if err := s.closer.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// withSession runs fn with an open session and closes it afterwards.
func withSession(opts *RootOptions, cmd *cobra.Command, fn func(*session) error) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// failure maps an operation error to an exit error. Invalid input is a
// command error, anything else a failure.
func failure(message string, err error) error {
	switch {
	case errors.Is(err, store.ErrInvalidPath),
		errors.Is(err, model.ErrUnknownKind),
		errors.Is(err, model.ErrKindMismatch),
		errors.Is(err, model.ErrBlankName),
		errors.Is(err, model.ErrEmptyID),
		errors.Is(err, model.ErrInvalidRecord):
		return WrapExitError(ExitCommandError, message, err)
	}
	return WrapExitError(ExitFailure, message, err)
}

// parseRef parses a "kind:id" reference.
func parseRef(s string) (model.ID, error) {
	kindName, raw, ok := strings.Cut(s, ":")
	if !ok || kindName == "" || raw == "" {
		return nil, fmt.Errorf("%w: reference %q must look like kind:id", model.ErrInvalidRecord, s)
	}
	kind, err := model.ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	return kind.NewID(raw)
}
