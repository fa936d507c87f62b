package root

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"streakcity/internal/clock"
	"streakcity/internal/cloudsync"
	"streakcity/internal/config"
	"streakcity/internal/engine"
	"streakcity/internal/logging"
	"streakcity/internal/storage"
)

// session is everything a command needs: the engine plus the stores behind it.
type session struct {
	cfg    config.Config
	log    *slog.Logger
	db     *sql.DB
	store  *storage.KVRepo
	svc    *engine.Service
	syncer *cloudsync.Syncer
	remote *cloudsync.PostgresRemote

	closers []func()
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if flags.dbPath != "" {
		cfg.DBPath = flags.dbPath
	}
	if flags.user != "" {
		cfg.User = flags.user
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func openLogger(cfg config.Config) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}
	l, err := logging.New(w, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return l, closeFn, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sql.DB, func(), error) {
	path, err := storage.ResolveDBPath(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

// openSession wires config, logging, storage and the engine. With sync
// enabled it also reconciles with the remote and pushes on every change;
// sync failures are logged and never stop the command.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return nil, err
	}
	s.log = logger
	s.closers = append(s.closers, closeLog)

	db, closeDB, err := openDB(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.db = db
	s.closers = append(s.closers, closeDB)

	loc, err := cfg.Location()
	if err != nil {
		s.Close()
		return nil, err
	}

	s.store = storage.NewKVRepo(db)
	s.svc = engine.NewService(s.store, cfg.User,
		engine.WithClock(clock.Real{Location: loc}),
		engine.WithLogger(logger),
		engine.WithAwardLog(storage.NewAwardRepo(db)),
		engine.WithDefaultSettings(engine.Settings{MinimalMode: cfg.MinimalMode, FlatTaskXP: cfg.FlatTaskXP}),
	)

	if cfg.Sync.Enabled {
		s.startSync(ctx, loc)
	}
	return s, nil
}

func (s *session) startSync(ctx context.Context, loc *time.Location) {
	remote, err := cloudsync.OpenPostgres(ctx, s.cfg.Sync.DSN)
	if err != nil {
		s.log.Warn("sync disabled for this run", "err", err)
		return
	}
	s.remote = remote
	s.closers = append(s.closers, func() { _ = remote.Close() })

	s.syncer = cloudsync.NewSyncer(s.store, remote, s.cfg.User,
		cloudsync.WithDebounce(s.cfg.Sync.Debounce),
		cloudsync.WithLogger(s.log),
		cloudsync.WithClock(clock.Real{Location: loc}),
	)
	out, err := s.syncer.Start(ctx, nil)
	switch {
	case errors.Is(err, cloudsync.ErrChoiceRequired):
		s.log.Warn("sync paused: run `sc sync --keep local|remote` to choose")
		return
	case err != nil:
		s.log.Warn("sync start failed", "err", err)
		return
	}
	s.log.Info("sync started", "outcome", out)

	detach := s.syncer.Attach(s.svc.Bus())
	syncer := s.syncer
	s.closers = append(s.closers, func() {
		detach()
		if err := syncer.Flush(context.Background()); err != nil {
			s.log.Warn("sync flush failed", "err", err)
		}
	})
}
