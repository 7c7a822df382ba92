package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"intake/internal/catalog"
	"intake/internal/config"
	"intake/internal/logging"
	"intake/internal/normalize"
	"intake/internal/preflight"
	"intake/internal/registry"
	"intake/internal/watcher"
)

// Daemon coordinates the watch pipeline and enforces single-instance
// execution through a lock file.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	catalog   *catalog.Store
	registrar *registry.Registrar
	logPath   string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	WatchRoot    string
	Entities     []string
	CatalogPath  string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies. store may be nil
// when the catalog is disabled.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}

	var recorder watcher.Recorder
	if store != nil {
		recorder = store
	}
	registrar := registry.New(cfg, normalize.New(logger), recorder, logger)

	lockPath := filepath.Join(cfg.Paths.LogDir, "intaked.lock")
	return &Daemon{
		cfg:       cfg,
		logger:    logging.WithComponent(logger, "daemon"),
		catalog:   store,
		registrar: registrar,
		logPath:   filepath.Join(cfg.Paths.LogDir, "intake.log"),
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, runs preflight checks, and launches the
// registrar.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	for _, result := range preflight.RunAll(d.cfg) {
		if !result.Passed {
			return fmt.Errorf("preflight %s: %s", result.Name, result.Detail)
		}
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another intake daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.registrar.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start registrar: %w", err)
	}
	d.cancel = cancel

	d.running.Store(true)
	d.logger.Info("intake daemon started",
		logging.String(logging.FieldPath, d.cfg.Paths.WatchRoot),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Stop halts watching and releases the daemon lock. In-flight normalization
// is allowed to finish before Stop returns.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.registrar.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("intake daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.catalog != nil {
		return d.catalog.Close()
	}
	return nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		WatchRoot:    d.cfg.Paths.WatchRoot,
		Entities:     d.registrar.Entities(),
		LockFilePath: d.lockPath,
	}
	if d.cfg.Catalog.Enabled {
		status.CatalogPath = d.cfg.CatalogPath()
	}
	return status
}
