package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/text/unicode/norm"

	"intake/internal/config"
	"intake/internal/faults"
	"intake/internal/logging"
	"intake/internal/normalize"
	"intake/internal/stability"
	"intake/internal/watcher"
)

// Registrar discovers entity directories under the watch root and maintains
// one running watcher per entity. Directories created while the daemon runs
// are registered on the fly; a failure to register one entity never blocks
// the others.
type Registrar struct {
	cfg      *config.Config
	norm     *normalize.Normalizer
	recorder watcher.Recorder
	base     *slog.Logger
	logger   *slog.Logger

	mu       sync.Mutex
	running  bool
	watchers map[string]*watcher.Watcher
	rootFSW  *fsnotify.Watcher
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New constructs a registrar. recorder may be nil to disable journaling.
func New(cfg *config.Config, normalizer *normalize.Normalizer, recorder watcher.Recorder, logger *slog.Logger) *Registrar {
	return &Registrar{
		cfg:      cfg,
		norm:     normalizer,
		recorder: recorder,
		base:     logger,
		logger:   logging.WithComponent(logger, "registry"),
		watchers: make(map[string]*watcher.Watcher),
	}
}

// Start registers every entity directory already under the watch root, then
// begins watching the root itself for new entity directories. The root watch
// is added before the bootstrap pass so a directory created mid-bootstrap
// surfaces as an event instead of slipping through.
func (r *Registrar) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("registrar already running")
	}

	rootFSW, err := fsnotify.NewWatcher()
	if err != nil {
		return faults.Wrap(faults.ErrRegistration, "registry", "create root watch", r.cfg.Paths.WatchRoot, err)
	}
	if err := rootFSW.Add(r.cfg.Paths.WatchRoot); err != nil {
		_ = rootFSW.Close()
		return faults.Wrap(faults.ErrRegistration, "registry", "watch root", r.cfg.Paths.WatchRoot, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.rootFSW = rootFSW
	r.cancel = cancel
	r.running = true

	r.bootstrapLocked(runCtx)

	r.wg.Add(1)
	go r.watchRoot(runCtx, rootFSW)

	r.logger.Info("registrar started",
		logging.String(logging.FieldPath, r.cfg.Paths.WatchRoot),
		logging.Int("entities", len(r.watchers)),
	)
	return nil
}

// Stop halts root discovery and every entity watcher, waiting for in-flight
// work to drain.
func (r *Registrar) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	rootFSW := r.rootFSW
	watchers := make([]*watcher.Watcher, 0, len(r.watchers))
	for _, w := range r.watchers {
		watchers = append(watchers, w)
	}
	r.running = false
	r.cancel = nil
	r.rootFSW = nil
	r.watchers = make(map[string]*watcher.Watcher)
	r.mu.Unlock()

	cancel()
	if rootFSW != nil {
		_ = rootFSW.Close()
	}
	r.wg.Wait()
	for _, w := range watchers {
		w.Stop()
	}
	r.logger.Info("registrar stopped")
}

// Entities returns the names of currently registered entities, sorted.
func (r *Registrar) Entities() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.watchers))
	for name := range r.watchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registrar) bootstrapLocked(ctx context.Context) {
	entries, err := os.ReadDir(r.cfg.Paths.WatchRoot)
	if err != nil {
		r.logger.Warn("cannot enumerate watch root",
			logging.Error(err),
			logging.String(logging.FieldPath, r.cfg.Paths.WatchRoot),
			logging.String(logging.FieldErrorHint, "check watch_root in the configuration"),
		)
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		r.registerLocked(ctx, entry.Name())
	}
}

func (r *Registrar) watchRoot(ctx context.Context, fsw *fsnotify.Watcher) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil || !info.IsDir() {
				continue
			}
			r.mu.Lock()
			if r.running {
				r.registerLocked(ctx, filepath.Base(event.Name))
			}
			r.mu.Unlock()
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			r.logger.Warn("root watch error", logging.Error(err))
		}
	}
}

// registerLocked sets up and starts a watcher for one entity. Both the
// bootstrap pass and runtime discovery funnel through here so an entity
// registered either way behaves identically. Caller holds r.mu.
func (r *Registrar) registerLocked(ctx context.Context, name string) {
	// Normalize to NFC so a directory created on a Unicode-decomposing
	// filesystem maps to the same entity as its composed spelling.
	name = norm.NFC.String(name)
	if _, ok := r.watchers[name]; ok {
		return
	}

	entityRoot := filepath.Join(r.cfg.Paths.WatchRoot, name)
	entity := watcher.Entity{
		Name:      name,
		SourceDir: filepath.Join(entityRoot, r.cfg.Watch.SourceDirName),
		DestDir:   filepath.Join(entityRoot, r.cfg.Watch.DestDirName),
	}

	for _, dir := range []string{entity.SourceDir, entity.DestDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			r.logger.Error("cannot prepare entity directories",
				logging.Error(faults.Wrap(faults.ErrRegistration, "registry", "prepare directories", name, err)),
				logging.String(logging.FieldEntity, name),
				logging.String(logging.FieldPath, dir),
			)
			return
		}
	}

	probe := stability.New(r.cfg.Watch.StabilityTimeoutDuration(), r.cfg.Watch.StabilityPollIntervalDuration())
	w := watcher.New(entity, probe, r.norm, r.recorder, r.base, r.cfg.Watch.EventQueueSize)
	if err := w.Start(ctx); err != nil {
		r.logger.Error("cannot start entity watcher",
			logging.Error(err),
			logging.String(logging.FieldEntity, name),
			logging.String(logging.FieldErrorHint, "the entity is skipped; restart the daemon to retry"),
		)
		return
	}

	r.watchers[name] = w
	r.logger.Info("entity registered",
		logging.String(logging.FieldEntity, name),
		logging.String(logging.FieldPath, entityRoot),
		logging.String(logging.FieldEventType, "entity_registered"),
	)
}
