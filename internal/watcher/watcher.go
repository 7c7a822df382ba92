package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"intake/internal/catalog"
	"intake/internal/faults"
	"intake/internal/logging"
	"intake/internal/normalize"
	"intake/internal/stability"
)

// Entity is one tracked unit (a ticker) with its source and destination
// directory pair.
type Entity struct {
	Name      string
	SourceDir string
	DestDir   string
}

// Recorder journals normalization outcomes. A nil Recorder disables
// journaling; failures to record are logged and never affect processing.
type Recorder interface {
	Append(ctx context.Context, rec catalog.Record) (catalog.Record, error)
}

// Watcher observes one entity's source directory and normalizes every item
// that finishes arriving there. Events are consumed by a single goroutine, so
// one entity's items are processed strictly in arrival order; watchers for
// different entities share nothing and run fully in parallel.
type Watcher struct {
	entity   Entity
	probe    stability.Probe
	norm     *normalize.Normalizer
	recorder Recorder
	logger   *slog.Logger

	queueSize int
	events    chan fsnotify.Event
	dropped   atomic.Uint64

	mu      sync.Mutex
	running bool
	fsw     *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a watcher for the given entity.
func New(entity Entity, probe stability.Probe, norm *normalize.Normalizer, recorder Recorder, logger *slog.Logger, queueSize int) *Watcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	watcherLogger := logging.WithComponent(logger, "watcher").With(
		logging.String(logging.FieldEntity, entity.Name),
	)
	return &Watcher{
		entity:    entity,
		probe:     probe,
		norm:      norm,
		recorder:  recorder,
		logger:    watcherLogger,
		queueSize: queueSize,
	}
}

// Entity returns the entity this watcher serves.
func (w *Watcher) Entity() Entity {
	return w.entity
}

// Dropped reports how many filesystem events were discarded because the
// event queue was full.
func (w *Watcher) Dropped() uint64 {
	return w.dropped.Load()
}

// Start registers the OS watch, synchronously processes every item already
// present in the source directory, then switches to event-driven processing.
// Registering the watch before the scan means files that arrive during the
// scan queue up as events instead of being missed.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("watcher already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return faults.Wrap(faults.ErrRegistration, "watcher", "create watch", w.entity.Name, err)
	}
	if err := fsw.Add(w.entity.SourceDir); err != nil {
		_ = fsw.Close()
		return faults.Wrap(faults.ErrRegistration, "watcher", "watch directory", w.entity.SourceDir, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.fsw = fsw
	w.cancel = cancel
	w.events = make(chan fsnotify.Event, w.queueSize)
	w.running = true

	w.wg.Add(1)
	go w.forward(fsw)

	w.scanExisting(runCtx)

	w.wg.Add(1)
	go w.consume(runCtx)

	w.logger.Info("watching folder",
		logging.String(logging.FieldPath, w.entity.SourceDir),
		logging.String(logging.FieldEventType, "watcher_started"),
	)
	return nil
}

// Stop ceases event dispatch and waits for any in-flight callback to finish.
// A stability probe already polling runs to completion.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	fsw := w.fsw
	w.running = false
	w.cancel = nil
	w.fsw = nil
	w.mu.Unlock()

	cancel()
	if fsw != nil {
		_ = fsw.Close()
	}
	w.wg.Wait()
	w.logger.Info("watcher stopped", logging.String(logging.FieldPath, w.entity.SourceDir))
}

// forward moves fsnotify events into the bounded queue, dropping when full.
// Idempotent normalization makes a dropped event recoverable: any later event
// for the same path redoes the work.
func (w *Watcher) forward(fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer close(w.events)

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			select {
			case w.events <- event:
			default:
				w.dropped.Add(1)
				w.logger.Debug("event queue full; dropping event",
					logging.String(logging.FieldPath, event.Name),
				)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "watch_error"),
			)
		}
	}
}

func (w *Watcher) consume(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !w.qualifies(event.Name) {
				continue
			}
			w.logger.Info("file detected",
				logging.String(logging.FieldPath, event.Name),
				logging.String(logging.FieldEventType, "file_detected"),
			)
			w.handle(ctx, event.Name)
		}
	}
}

// qualifies filters event paths to regular files. Directories appearing under
// a source folder are picked up by the startup scan, not by events, matching
// the per-file event contract.
func (w *Watcher) qualifies(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Already gone: let the probe's own timeout decide.
			return true
		}
		w.logger.Warn("cannot stat event path; skipping",
			logging.Error(faults.Wrap(faults.ErrTransient, "watcher", "stat", filepath.Base(path), err)),
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldEventType, "stat_failed"),
		)
		return false
	}
	return info.Mode().IsRegular()
}

// scanExisting processes everything already present in the source directory,
// guaranteeing that items predating the watch are not missed. Re-running after
// a restart is safe because normalization is idempotent.
func (w *Watcher) scanExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.entity.SourceDir)
	if err != nil {
		w.logger.Warn("cannot enumerate source directory",
			logging.Error(err),
			logging.String(logging.FieldPath, w.entity.SourceDir),
			logging.String(logging.FieldEventType, "scan_failed"),
			logging.String(logging.FieldErrorHint, "check directory permissions"),
		)
		return
	}
	for _, entry := range entries {
		w.handle(ctx, filepath.Join(w.entity.SourceDir, entry.Name()))
	}
}

// handle runs the probe-then-normalize sequence for a single item and
// journals the outcome. Errors never propagate: a failed item is logged and
// skipped so sibling items keep flowing.
func (w *Watcher) handle(ctx context.Context, path string) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		// Directories have no meaningful size to settle.
		w.finish(ctx, path, w.normalizeItem(path))
		return
	}

	if !w.probe.Wait(path) {
		w.logger.Warn("file not stable after timeout; skipping",
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldEventType, "instability_timeout"),
			logging.String(logging.FieldErrorHint, "producer may still be writing; the next modify event retries"),
		)
		w.record(ctx, path, normalize.Result{}, faults.Wrap(faults.ErrUnstable, "watcher", "probe", filepath.Base(path), nil))
		return
	}

	w.finish(ctx, path, w.normalizeItem(path))
}

type outcome struct {
	result normalize.Result
	err    error
}

func (w *Watcher) normalizeItem(path string) outcome {
	result, err := w.norm.Normalize(path, w.entity.DestDir)
	return outcome{result: result, err: err}
}

func (w *Watcher) finish(ctx context.Context, path string, out outcome) {
	if out.err != nil {
		switch {
		case errors.Is(out.err, faults.ErrCorruptArchive):
			w.logger.Error("corrupted archive; skipping",
				logging.Error(out.err),
				logging.String(logging.FieldPath, path),
				logging.String(logging.FieldEventType, "corrupt_archive"),
				logging.String(logging.FieldErrorHint, "re-download the archive; partial downloads often look corrupt"),
			)
		default:
			w.logger.Error("failed to normalize item",
				logging.Error(out.err),
				logging.String(logging.FieldPath, path),
				logging.String(logging.FieldEventType, "normalize_failed"),
			)
		}
	}
	w.record(ctx, path, out.result, out.err)
}

func (w *Watcher) record(ctx context.Context, path string, result normalize.Result, err error) {
	if w.recorder == nil {
		return
	}
	rec := catalog.Record{
		Entity:     w.entity.Name,
		SourcePath: path,
		Kind:       result.Kind.String(),
		OutputPath: result.OutputPath,
		Entries:    result.Entries,
		Status:     classify(err),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if _, appendErr := w.recorder.Append(ctx, rec); appendErr != nil {
		w.logger.Warn("catalog append failed",
			logging.Error(appendErr),
			logging.String(logging.FieldPath, path),
		)
	}
}

func classify(err error) catalog.Status {
	switch {
	case err == nil:
		return catalog.StatusCompleted
	case errors.Is(err, faults.ErrUnstable):
		return catalog.StatusSkipped
	default:
		return catalog.StatusFailed
	}
}
