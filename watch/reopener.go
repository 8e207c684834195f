// Package watch keeps a dbglog.Logger in step with the filesystem: it reopens
// the log file when an external rotator moves it away and re-applies the
// configuration file when it changes.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/abyssdigger/dbglog"
	"github.com/abyssdigger/dbglog/config"
)

// DEFAULT_SETTLE is how long a config change is left to settle before reloading
// (editors write files in several steps).
const DEFAULT_SETTLE = 100 * time.Millisecond

// Reopener watches the directories of the log file and of the config file.
type Reopener struct {
	logger     *dbglog.Logger
	log        *dbglog.Module
	watcher    *fsnotify.Watcher
	configPath string
	envPrefix  string
	settle     time.Duration

	mtx  sync.Mutex
	dirs map[string]bool
}

// New creates a Reopener for l. configPath may be empty (no config reloads);
// envPrefix is passed to config.Load on every reload.
func New(l *dbglog.Logger, configPath, envPrefix string) (*Reopener, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}
	r := &Reopener{
		logger:    l,
		log:       l.Module("watch"),
		watcher:   w,
		envPrefix: envPrefix,
		settle:    DEFAULT_SETTLE,
		dirs:      map[string]bool{},
	}
	if configPath != "" {
		r.configPath = filepath.Clean(configPath)
		if err := r.watchDir(r.configPath); err != nil {
			w.Close()
			return nil, err
		}
	}
	if err := r.watchDir(l.LogFile().Path()); err != nil {
		w.Close()
		return nil, err
	}
	return r, nil
}

// SetSettle changes the delay before a config reload.
func (r *Reopener) SetSettle(d time.Duration) *Reopener {
	r.settle = d
	return r
}

// watchDir adds the directory of path to the watcher (once).
func (r *Reopener) watchDir(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(filepath.Clean(path))
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.dirs[dir] {
		return nil
	}
	if err := r.watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "failed to watch %s", dir)
	}
	r.dirs[dir] = true
	return nil
}

// Run handles filesystem events until ctx is done or the Reopener is closed.
func (r *Reopener) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			r.handle(event)
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("file watcher error: %v", err)
		}
	}
}

func (r *Reopener) handle(event fsnotify.Event) {
	name := filepath.Clean(event.Name)
	logPath := r.logger.LogFile().Path()
	switch {
	case logPath != "" && name == filepath.Clean(logPath) &&
		event.Has(fsnotify.Rename|fsnotify.Remove):
		if err := r.Reopen(); err != nil {
			r.log.Error("failed to reopen log file <%s>: %v", logPath, err)
		}
	case r.configPath != "" && name == r.configPath &&
		event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename):
		time.Sleep(r.settle)
		if _, err := os.Stat(r.configPath); err != nil {
			r.log.Warn("config file <%s> is gone, keeping current settings", r.configPath)
			return
		}
		if err := r.Reload(); err != nil {
			r.log.Error("failed to reload <%s>: %v", r.configPath, err)
		}
	}
}

// Reopen re-creates the log file at its configured path. Lines written
// before the call stay in the file that was moved away.
func (r *Reopener) Reopen() error {
	path := r.logger.LogFile().Path()
	if path == "" {
		return nil
	}
	if err := r.logger.LogToFile(path); err != nil {
		return err
	}
	r.log.Logf(dbglog.LVL_INFO2, "log file <%s> reopened", path)
	return nil
}

// Reload loads the config file and applies it. The file is only reopened
// when its path changed, and never truncated.
func (r *Reopener) Reload() error {
	cfg, err := config.Load(r.configPath, r.envPrefix)
	if err != nil {
		return err
	}
	if err := cfg.ApplyDisplay(r.logger); err != nil {
		return err
	}
	if cfg.File.Path != r.logger.LogFile().Path() {
		fc := cfg.File
		fc.Truncate = false
		if err := fc.Apply(r.logger); err != nil {
			return err
		}
		if err := r.watchDir(cfg.File.Path); err != nil {
			return err
		}
	}
	r.log.Logf(dbglog.LVL_INFO2, "configuration reloaded, mask %s", r.logger.MaskString())
	return nil
}

// Close stops the watcher; Run returns.
func (r *Reopener) Close() error {
	return r.watcher.Close()
}
