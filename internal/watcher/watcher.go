// Package watcher implements the three-source discovery stream of spec
// §4.1: a periodic scanner, an fsnotify tail, and an external
// sentinel/signal trigger, all coalesced through a pending set shared
// with the queue. The event-loop shape (watcher.Events/watcher.Errors
// select) is grounded on MatchaCake-LiveSub's HotConfig.Watch
// (internal/config/watcher.go), generalized from a single config file to
// every watched root.
package watcher

import (
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Enqueuer receives a discovered path. The watcher performs no admission
// decisions beyond the extension check (spec §4.1); everything else is
// the caller's responsibility.
type Enqueuer func(path string)

// PendingSet coalesces duplicate discoveries across the three sources so
// a path already queued is not re-enqueued until the worker removes it.
type PendingSet struct {
	mu   sync.Mutex
	seen map[string]bool
}

func NewPendingSet() *PendingSet {
	return &PendingSet{seen: make(map[string]bool)}
}

// TryAdd returns true if path was not already pending, marking it
// pending as a side effect.
func (p *PendingSet) TryAdd(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seen[path] {
		return false
	}
	p.seen[path] = true
	return true
}

// Remove clears path from the pending set once a worker has finished
// with it (or it was rejected by admission), allowing a later rescan to
// pick it up again.
func (p *PendingSet) Remove(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.seen, path)
}

// Watcher drives the discovery stream for a configured list of roots.
type Watcher struct {
	roots       []string
	recursive   bool
	videoExts   map[string]bool
	triggerFile string
	scanInterval time.Duration
	pending     *PendingSet
	enqueue     Enqueuer
	log         zerolog.Logger
}

func New(roots []string, recursive bool, videoExts []string, triggerFile string, scanInterval time.Duration, pending *PendingSet, enqueue Enqueuer, log zerolog.Logger) *Watcher {
	extSet := make(map[string]bool, len(videoExts))
	for _, e := range videoExts {
		extSet[strings.ToLower(e)] = true
	}
	return &Watcher{
		roots:        roots,
		recursive:    recursive,
		videoExts:    extSet,
		triggerFile:  triggerFile,
		scanInterval: scanInterval,
		pending:      pending,
		enqueue:      enqueue,
		log:          log,
	}
}

// Run blocks, driving all three discovery sources until stop is closed.
func (w *Watcher) Run(stop <-chan struct{}) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Error().Err(err).Msg("watcher: fsnotify init failed, falling back to scan-only")
	} else {
		defer fsw.Close()
		for _, root := range w.roots {
			if err := fsw.Add(root); err != nil {
				w.log.Warn().Err(err).Str("root", root).Msg("watcher: failed to watch root")
			}
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGUSR1)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(w.scanInterval)
	defer ticker.Stop()

	w.scan()

	var events <-chan fsnotify.Event
	var errs <-chan error
	if fsw != nil {
		events = fsw.Events
		errs = fsw.Errors
	}

	for {
		select {
		case <-stop:
			return

		case <-ticker.C:
			w.checkTrigger()
			w.scan()


		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename) {
				w.handlePath(ev.Name)
			}
			if w.checkTrigger() {
				w.scan()
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.log.Warn().Err(err).Msg("watcher: fsnotify error")

		case <-sigCh:
			w.scan()
		}
	}
}

// scan performs one full traversal of every root.
func (w *Watcher) scan() {
	for _, root := range w.roots {
		w.walkRoot(root)
	}
}

func (w *Watcher) walkRoot(root string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		w.log.Warn().Err(err).Str("root", root).Msg("watcher: scan failed")
		return
	}
	for _, e := range entries {
		full := filepath.Join(root, e.Name())
		if e.IsDir() {
			if w.recursive {
				w.walkRoot(full)
			}
			continue
		}
		w.handlePath(full)
	}
}

func (w *Watcher) handlePath(path string) {
	if !w.videoExts[strings.ToLower(filepath.Ext(path))] {
		return
	}
	if w.pending.TryAdd(path) {
		size := "?"
		if info, err := os.Stat(path); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		w.log.Debug().Str("path", path).Str("size", size).Msg("watcher: discovered")
		w.enqueue(path)
	}
}

// checkTrigger consumes the sentinel file if present in any watched
// root, reporting whether one was found so the caller can force an
// immediate scan (spec §4.1 step 3).
func (w *Watcher) checkTrigger() bool {
	if w.triggerFile == "" {
		return false
	}
	found := false
	for _, root := range w.roots {
		sentinel := filepath.Join(root, w.triggerFile)
		if _, err := os.Stat(sentinel); err == nil {
			_ = os.Remove(sentinel)
			found = true
		}
	}
	return found
}
