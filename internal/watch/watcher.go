package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const DefaultDelay = 500 * time.Millisecond

// Watcher calls onChange once a burst of writes to any of its files has settled.
//
// The parent directory of each file is watched rather than the file itself so
// that editors replacing a file by rename are still noticed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	dirs     map[string]struct{}
	onChange func(ctx context.Context)
	delay    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func New(files []string, delay time.Duration, onChange func(ctx context.Context)) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDelay
	}

	w := &Watcher{
		files:    make(map[string]struct{}, len(files)),
		dirs:     make(map[string]struct{}, len(files)),
		onChange: onChange,
		delay:    delay,
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files[abs] = struct{}{}
		w.dirs[filepath.Dir(abs)] = struct{}{}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w.watcher = watcher

	return w, nil
}

// Start begins watching. The watcher stops when ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	for dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		log.Info().Str("dir", dir).Msg("Watching payload directory")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.eventLoop()
	return nil
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	w.stopped = true
	w.cancelPendingLocked()
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}
	_ = w.watcher.Close()
	w.wg.Wait()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Payload watch error")

		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if _, ok := w.files[filepath.Clean(event.Name)]; !ok {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Payload file changed")

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.cancelPendingLocked()
	// Every armed timer holds a wg slot until it is stopped or flush returns,
	// so Stop also waits for a reload that is already running.
	w.wg.Add(1)
	w.timer = time.AfterFunc(w.delay, w.flush)
}

// cancelPendingLocked stops a timer that has not fired yet and releases its
// wg slot. A timer that already fired releases its own slot in flush.
func (w *Watcher) cancelPendingLocked() {
	if w.timer != nil && w.timer.Stop() {
		w.wg.Done()
	}
	w.timer = nil
}

func (w *Watcher) flush() {
	defer w.wg.Done()

	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}
	w.onChange(w.ctx)
}
