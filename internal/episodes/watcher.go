package episodes

import (
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher calls onChange, debounced, whenever an episode file in dir is created,
// written, removed or renamed.
type Watcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	onChange func()

	refreshMu    sync.Mutex
	refreshTimer *time.Timer
	refreshDelay time.Duration

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// NewWatcher starts watching dir. The directory is created when missing.
func NewWatcher(dir string, debounce time.Duration, onChange func(), logger zerolog.Logger) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		dir:          dir,
		watcher:      fw,
		logger:       logger,
		onChange:     onChange,
		refreshDelay: debounce,
		done:         make(chan struct{}),
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Close stops the watcher and any pending refresh.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)

		w.refreshMu.Lock()
		if w.refreshTimer != nil {
			w.refreshTimer.Stop()
			w.refreshTimer = nil
		}
		w.refreshMu.Unlock()

		w.closeErr = w.watcher.Close()
		w.wg.Wait()
	})
	return w.closeErr
}

func (w *Watcher) run() {
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
			w.logger.Error().Err(err).Msg("episode watcher error")
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !IsEpisodeFile(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
		w.scheduleRefresh()
	}
}

func (w *Watcher) scheduleRefresh() {
	select {
	case <-w.done:
		return
	default:
	}

	w.refreshMu.Lock()
	defer w.refreshMu.Unlock()

	if w.refreshTimer != nil {
		w.refreshTimer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(w.refreshDelay, func() {
		select {
		case <-w.done:
			return
		default:
		}
		w.onChange()

		w.refreshMu.Lock()
		if w.refreshTimer == timer {
			w.refreshTimer = nil
		}
		w.refreshMu.Unlock()
	})

	w.refreshTimer = timer
}
