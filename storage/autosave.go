package storage

import (
	"sync"
	"time"

	"excelmanager/models"
)

// DefaultAutosaveDelay is the quiet period after the last edit before a
// debounced write goes to disk.
const DefaultAutosaveDelay = 1500 * time.Millisecond

// SaveFunc persists a settings snapshot.
type SaveFunc func(*models.Settings) error

// Autosaver debounces frequent record edits into infrequent durable
// writes. An edit arms a timer; further edits within the window re-arm
// it, so only the latest snapshot reaches disk. Writes run on a
// background goroutine with at most one in flight; a snapshot becoming
// due during a write queues behind it, latest wins.
//
// All mutating calls are expected from the single GUI event goroutine;
// the Autosaver serializes its own interaction with the timer and the
// write goroutine.
type Autosaver struct {
	mu       sync.Mutex
	save     SaveFunc
	delay    time.Duration
	onError  func(error)
	timer    *time.Timer
	pending  *models.Settings // armed snapshot, nil when idle
	queued   *models.Settings // due snapshot waiting behind an in-flight write
	inFlight bool
	closed   bool
	wg       sync.WaitGroup
}

// NewAutosaver creates a coordinator writing through save. onError
// receives failures from background writes; it may be nil.
func NewAutosaver(save SaveFunc, delay time.Duration, onError func(error)) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	if onError == nil {
		onError = func(error) {}
	}
	return &Autosaver{save: save, delay: delay, onError: onError}
}

// NotifyEdit registers a changed record and (re)arms the debounce timer.
// The record is cloned, so the caller keeps mutating its copy freely.
func (a *Autosaver) NotifyEdit(settings *models.Settings) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.pending = settings.Clone()
	if a.timer != nil {
		a.timer.Reset(a.delay)
		return
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

// fire runs on timer expiry: hand the pending snapshot to the write
// goroutine, or queue it if one is already running.
func (a *Autosaver) fire() {
	a.mu.Lock()
	snapshot := a.pending
	a.pending = nil
	a.timer = nil
	if snapshot == nil || a.closed {
		a.mu.Unlock()
		return
	}
	if a.inFlight {
		a.queued = snapshot
		a.mu.Unlock()
		return
	}
	a.inFlight = true
	a.wg.Add(1)
	a.mu.Unlock()

	go a.write(snapshot)
}

func (a *Autosaver) write(snapshot *models.Settings) {
	defer a.wg.Done()
	for snapshot != nil {
		if err := a.save(snapshot); err != nil {
			a.onError(err)
		}
		a.mu.Lock()
		snapshot = a.queued
		a.queued = nil
		if snapshot == nil {
			a.inFlight = false
		}
		a.mu.Unlock()
	}
}

// Flush writes the given record synchronously, cancelling any pending
// debounce. Used by the explicit save action.
func (a *Autosaver) Flush(settings *models.Settings) error {
	a.mu.Lock()
	a.cancelTimerLocked()
	a.mu.Unlock()

	a.wg.Wait()
	return a.save(settings)
}

// Close shuts the coordinator down: the timer is cancelled, an in-flight
// write is drained, and a snapshot still pending is saved synchronously
// so edits made just before exit reach disk. Further edits are ignored.
func (a *Autosaver) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	snapshot := a.pending
	queued := a.queued
	a.queued = nil
	a.cancelTimerLocked()
	a.mu.Unlock()

	a.wg.Wait()
	if snapshot == nil {
		snapshot = queued
	}
	if snapshot != nil {
		return a.save(snapshot)
	}
	return nil
}

func (a *Autosaver) cancelTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = nil
}
