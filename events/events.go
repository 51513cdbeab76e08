package events

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNoStore is returned by History when no database is configured
var ErrNoStore = errors.New("event database not configured")

const (
	recentLimit = 50
	keepLimit   = 1000
)

// Options configure where a Journal persists events. Empty paths disable that sink.
type Options struct {
	LogDir       string
	DatabasePath string
	Logger       *slog.Logger
}

// Journal records playback events in memory, to a timestamped log file and,
// when configured, to sqlite. It is safe for concurrent use.
type Journal struct {
	mu      sync.Mutex
	events  []Event
	logFile *os.File
	store   *Store
	log     *slog.Logger
}

func NewJournal(opts Options) (*Journal, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	j := &Journal{log: opts.Logger}

	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		logPath := filepath.Join(opts.LogDir, fmt.Sprintf("events_%s.log", timestamp))

		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		fmt.Fprintf(f, "=== Event Log Started at %s ===\n", time.Now().Format("2006-01-02 15:04:05"))
		j.logFile = f
	}

	if opts.DatabasePath != "" {
		store, err := OpenStore(opts.DatabasePath)
		if err != nil {
			j.Close()
			return nil, err
		}
		j.store = store
	}

	return j, nil
}

// Record journals one event. A zero Timestamp is set to now.
func (j *Journal) Record(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.events = append(j.events, event)
	if len(j.events) > keepLimit {
		j.events = append([]Event(nil), j.events[len(j.events)-recentLimit:]...)
	}

	if j.logFile != nil {
		// Format: [timestamp] EVENT_TYPE: session @ t s
		logLine := fmt.Sprintf("[%s] %s: %s @ %.1f s\n",
			event.Timestamp.Format("2006-01-02 15:04:05"),
			strings.ToUpper(event.Type),
			event.Session,
			event.MediaTime)
		if _, err := j.logFile.WriteString(logLine); err != nil {
			j.log.Error("event_log_write_failed", "err", err)
		}
	}

	if j.store != nil {
		if err := j.store.Insert(event); err != nil {
			j.log.Error("event_store_insert_failed", "err", err, "type", event.Type)
		}
	}
}

// Recent returns a copy of the last 50 events, oldest first
func (j *Journal) Recent() []Event {
	j.mu.Lock()
	defer j.mu.Unlock()

	start := 0
	if len(j.events) > recentLimit {
		start = len(j.events) - recentLimit
	}
	return append([]Event(nil), j.events[start:]...)
}

// History reads persisted events, newest first. Close waits for it to finish.
func (j *Journal) History(session string, limit int) ([]Event, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.store == nil {
		return nil, ErrNoStore
	}
	return j.store.List(session, limit)
}

// Store returns the sqlite store, or nil when none is configured
func (j *Journal) Store() *Store {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.store
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var firstErr error
	if j.logFile != nil {
		firstErr = j.logFile.Close()
		j.logFile = nil
	}
	if j.store != nil {
		if err := j.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		j.store = nil
	}
	return firstErr
}
