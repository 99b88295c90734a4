package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tacticore/internal/app/ports"
)

const (
	DefaultJournalTimeout = 250 * time.Millisecond
	DefaultJournalQueue   = 1024
)

// journalWriter appends records off the decision path. A full queue drops the
// record; each append runs under its own timeout.
type journalWriter struct {
	journal ports.DecisionJournal
	timeout time.Duration
	queue   chan ports.DecisionRecord
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

func newJournalWriter(j ports.DecisionJournal, depth int, timeout time.Duration) *journalWriter {
	if depth <= 0 {
		depth = DefaultJournalQueue
	}
	if timeout <= 0 {
		timeout = DefaultJournalTimeout
	}
	w := &journalWriter{
		journal: j,
		timeout: timeout,
		queue:   make(chan ports.DecisionRecord, depth),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *journalWriter) enqueue(rec ports.DecisionRecord) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.queue <- rec:
		return true
	default:
		log.Warn().Str("session_id", rec.SessionID).Str("request_id", rec.RequestID).Msg("decision journal queue full, record dropped")
		return false
	}
}

func (w *journalWriter) run() {
	defer close(w.done)
	for rec := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		if err := w.journal.Append(ctx, rec); err != nil {
			log.Warn().Err(err).Str("session_id", rec.SessionID).Msg("append decision record")
		}
		cancel()
	}
}

// close stops intake and waits for queued records until ctx is done.
func (w *journalWriter) close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
