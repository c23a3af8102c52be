package replay

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brensch/snekpad/game"
)

const (
	defaultSessionsPerFlush = 10
	defaultMaxPendingFrames = 50_000
	writerQueueSize         = 1024
)

// Writer batches recorded frames and writes them as Parquet files in the
// background. It satisfies session.Recorder.
type Writer struct {
	outDir           string
	sessionsPerFlush int
	maxPending       int
	log              *slog.Logger
	now              func() time.Time

	mu     sync.Mutex
	closed bool
	in     chan Frame
	done   chan struct{}
	err    error

	dropped atomic.Int64
	written atomic.Int64
}

type WriterOption func(*Writer)

// WithSessionsPerFlush sets how many finished sessions are buffered per file.
func WithSessionsPerFlush(n int) WriterOption {
	return func(w *Writer) { w.sessionsPerFlush = n }
}

// WithMaxPendingFrames forces a flush once this many frames are buffered,
// even mid-session.
func WithMaxPendingFrames(n int) WriterOption {
	return func(w *Writer) { w.maxPending = n }
}

func WithWriterLogger(l *slog.Logger) WriterOption {
	return func(w *Writer) { w.log = l }
}

// NewWriter starts the background writer for outDir.
func NewWriter(outDir string, opts ...WriterOption) (*Writer, error) {
	if outDir == "" {
		return nil, fmt.Errorf("outDir is required")
	}
	w := &Writer{
		outDir:           outDir,
		sessionsPerFlush: defaultSessionsPerFlush,
		maxPending:       defaultMaxPendingFrames,
		log:              slog.Default(),
		now:              time.Now,
		in:               make(chan Frame, writerQueueSize),
		done:             make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.sessionsPerFlush <= 0 {
		w.sessionsPerFlush = defaultSessionsPerFlush
	}
	if w.maxPending <= 0 {
		w.maxPending = defaultMaxPendingFrames
	}

	go w.loop()
	return w, nil
}

// Record queues a frame without blocking. Frames are dropped, and counted,
// when the queue is full or the writer is closed.
func (w *Writer) Record(sessionID string, s game.Snapshot) {
	f := FrameFromSnapshot(sessionID, s, w.now())

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.dropped.Add(1)
		return
	}
	select {
	case w.in <- f:
	default:
		w.dropped.Add(1)
	}
}

// Dropped is the number of frames that never reached the queue.
func (w *Writer) Dropped() int64 { return w.dropped.Load() }

// Written is the number of frames flushed to disk so far.
func (w *Writer) Written() int64 { return w.written.Load() }

// Close stops accepting frames, flushes what is buffered and waits for the
// background writer. It returns every flush error seen.
func (w *Writer) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.in)
	}
	w.mu.Unlock()

	<-w.done
	return w.err
}

func (w *Writer) loop() {
	defer close(w.done)

	pending := make([]Frame, 0, 1024)
	pendingSessions := 0
	var errs []error

	flush := func(reason string) {
		if len(pending) == 0 {
			return
		}
		outPath, err := WriteBatchParquetAtomic(w.outDir, pending)
		if err != nil {
			w.log.Error("replay flush failed", "reason", reason, "sessions", pendingSessions, "frames", len(pending), "err", err)
			errs = append(errs, err)
		} else {
			w.written.Add(int64(len(pending)))
			w.log.Info("replay flush ok", "reason", reason, "path", outPath, "sessions", pendingSessions, "frames", len(pending))
		}
		pending = pending[:0]
		pendingSessions = 0
	}

	for f := range w.in {
		pending = append(pending, f)
		if !f.Alive {
			pendingSessions++
		}

		switch {
		case pendingSessions >= w.sessionsPerFlush:
			flush("sessions")
		case len(pending) >= w.maxPending:
			flush("frames")
		}
	}
	flush("close")

	if dropped := w.dropped.Load(); dropped > 0 {
		w.log.Warn("replay frames dropped", "dropped", dropped)
	}
	w.err = errors.Join(errs...)
}
