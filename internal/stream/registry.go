package stream

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Registry errors.
var (
	ErrUnknownStream = eris.New("stream: unknown stream")
	ErrStreamRunning = eris.New("stream: already consumed")
)

// SourceFactory creates the source for one spreadsheet.
type SourceFactory func(spreadsheetID string) Source

// Stream is a registered, not yet finished enrichment stream.
type Stream struct {
	ID             string
	SpreadsheetIDs []string

	gate      *Gate
	scheduler *Scheduler
	running   bool
	created   time.Time
}

// Gate returns the stream's continuation gate.
func (s *Stream) Gate() *Gate {
	return s.gate
}

// Registry owns the live streams by id. Each stream has its own gate, so
// streams pause and resume independently. Streams not consumed within
// Config.IdleTTL are dropped.
type Registry struct {
	mu      sync.Mutex
	streams map[string]*Stream
	factory SourceFactory
	cfg     Config
	now     func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryClock overrides time.Now (for testing).
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a registry building sources with factory.
func NewRegistry(factory SourceFactory, cfg Config, opts ...RegistryOption) *Registry {
	cfg.defaults()
	r := &Registry{
		streams: make(map[string]*Stream),
		factory: factory,
		cfg:     cfg,
		now:     time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Create registers a stream over the given spreadsheets. Sources are built
// eagerly, in order, skipping duplicate ids.
func (r *Registry) Create(spreadsheetIDs []string) *Stream {
	seen := make(map[string]bool, len(spreadsheetIDs))
	ids := make([]string, 0, len(spreadsheetIDs))
	sources := make([]Source, 0, len(spreadsheetIDs))
	for _, id := range spreadsheetIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		sources = append(sources, r.factory(id))
	}

	gate := NewGate()
	st := &Stream{
		ID:             uuid.New().String(),
		SpreadsheetIDs: ids,
		gate:           gate,
		scheduler:      NewScheduler(sources, gate, r.cfg),
		created:        r.now(),
	}

	r.mu.Lock()
	r.expireIdleLocked()
	r.streams[st.ID] = st
	r.mu.Unlock()

	zap.L().Info("stream: created",
		zap.String("stream_id", st.ID),
		zap.Strings("spreadsheet_ids", ids),
	)
	return st
}

// expireIdleLocked drops streams nobody consumed within the idle TTL.
func (r *Registry) expireIdleLocked() {
	cutoff := r.now().Add(-r.cfg.IdleTTL)
	for id, st := range r.streams {
		if st.running || st.created.After(cutoff) {
			continue
		}
		delete(r.streams, id)
		st.gate.Stop()
		zap.L().Info("stream: expired unconsumed stream", zap.String("stream_id", id))
	}
}

// Get returns a registered stream.
func (r *Registry) Get(id string) (*Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireIdleLocked()
	st, ok := r.streams[id]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownStream, "stream: %s", id)
	}
	return st, nil
}

// Continue resumes a paused stream.
func (r *Registry) Continue(id string) error {
	st, err := r.Get(id)
	if err != nil {
		return err
	}
	st.gate.Continue()
	return nil
}

// Stop ends a stream. A stream that was never consumed is removed.
func (r *Registry) Stop(id string) error {
	r.mu.Lock()
	st, ok := r.streams[id]
	if ok && !st.running {
		delete(r.streams, id)
	}
	r.mu.Unlock()
	if !ok {
		return eris.Wrapf(ErrUnknownStream, "stream: %s", id)
	}
	st.gate.Stop()
	return nil
}

// Run consumes a stream, passing its events to emit, and removes it once
// the scheduler returns. A stream can be consumed once.
func (r *Registry) Run(ctx context.Context, id string, emit func(Event) error) error {
	r.mu.Lock()
	r.expireIdleLocked()
	st, ok := r.streams[id]
	if !ok {
		r.mu.Unlock()
		return eris.Wrapf(ErrUnknownStream, "stream: %s", id)
	}
	if st.running {
		r.mu.Unlock()
		return eris.Wrapf(ErrStreamRunning, "stream: %s", id)
	}
	st.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.streams, id)
		r.mu.Unlock()
	}()

	err := st.scheduler.Run(ctx, emit)
	zap.L().Info("stream: finished", zap.String("stream_id", id), zap.Error(err))
	return err
}

// Len returns the number of registered streams.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams)
}
