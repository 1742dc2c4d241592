package stream

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enrich/internal/model"
)

// Source is one spreadsheet being drained in batches.
type Source interface {
	SpreadsheetID() string
	HasMore(ctx context.Context) (bool, error)
	ProcessBatch(ctx context.Context, n int) ([]*model.ContactData, error)
}

// Event is one message of the stream. Exactly one of Contacts,
// AwaitUserAction, Error or Complete is set.
type Event struct {
	Contacts        []*model.ContactData `json:"contacts,omitempty"`
	AwaitUserAction bool                 `json:"await_user_action,omitempty"`
	Error           string               `json:"error,omitempty"`
	SpreadsheetID   string               `json:"spreadsheet_id,omitempty"`
	Complete        bool                 `json:"complete,omitempty"`
}

// Config tunes batching.
type Config struct {
	// SmallBatchSize is the number of rows pulled per turn. Default: 2.
	SmallBatchSize int
	// LargeBatchThreshold is the number of emitted contacts after which the
	// stream pauses for a continue. Default: 10.
	LargeBatchThreshold int
	// IdleTTL is how long a created stream may wait to be consumed before
	// the registry drops it. Default: 10m.
	IdleTTL time.Duration
}

func (c *Config) defaults() {
	if c.SmallBatchSize <= 0 {
		c.SmallBatchSize = 2
	}
	if c.LargeBatchThreshold <= 0 {
		c.LargeBatchThreshold = 10
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 10 * time.Minute
	}
}

// Scheduler round-robins its sources, one batch per turn, in the order
// they were given.
type Scheduler struct {
	sources []Source
	gate    *Gate
	cfg     Config
}

// NewScheduler creates a scheduler over sources.
func NewScheduler(sources []Source, gate *Gate, cfg Config) *Scheduler {
	cfg.defaults()
	return &Scheduler{sources: sources, gate: gate, cfg: cfg}
}

// Run drains every source, passing events to emit. It returns nil after
// the complete event, ErrStopped when the gate is stopped while paused,
// the context error on cancellation, or the first emit error.
func (s *Scheduler) Run(ctx context.Context, emit func(Event) error) error {
	live := append([]Source(nil), s.sources...)
	total := 0

	for len(live) > 0 {
		remaining := live[:0]
		for _, src := range live {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Stop ends the stream before its next batch, paused or not.
			if s.gate.Stopped() {
				return ErrStopped
			}
			log := zap.L().With(zap.String("spreadsheet_id", src.SpreadsheetID()))

			more, err := safeHasMore(ctx, src)
			if err != nil {
				log.Error("stream: spreadsheet failed", zap.Error(err))
				if err := emit(Event{Error: err.Error(), SpreadsheetID: src.SpreadsheetID()}); err != nil {
					return err
				}
				continue
			}
			if !more {
				log.Debug("stream: spreadsheet drained")
				continue
			}

			batch, err := safeProcessBatch(ctx, src, s.cfg.SmallBatchSize)
			if err != nil {
				log.Error("stream: spreadsheet failed", zap.Error(err))
				if err := emit(Event{Error: err.Error(), SpreadsheetID: src.SpreadsheetID()}); err != nil {
					return err
				}
				continue
			}
			remaining = append(remaining, src)
			if len(batch) == 0 {
				continue
			}

			if err := emit(Event{Contacts: batch, SpreadsheetID: src.SpreadsheetID()}); err != nil {
				return err
			}
			total += len(batch)

			if total >= s.cfg.LargeBatchThreshold {
				total = 0
				s.gate.Arm()
				if err := emit(Event{AwaitUserAction: true}); err != nil {
					return err
				}
				if err := s.gate.Wait(ctx); err != nil {
					return err
				}
			}
		}
		live = remaining
	}

	return emit(Event{Complete: true})
}

func safeHasMore(ctx context.Context, src Source) (more bool, err error) {
	defer recoverInto(&err)
	more, err = src.HasMore(ctx)
	return more, eris.Wrap(err, "stream: has more")
}

func safeProcessBatch(ctx context.Context, src Source, n int) (batch []*model.ContactData, err error) {
	defer recoverInto(&err)
	batch, err = src.ProcessBatch(ctx, n)
	return batch, eris.Wrap(err, "stream: process batch")
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = eris.Errorf("stream: panic: %v", r)
	}
}
