package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enrich/internal/model"
)

type fakeSource struct {
	mu        sync.Mutex
	id        string
	remaining int
	next      int
	hasErr    error
	batchErr  error
	panics    bool
	calls     int
}

func newFakeSource(id string, rows int) *fakeSource {
	return &fakeSource{id: id, remaining: rows, next: 1}
}

func (f *fakeSource) SpreadsheetID() string { return f.id }

func (f *fakeSource) HasMore(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hasErr != nil {
		return false, f.hasErr
	}
	return f.remaining > 0, nil
}

func (f *fakeSource) ProcessBatch(_ context.Context, n int) ([]*model.ContactData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.panics {
		panic("boom")
	}
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	var out []*model.ContactData
	for i := 0; i < n && f.remaining > 0; i++ {
		out = append(out, &model.ContactData{SpreadsheetID: f.id, RowNumber: f.next})
		f.next++
		f.remaining--
	}
	return out, nil
}

type collector struct {
	mu     sync.Mutex
	events []Event
	ch     chan Event
}

func newCollector() *collector {
	return &collector{ch: make(chan Event, 100)}
}

func (c *collector) emit(e Event) error {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
	c.ch <- e
	return nil
}

func (c *collector) all() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func describe(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		switch {
		case len(e.Contacts) > 0:
			out[i] = fmt.Sprintf("%s:%d", e.SpreadsheetID, len(e.Contacts))
		case e.AwaitUserAction:
			out[i] = "await"
		case e.Error != "":
			out[i] = "error:" + e.SpreadsheetID
		case e.Complete:
			out[i] = "complete"
		}
	}
	return out
}

func TestScheduler_RoundRobin(t *testing.T) {
	a := newFakeSource("A", 3)
	b := newFakeSource("B", 1)
	c := newCollector()

	err := NewScheduler([]Source{a, b}, NewGate(), Config{}).Run(context.Background(), c.emit)
	require.NoError(t, err)

	assert.Equal(t, []string{"A:2", "B:1", "A:1", "complete"}, describe(c.all()))
	rows := c.all()[2].Contacts
	assert.Equal(t, 3, rows[0].RowNumber)
}

func TestScheduler_EmptySources(t *testing.T) {
	c := newCollector()
	err := NewScheduler(nil, NewGate(), Config{}).Run(context.Background(), c.emit)
	require.NoError(t, err)
	assert.Equal(t, []string{"complete"}, describe(c.all()))
}

func TestScheduler_LargeBatchGate(t *testing.T) {
	a := newFakeSource("A", 12)
	gate := NewGate()
	c := newCollector()

	done := make(chan error, 1)
	go func() {
		done <- NewScheduler([]Source{a}, gate, Config{SmallBatchSize: 2, LargeBatchThreshold: 10}).Run(context.Background(), c.emit)
	}()

	for range 5 {
		e := <-c.ch
		require.Len(t, e.Contacts, 2)
	}
	e := <-c.ch
	require.True(t, e.AwaitUserAction)

	select {
	case e := <-c.ch:
		t.Fatalf("unexpected event while paused: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
	a.mu.Lock()
	assert.Equal(t, 5, a.calls)
	a.mu.Unlock()

	gate.Continue()

	e = <-c.ch
	assert.Len(t, e.Contacts, 2)
	e = <-c.ch
	assert.True(t, e.Complete)
	require.NoError(t, <-done)
}

func TestScheduler_ContinueBeforePauseIsDiscarded(t *testing.T) {
	a := newFakeSource("A", 4)
	gate := NewGate()
	gate.Continue()
	c := newCollector()

	done := make(chan error, 1)
	go func() {
		done <- NewScheduler([]Source{a}, gate, Config{SmallBatchSize: 2, LargeBatchThreshold: 2}).Run(context.Background(), c.emit)
	}()

	<-c.ch
	e := <-c.ch
	require.True(t, e.AwaitUserAction)

	select {
	case e := <-c.ch:
		t.Fatalf("unexpected event while paused: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
	gate.Continue()
	e = <-c.ch
	assert.Len(t, e.Contacts, 2)

	// The second batch reached the threshold again.
	e = <-c.ch
	assert.True(t, e.AwaitUserAction)
	gate.Continue()
	e = <-c.ch
	assert.True(t, e.Complete)
	require.NoError(t, <-done)
}

func TestScheduler_StopWhilePaused(t *testing.T) {
	a := newFakeSource("A", 4)
	gate := NewGate()
	c := newCollector()

	done := make(chan error, 1)
	go func() {
		done <- NewScheduler([]Source{a}, gate, Config{SmallBatchSize: 2, LargeBatchThreshold: 2}).Run(context.Background(), c.emit)
	}()

	<-c.ch
	e := <-c.ch
	require.True(t, e.AwaitUserAction)

	gate.Stop()
	err := <-done
	assert.ErrorIs(t, err, ErrStopped)
	for _, e := range c.all() {
		assert.False(t, e.Complete)
	}
}

func TestScheduler_ContextCancelWhilePaused(t *testing.T) {
	a := newFakeSource("A", 4)
	ctx, cancel := context.WithCancel(context.Background())
	c := newCollector()

	done := make(chan error, 1)
	go func() {
		done <- NewScheduler([]Source{a}, NewGate(), Config{SmallBatchSize: 2, LargeBatchThreshold: 2}).Run(ctx, c.emit)
	}()

	<-c.ch
	<-c.ch
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestScheduler_SourceErrorDropsOnlyThatSpreadsheet(t *testing.T) {
	a := newFakeSource("A", 3)
	b := newFakeSource("B", 5)
	b.hasErr = errors.New("auth failed")
	c := newCollector()

	err := NewScheduler([]Source{a, b}, NewGate(), Config{}).Run(context.Background(), c.emit)
	require.NoError(t, err)

	assert.Equal(t, []string{"A:2", "error:B", "A:1", "complete"}, describe(c.all()))
	assert.Contains(t, c.all()[1].Error, "auth failed")
}

func TestScheduler_BatchPanicIsReported(t *testing.T) {
	a := newFakeSource("A", 2)
	b := newFakeSource("B", 2)
	b.panics = true
	c := newCollector()

	err := NewScheduler([]Source{a, b}, NewGate(), Config{}).Run(context.Background(), c.emit)
	require.NoError(t, err)

	assert.Equal(t, []string{"A:2", "error:B", "complete"}, describe(c.all()))
	assert.Contains(t, c.all()[1].Error, "panic")
}

func TestScheduler_BatchErrorIsReported(t *testing.T) {
	a := newFakeSource("A", 1)
	a.batchErr = errors.New("read failed")
	c := newCollector()

	err := NewScheduler([]Source{a}, NewGate(), Config{}).Run(context.Background(), c.emit)
	require.NoError(t, err)
	assert.Equal(t, []string{"error:A", "complete"}, describe(c.all()))
}

func TestScheduler_EmitErrorAborts(t *testing.T) {
	a := newFakeSource("A", 4)
	errGone := errors.New("client gone")

	err := NewScheduler([]Source{a}, NewGate(), Config{}).Run(context.Background(), func(Event) error {
		return errGone
	})
	assert.ErrorIs(t, err, errGone)
	assert.Equal(t, 1, a.calls)
}

func TestScheduler_StopBetweenBatches(t *testing.T) {
	a := newFakeSource("A", 6)
	gate := NewGate()
	var events []Event

	err := NewScheduler([]Source{a}, gate, Config{SmallBatchSize: 2, LargeBatchThreshold: 100}).Run(context.Background(), func(e Event) error {
		events = append(events, e)
		gate.Stop()
		return nil
	})

	assert.ErrorIs(t, err, ErrStopped)
	require.Len(t, events, 1)
	assert.Len(t, events[0].Contacts, 2)
	assert.False(t, events[0].Complete)
	assert.Equal(t, 1, a.calls)
}
