package sheetcache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enrich/internal/sheets"
)

type fakeProvider struct {
	mu         sync.Mutex
	matrices   map[string][][]string
	highlights []string
	reads      atomic.Int32
	nameCalls  atomic.Int32
	writes     []map[string]string
}

func (f *fakeProvider) SheetNames(_ context.Context, id string) ([]string, error) {
	f.nameCalls.Add(1)
	if id == "missing" {
		return nil, eris.Wrap(sheets.ErrSheetNotFound, "fake")
	}
	return []string{"New Connections", "Acme PQ", "Other"}, nil
}

func (f *fakeProvider) ReadRange(_ context.Context, _, sheetName, _ string) ([][]string, error) {
	f.reads.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matrices[sheetName]
	if !ok {
		return nil, eris.Wrap(sheets.ErrSheetNotFound, "fake")
	}
	return m, nil
}

func (f *fakeProvider) HeaderHighlights(context.Context, string, string) ([]string, error) {
	return f.highlights, nil
}

func (f *fakeProvider) WriteCells(_ context.Context, _, _ string, _ int, cells map[string]string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, cells)
	return len(cells), nil
}

func newFake() *fakeProvider {
	rows := [][]string{{"First Name", "Approved"}}
	for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
		rows = append(rows, []string{n})
	}
	return &fakeProvider{
		matrices: map[string][][]string{
			"New Connections": rows,
			"Acme PQ":         {{"Titles"}, {"engineer"}},
		},
		highlights: []string{"First Name", "By the way", ""},
	}
}

func TestGet_FillsAndCaches(t *testing.T) {
	p := newFake()
	c := New(p)

	first, err := c.Get(context.Background(), "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Len(t, first.Rows, 6)
	assert.Equal(t, "", first.Rows[0].Data["Approved"], "short rows are padded")
	assert.Equal(t, []string{"First Name"}, first.ColoredCells)

	_, err = c.Get(context.Background(), "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.reads.Load())
}

func TestGet_HighlightsOnlyForPrimarySheet(t *testing.T) {
	c := New(newFake())

	aux, err := c.Get(context.Background(), "s1", "Acme PQ", "A:ZZ")
	require.NoError(t, err)
	assert.Empty(t, aux.ColoredCells)
}

func TestGet_MissingSheetIsNil(t *testing.T) {
	p := newFake()
	c := New(p)

	data, err := c.Get(context.Background(), "s1", "Nope", "A:ZZ")
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = c.Get(context.Background(), "s1", "Nope", "A:ZZ")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, int32(1), p.reads.Load())
}

func TestGet_ExpiresAfterTTL(t *testing.T) {
	p := newFake()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(p, WithTTL(time.Minute), WithClock(func() time.Time { return now }))

	_, err := c.Get(context.Background(), "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = c.Get(context.Background(), "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)

	assert.Equal(t, int32(2), p.reads.Load())
}

func TestGet_ReturnsCopies(t *testing.T) {
	c := New(newFake())

	first, err := c.Get(context.Background(), "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)
	first.Rows[0].Data["First Name"] = "mutated"

	second, err := c.Get(context.Background(), "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)
	assert.Equal(t, "a", second.Rows[0].Data["First Name"])
}

func TestWriteCells_ReadAfterWriteWithoutRefetch(t *testing.T) {
	p := newFake()
	c := New(p)
	ctx := context.Background()

	_, err := c.Get(ctx, "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)

	n, err := c.WriteCells(ctx, "s1", "New Connections", 5, map[string]string{"Approved": "yes"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := c.Get(ctx, "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)
	assert.Equal(t, "yes", data.Row(5).Data["Approved"])
	assert.Equal(t, "", data.Row(4).Data["Approved"])
	assert.Equal(t, int32(1), p.reads.Load())
	require.Len(t, p.writes, 1)
}

func TestInvalidateRow_UnknownRowIsNoop(t *testing.T) {
	c := New(newFake())
	ctx := context.Background()

	_, err := c.Get(ctx, "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)
	c.InvalidateRow("s1", "New Connections", 99, map[string]string{"Approved": "x"})

	data, err := c.Get(ctx, "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)
	assert.Len(t, data.Rows, 6)
}

func TestSet_OverridesEntry(t *testing.T) {
	p := newFake()
	c := New(p)

	c.Set("s1", "New Connections", "A:ZZ", nil, time.Hour)
	data, err := c.Get(context.Background(), "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, int32(0), p.reads.Load())
}

func TestInvalidate_DropsSpreadsheet(t *testing.T) {
	p := newFake()
	c := New(p)
	ctx := context.Background()

	_, err := c.Get(ctx, "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)
	c.Invalidate("s1")
	_, err = c.Get(ctx, "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)

	assert.Equal(t, int32(2), p.reads.Load())
}

func TestSheetNames_CachedAndMissing(t *testing.T) {
	p := newFake()
	c := New(p)
	ctx := context.Background()

	names, err := c.SheetNames(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"New Connections", "Acme PQ", "Other"}, names)
	_, err = c.SheetNames(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.nameCalls.Load())

	missing, err := c.SheetNames(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// stallingProvider holds ReadRange until released, returning the matrix
// as it was before any write.
type stallingProvider struct {
	*fakeProvider
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *stallingProvider) ReadRange(ctx context.Context, id, sheetName, rng string) ([][]string, error) {
	m, err := s.fakeProvider.ReadRange(ctx, id, sheetName, rng)
	s.once.Do(func() { close(s.started) })
	<-s.release
	return m, err
}

func TestWriteCells_DuringFillIsKept(t *testing.T) {
	p := &stallingProvider{
		fakeProvider: newFake(),
		started:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	c := New(p)
	ctx := context.Background()

	type result struct {
		approved string
		err      error
	}
	done := make(chan result, 1)
	go func() {
		data, err := c.Get(ctx, "s1", "New Connections", "A:ZZ")
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{approved: data.Row(1).Data["Approved"]}
	}()

	select {
	case <-p.started:
	case <-time.After(5 * time.Second):
		t.Fatal("fill did not start")
	}

	_, err := c.WriteCells(ctx, "s1", "New Connections", 1, map[string]string{"Approved": "yes"})
	require.NoError(t, err)
	close(p.release)

	var first result
	select {
	case first = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("fill did not finish")
	}
	require.NoError(t, first.err)
	assert.Equal(t, "yes", first.approved, "the filling read replays the write")

	data, err := c.Get(ctx, "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)
	assert.Equal(t, "yes", data.Row(1).Data["Approved"])
	assert.Equal(t, "", data.Row(2).Data["Approved"])
	assert.Equal(t, int32(1), p.reads.Load())
}

func TestWriteCells_UnknownColumnsNotCached(t *testing.T) {
	p := newFake()
	c := New(p)
	ctx := context.Background()

	_, err := c.Get(ctx, "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)

	_, err = c.WriteCells(ctx, "s1", "New Connections", 2, map[string]string{
		"Approved": "yes",
		"approved": "shadow",
		"Notes":    "x",
	})
	require.NoError(t, err)

	data, err := c.Get(ctx, "s1", "New Connections", "A:ZZ")
	require.NoError(t, err)
	row := data.Row(2)
	assert.Equal(t, "yes", row.Data["Approved"])
	_, hasNotes := row.Data["Notes"]
	assert.False(t, hasNotes)
	_, hasLower := row.Data["approved"]
	assert.False(t, hasLower)
}
