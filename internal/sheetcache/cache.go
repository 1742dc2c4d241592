// Package sheetcache caches sheet contents read from a tabular source and
// keeps them consistent with writes made through it.
package sheetcache

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/contact-enrich/internal/model"
	"github.com/sells-group/contact-enrich/internal/sheets"
)

// DefaultTTL is how long a cached sheet stays fresh.
const DefaultTTL = time.Hour

type key struct {
	spreadsheetID string
	sheetName     string
	rng           string
}

func (k key) String() string {
	return k.spreadsheetID + "\x00" + k.sheetName + "\x00" + k.rng
}

type entry struct {
	data    *model.SheetData // nil records a missing sheet
	expires time.Time
}

// rowPatch is a write that landed while a fill was reading the provider.
type rowPatch struct {
	rowNumber int
	cells     map[string]string
}

// pendingFill collects writes to a sheet made during its fill.
type pendingFill struct {
	patches []rowPatch
}

type namesEntry struct {
	names   []string
	expires time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrimarySheet names the sheet whose header highlights are attached on
// fill.
func WithPrimarySheet(name string) Option {
	return func(c *Cache) {
		c.primarySheet = name
	}
}

// WithClock overrides time.Now (for testing).
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// Cache is a TTL cache in front of a sheets.Provider. Concurrent misses for
// the same key share one provider read. Reads return copies, so callers may
// mutate what they get.
type Cache struct {
	provider     sheets.Provider
	ttl          time.Duration
	primarySheet string
	now          func() time.Time

	mu      sync.RWMutex
	entries map[key]entry
	fills   map[key]*pendingFill
	names   map[string]namesEntry
	group   singleflight.Group
}

// New creates a cache over provider.
func New(provider sheets.Provider, opts ...Option) *Cache {
	c := &Cache{
		provider:     provider,
		ttl:          DefaultTTL,
		primarySheet: "New Connections",
		now:          time.Now,
		entries:      make(map[key]entry),
		fills:        make(map[key]*pendingFill),
		names:        make(map[string]namesEntry),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Provider returns the underlying tabular source.
func (c *Cache) Provider() sheets.Provider {
	return c.provider
}

// Get returns the sheet range, filling from the provider on a miss. A sheet
// that does not exist yields (nil, nil).
func (c *Cache) Get(ctx context.Context, spreadsheetID, sheetName, rng string) (*model.SheetData, error) {
	k := key{spreadsheetID, sheetName, rng}

	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()
	if ok && c.now().Before(e.expires) {
		zap.L().Debug("sheetcache: hit",
			zap.String("spreadsheet_id", spreadsheetID),
			zap.String("sheet", sheetName),
		)
		return e.data.Clone(), nil
	}

	v, err, _ := c.group.Do(k.String(), func() (any, error) {
		return c.fill(ctx, k)
	})
	if err != nil {
		return nil, err
	}
	data, _ := v.(*model.SheetData)
	return data.Clone(), nil
}

func (c *Cache) fill(ctx context.Context, k key) (*model.SheetData, error) {
	log := zap.L().With(zap.String("spreadsheet_id", k.spreadsheetID), zap.String("sheet", k.sheetName))

	pf := &pendingFill{}
	c.mu.Lock()
	c.fills[k] = pf
	c.mu.Unlock()

	matrix, err := c.provider.ReadRange(ctx, k.spreadsheetID, k.sheetName, k.rng)
	if errors.Is(err, sheets.ErrSheetNotFound) {
		log.Warn("sheetcache: sheet not found")
		c.finishFill(k, pf, nil, true)
		return nil, nil
	}
	if err != nil {
		c.finishFill(k, pf, nil, false)
		return nil, eris.Wrapf(err, "sheetcache: read %s!%s", k.spreadsheetID, k.sheetName)
	}

	data := model.SheetFromMatrix(matrix)
	if k.sheetName == c.primarySheet {
		highlights, hErr := c.provider.HeaderHighlights(ctx, k.spreadsheetID, k.sheetName)
		if hErr != nil {
			log.Warn("sheetcache: header highlights unavailable", zap.Error(hErr))
		} else {
			data.ColoredCells = sheets.FilterHighlights(highlights)
		}
	}

	c.finishFill(k, pf, data, true)
	return data, nil
}

// finishFill replays writes made during the fill onto data and, when store
// is set, caches the result. Both happen under one lock so no write can
// slip between them.
func (c *Cache) finishFill(k key, pf *pendingFill, data *model.SheetData, store bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fills[k] == pf {
		delete(c.fills, k)
	}
	if data != nil {
		for _, p := range pf.patches {
			data.UpdateRow(p.rowNumber, knownColumns(data.Headers, p.cells))
		}
	}
	if store {
		c.entries[k] = entry{data: data.Clone(), expires: c.now().Add(c.ttl)}
	}
}

// Set stores a value under the given key for ttl. The cache keeps its own
// copy.
func (c *Cache) Set(spreadsheetID, sheetName, rng string, data *model.SheetData, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key{spreadsheetID, sheetName, rng}] = entry{data: data.Clone(), expires: c.now().Add(ttl)}
}

// InvalidateRow patches one row of every cached range of the sheet in place.
// Only columns the sheet has are patched, matching what a provider writes.
// Entries that do not hold the row are left alone; fills in flight replay
// the patch before they are cached.
func (c *Cache) InvalidateRow(spreadsheetID, sheetName string, rowNumber int, patch map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if k.spreadsheetID != spreadsheetID || k.sheetName != sheetName || e.data == nil {
			continue
		}
		e.data.UpdateRow(rowNumber, knownColumns(e.data.Headers, patch))
	}
	for k, pf := range c.fills {
		if k.spreadsheetID != spreadsheetID || k.sheetName != sheetName {
			continue
		}
		pf.patches = append(pf.patches, rowPatch{rowNumber: rowNumber, cells: maps.Clone(patch)})
	}
}

// knownColumns keeps the cells whose column is one of headers.
func knownColumns(headers []string, cells map[string]string) map[string]string {
	out := make(map[string]string, len(cells))
	for col, v := range cells {
		if slices.Contains(headers, col) {
			out[col] = v
		}
	}
	return out
}

// Invalidate drops every cached entry of a spreadsheet.
func (c *Cache) Invalidate(spreadsheetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.spreadsheetID == spreadsheetID {
			delete(c.entries, k)
		}
	}
	delete(c.names, spreadsheetID)
}

// WriteCells writes through to the provider and then patches the cached
// row, so later reads see the write without another provider round trip.
func (c *Cache) WriteCells(ctx context.Context, spreadsheetID, sheetName string, rowNumber int, cells map[string]string) (int, error) {
	n, err := c.provider.WriteCells(ctx, spreadsheetID, sheetName, rowNumber, cells)
	if err != nil {
		return 0, eris.Wrapf(err, "sheetcache: write %s!%s row %d", spreadsheetID, sheetName, rowNumber)
	}
	c.InvalidateRow(spreadsheetID, sheetName, rowNumber, cells)
	return n, nil
}

// SheetNames returns the cached sheet titles of a spreadsheet. A missing
// spreadsheet yields (nil, nil).
func (c *Cache) SheetNames(ctx context.Context, spreadsheetID string) ([]string, error) {
	c.mu.RLock()
	e, ok := c.names[spreadsheetID]
	c.mu.RUnlock()
	if ok && c.now().Before(e.expires) {
		return append([]string(nil), e.names...), nil
	}

	v, err, _ := c.group.Do("names\x00"+spreadsheetID, func() (any, error) {
		names, err := c.provider.SheetNames(ctx, spreadsheetID)
		if errors.Is(err, sheets.ErrSheetNotFound) {
			zap.L().Warn("sheetcache: spreadsheet not found", zap.String("spreadsheet_id", spreadsheetID))
			return []string(nil), nil
		}
		if err != nil {
			return nil, eris.Wrapf(err, "sheetcache: sheet names %s", spreadsheetID)
		}
		c.mu.Lock()
		c.names[spreadsheetID] = namesEntry{names: names, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	names, _ := v.([]string)
	return append([]string(nil), names...), nil
}
