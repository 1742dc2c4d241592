package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/contact-enrich/internal/sheets"
)

// SpreadsheetSummary is one spreadsheet of the working folder with the
// number of rows still awaiting review.
type SpreadsheetSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Unprocessed int    `json:"unprocessed"`
}

// Catalog lists the spreadsheets of a folder.
type Catalog struct {
	lister   sheets.FolderLister
	folderID string
	enricher *Enricher
}

// NewCatalog creates a catalog over folderID.
func NewCatalog(lister sheets.FolderLister, folderID string, enricher *Enricher) *Catalog {
	return &Catalog{lister: lister, folderID: folderID, enricher: enricher}
}

// List returns every spreadsheet of the folder with its unprocessed-row
// count, in listing order. A spreadsheet without a primary sheet counts 0.
func (c *Catalog) List(ctx context.Context) ([]SpreadsheetSummary, error) {
	files, err := c.lister.ListSpreadsheets(ctx, c.folderID)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: list spreadsheets")
	}

	out := make([]SpreadsheetSummary, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, f := range files {
		out[i] = SpreadsheetSummary{ID: f.ID, Name: f.Name}
		g.Go(func() error {
			sd, err := c.enricher.deps.Sheets.Get(gctx, f.ID, c.enricher.opts.PrimarySheet, c.enricher.opts.Range)
			if err != nil {
				return eris.Wrapf(err, "enrich: count unprocessed %s", f.ID)
			}
			out[i].Unprocessed = CountUnprocessed(sd)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
