package sheets

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enrich/internal/model"
	"github.com/sells-group/contact-enrich/pkg/gsheets"
)

// GoogleProvider adapts the Google Sheets REST client to Provider and
// FolderLister.
type GoogleProvider struct {
	client gsheets.Client
}

// NewGoogleProvider wraps a gsheets client.
func NewGoogleProvider(client gsheets.Client) *GoogleProvider {
	return &GoogleProvider{client: client}
}

// notFound maps "no such spreadsheet" and "no such sheet" responses onto
// ErrSheetNotFound.
func notFound(err error, what string) error {
	var apiErr *gsheets.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusNotFound ||
			(apiErr.StatusCode == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range")) {
			return eris.Wrapf(ErrSheetNotFound, "google: %s", what)
		}
	}
	return eris.Wrapf(err, "google: %s", what)
}

// SheetNames implements Provider.
func (p *GoogleProvider) SheetNames(ctx context.Context, spreadsheetID string) ([]string, error) {
	ss, err := p.client.Spreadsheet(ctx, spreadsheetID)
	if err != nil {
		return nil, notFound(err, "spreadsheet "+spreadsheetID)
	}
	names := make([]string, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		names = append(names, s.Properties.Title)
	}
	return names, nil
}

// ReadRange implements Provider.
func (p *GoogleProvider) ReadRange(ctx context.Context, spreadsheetID, sheetName, rng string) ([][]string, error) {
	vr, err := p.client.Values(ctx, spreadsheetID, gsheets.A1Range(sheetName, rng))
	if err != nil {
		return nil, notFound(err, spreadsheetID+"!"+sheetName)
	}
	if vr.Values == nil {
		return [][]string{}, nil
	}
	return vr.Values, nil
}

// HeaderHighlights implements Provider.
func (p *GoogleProvider) HeaderHighlights(ctx context.Context, spreadsheetID, sheetName string) ([]string, error) {
	cells, err := p.client.CellFormats(ctx, spreadsheetID, gsheets.A1Range(sheetName, "1:1"))
	if err != nil {
		return nil, notFound(err, spreadsheetID+"!"+sheetName)
	}
	var values []string
	for _, c := range cells {
		if c.EffectiveFormat == nil || c.EffectiveFormat.BackgroundColor == nil {
			continue
		}
		if !c.EffectiveFormat.BackgroundColor.IsWhite() {
			values = append(values, c.FormattedValue)
		}
	}
	return values, nil
}

// WriteCells implements Provider. The header row is re-read so the column
// letters reflect the sheet as it is now.
func (p *GoogleProvider) WriteCells(ctx context.Context, spreadsheetID, sheetName string, rowNumber int, cells map[string]string) (int, error) {
	if rowNumber < 1 {
		return 0, eris.Errorf("google: invalid row number %d", rowNumber)
	}

	header, err := p.client.Values(ctx, spreadsheetID, gsheets.A1Range(sheetName, "1:1"))
	if err != nil {
		return 0, notFound(err, spreadsheetID+"!"+sheetName)
	}
	if len(header.Values) == 0 {
		return 0, nil
	}

	index := make(map[string]int, len(header.Values[0]))
	for j, name := range header.Values[0] {
		if _, dup := index[name]; !dup && name != "" {
			index[name] = j + 1
		}
	}

	// Sheet row 1 is the header, so data row n lives on sheet row n+1.
	sheetRow := rowNumber + 1
	var data []gsheets.ValueRange
	for column, value := range cells {
		col, ok := index[column]
		if !ok {
			continue
		}
		data = append(data, gsheets.ValueRange{
			Range:  gsheets.A1Range(sheetName, ColumnLetter(col)+strconv.Itoa(sheetRow)),
			Values: [][]string{{value}},
		})
	}
	if len(data) == 0 {
		return 0, nil
	}

	resp, err := p.client.BatchUpdateValues(ctx, spreadsheetID, data)
	if err != nil {
		return 0, notFound(err, "write "+spreadsheetID+"!"+sheetName)
	}
	return resp.TotalUpdatedCells, nil
}

// ListSpreadsheets implements FolderLister.
func (p *GoogleProvider) ListSpreadsheets(ctx context.Context, folderID string) ([]model.SpreadsheetFile, error) {
	files, err := p.client.ListSpreadsheets(ctx, folderID)
	if err != nil {
		return nil, eris.Wrapf(err, "google: list folder %s", folderID)
	}
	out := make([]model.SpreadsheetFile, 0, len(files))
	for _, f := range files {
		out = append(out, model.SpreadsheetFile{ID: f.ID, Name: f.Name})
	}
	return out, nil
}
