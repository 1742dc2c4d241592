// Package sheets defines the tabular source contracts consumed by the
// enrichment pipeline and provides a workbook-directory implementation.
package sheets

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enrich/internal/model"
)

// ErrSheetNotFound is returned when a spreadsheet or a named sheet does not
// exist. Callers treat it as "no data", never as a fault.
var ErrSheetNotFound = eris.New("sheets: sheet not found")

// Provider is an external tabular data source.
type Provider interface {
	// SheetNames lists the sheet titles of a spreadsheet in tab order.
	SheetNames(ctx context.Context, spreadsheetID string) ([]string, error)
	// ReadRange returns the raw matrix of a sheet range, header row first.
	ReadRange(ctx context.Context, spreadsheetID, sheetName, rng string) ([][]string, error)
	// HeaderHighlights returns the values of header cells with a non-white fill.
	HeaderHighlights(ctx context.Context, spreadsheetID, sheetName string) ([]string, error)
	// WriteCells writes cells of one data row (1-based, header excluded) by
	// column name and returns the number of cells updated. Unknown columns
	// are ignored.
	WriteCells(ctx context.Context, spreadsheetID, sheetName string, rowNumber int, cells map[string]string) (int, error)
}

// FolderLister lists the spreadsheets stored in a folder.
type FolderLister interface {
	ListSpreadsheets(ctx context.Context, folderID string) ([]model.SpreadsheetFile, error)
}

// excludedHighlights are header labels that are highlighted for layout only.
var excludedHighlights = map[string]bool{
	"by the way":           true,
	"personalization date": true,
}

// FilterHighlights drops empty and layout-only highlight values.
func FilterHighlights(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || excludedHighlights[strings.ToLower(v)] {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ColumnLetter converts a 1-based column number to its A1 letter form
// (1 → A, 26 → Z, 27 → AA).
func ColumnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// ColumnNumber converts an A1 column letter to its 1-based number. It
// returns 0 for input that is not a column reference.
func ColumnNumber(letters string) int {
	n := 0
	for _, r := range strings.ToUpper(letters) {
		if r < 'A' || r > 'Z' {
			return 0
		}
		n = n*26 + int(r-'A'+1)
	}
	return n
}

// ColumnSpan parses a column-only range such as "A:ZZ" into 1-based bounds.
// Anything else yields ok=false and callers read every column.
func ColumnSpan(rng string) (first, last int, ok bool) {
	from, to, found := strings.Cut(rng, ":")
	if !found {
		return 0, 0, false
	}
	first, last = ColumnNumber(from), ColumnNumber(to)
	if first == 0 || last == 0 || last < first {
		return 0, 0, false
	}
	return first, last, true
}
