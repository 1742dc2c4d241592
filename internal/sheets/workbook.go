package sheets

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enrich/internal/model"
)

const workbookExt = ".xlsx"

// WorkbookProvider serves spreadsheets from .xlsx files under a root
// directory. A spreadsheet id is the file path relative to the root without
// the extension; a folder id is a directory relative to the root.
type WorkbookProvider struct {
	root string
	mu   sync.Mutex
}

// NewWorkbookProvider creates a provider rooted at dir.
func NewWorkbookProvider(dir string) *WorkbookProvider {
	return &WorkbookProvider{root: dir}
}

func (p *WorkbookProvider) path(spreadsheetID string) (string, error) {
	clean := filepath.Clean("/" + spreadsheetID)
	if clean == "/" {
		return "", eris.Wrapf(ErrSheetNotFound, "workbook: empty spreadsheet id")
	}
	return filepath.Join(p.root, clean+workbookExt), nil
}

func (p *WorkbookProvider) open(spreadsheetID string) (*xlsx.File, string, error) {
	path, err := p.path(spreadsheetID)
	if err != nil {
		return nil, "", err
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return nil, "", eris.Wrapf(ErrSheetNotFound, "workbook: spreadsheet %s", spreadsheetID)
	}
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, "", eris.Wrapf(err, "workbook: open %s", spreadsheetID)
	}
	return f, path, nil
}

func lookupSheet(f *xlsx.File, spreadsheetID, sheetName string) (*xlsx.Sheet, error) {
	sheet, ok := f.Sheet[sheetName]
	if !ok {
		return nil, eris.Wrapf(ErrSheetNotFound, "workbook: %s!%s", spreadsheetID, sheetName)
	}
	return sheet, nil
}

// SheetNames implements Provider.
func (p *WorkbookProvider) SheetNames(_ context.Context, spreadsheetID string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, _, err := p.open(spreadsheetID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.Sheets))
	for _, s := range f.Sheets {
		names = append(names, s.Name)
	}
	return names, nil
}

// ReadRange implements Provider. Only column spans ("A:ZZ") narrow the
// result; other ranges return the full sheet. Trailing empty rows are
// dropped and each row is trimmed of trailing empty cells, matching the
// shape the Sheets API returns.
func (p *WorkbookProvider) ReadRange(_ context.Context, spreadsheetID, sheetName, rng string) ([][]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, _, err := p.open(spreadsheetID)
	if err != nil {
		return nil, err
	}
	sheet, err := lookupSheet(f, spreadsheetID, sheetName)
	if err != nil {
		return nil, err
	}

	first, last, bounded := ColumnSpan(rng)
	matrix := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if row == nil {
			matrix = append(matrix, nil)
			continue
		}
		cells := make([]string, 0, len(row.Cells))
		for j, cell := range row.Cells {
			col := j + 1
			if bounded && (col < first || col > last) {
				continue
			}
			cells = append(cells, cell.String())
		}
		matrix = append(matrix, trimTrailing(cells))
	}
	for len(matrix) > 0 && len(matrix[len(matrix)-1]) == 0 {
		matrix = matrix[:len(matrix)-1]
	}
	return matrix, nil
}

func trimTrailing(cells []string) []string {
	end := len(cells)
	for end > 0 && cells[end-1] == "" {
		end--
	}
	return cells[:end]
}

// HeaderHighlights implements Provider.
func (p *WorkbookProvider) HeaderHighlights(_ context.Context, spreadsheetID, sheetName string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, _, err := p.open(spreadsheetID)
	if err != nil {
		return nil, err
	}
	sheet, err := lookupSheet(f, spreadsheetID, sheetName)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 || sheet.Rows[0] == nil {
		return []string{}, nil
	}

	var values []string
	for _, cell := range sheet.Rows[0].Cells {
		if isHighlighted(cell) {
			values = append(values, cell.String())
		}
	}
	return values, nil
}

var whiteFills = []string{"", "FFFFFFFF", "00FFFFFF", "FFFFFF"}

func isHighlighted(cell *xlsx.Cell) bool {
	style := cell.GetStyle()
	if style == nil {
		return false
	}
	pattern := strings.ToLower(style.Fill.PatternType)
	if pattern == "" || pattern == "none" || pattern == "gray125" {
		return false
	}
	return !slices.Contains(whiteFills, strings.ToUpper(style.Fill.FgColor))
}

// WriteCells implements Provider.
func (p *WorkbookProvider) WriteCells(_ context.Context, spreadsheetID, sheetName string, rowNumber int, cells map[string]string) (int, error) {
	if rowNumber < 1 {
		return 0, eris.Errorf("workbook: invalid row number %d", rowNumber)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	f, path, err := p.open(spreadsheetID)
	if err != nil {
		return 0, err
	}
	sheet, err := lookupSheet(f, spreadsheetID, sheetName)
	if err != nil {
		return 0, err
	}
	if len(sheet.Rows) == 0 || sheet.Rows[0] == nil {
		return 0, nil
	}

	header := make(map[string]int, len(sheet.Rows[0].Cells))
	for j, cell := range sheet.Rows[0].Cells {
		if name := cell.String(); name != "" {
			if _, dup := header[name]; !dup {
				header[name] = j
			}
		}
	}

	updated := 0
	for column, value := range cells {
		col, ok := header[column]
		if !ok {
			zap.L().Debug("workbook: skipping unknown column", zap.String("column", column))
			continue
		}
		sheet.Cell(rowNumber, col).SetString(value)
		updated++
	}
	if updated == 0 {
		return 0, nil
	}
	if err := f.Save(path); err != nil {
		return 0, eris.Wrapf(err, "workbook: save %s", spreadsheetID)
	}
	return updated, nil
}

// ListSpreadsheets implements FolderLister.
func (p *WorkbookProvider) ListSpreadsheets(_ context.Context, folderID string) ([]model.SpreadsheetFile, error) {
	dir := filepath.Join(p.root, filepath.Clean("/"+folderID))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.SpreadsheetFile{}, nil
		}
		return nil, eris.Wrapf(err, "workbook: list folder %s", folderID)
	}

	files := make([]model.SpreadsheetFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), workbookExt) || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		id := filepath.ToSlash(filepath.Join(strings.Trim(filepath.Clean("/"+folderID), "/"), name))
		files = append(files, model.SpreadsheetFile{ID: id, Name: name})
	}
	return files, nil
}
