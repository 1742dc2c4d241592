package model

import "slices"

// Row is one data row of a sheet. RowNumber is the 1-based position within
// the data region (the header row is not counted).
type Row struct {
	RowNumber int               `json:"row_number"`
	Data      map[string]string `json:"data"`
}

// Get returns the cell for column, or "" when the column is absent.
func (r Row) Get(column string) string {
	return r.Data[column]
}

// Update overwrites the given cells in place.
func (r *Row) Update(cells map[string]string) {
	if r.Data == nil {
		r.Data = make(map[string]string, len(cells))
	}
	for k, v := range cells {
		r.Data[k] = v
	}
}

// SheetData is a parsed sheet: ordered headers, ordered rows, and the values
// of highlighted header cells.
type SheetData struct {
	Headers      []string `json:"headers"`
	Rows         []Row    `json:"rows"`
	ColoredCells []string `json:"colored_cells"`
}

// SheetFromMatrix wraps a raw header+rows matrix. Short rows are padded with
// empty strings to the header width; cells beyond the header are dropped.
// A matrix without a header row yields an empty sheet.
func SheetFromMatrix(matrix [][]string) *SheetData {
	if len(matrix) == 0 {
		return &SheetData{Headers: []string{}, Rows: []Row{}}
	}

	headers := slices.Clone(matrix[0])
	rows := make([]Row, 0, len(matrix)-1)
	for i, raw := range matrix[1:] {
		data := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(raw) {
				data[h] = raw[j]
			} else {
				data[h] = ""
			}
		}
		rows = append(rows, Row{RowNumber: i + 1, Data: data})
	}
	return &SheetData{Headers: headers, Rows: rows}
}

// Row returns a pointer to the row with the given number, or nil.
func (s *SheetData) Row(rowNumber int) *Row {
	for i := range s.Rows {
		if s.Rows[i].RowNumber == rowNumber {
			return &s.Rows[i]
		}
	}
	return nil
}

// UpdateRow patches a row in place. Returns false when the row is unknown.
func (s *SheetData) UpdateRow(rowNumber int, cells map[string]string) bool {
	row := s.Row(rowNumber)
	if row == nil {
		return false
	}
	row.Update(cells)
	return true
}

// Clone returns a deep copy so cached sheets are never shared with callers.
func (s *SheetData) Clone() *SheetData {
	if s == nil {
		return nil
	}
	out := &SheetData{
		Headers:      slices.Clone(s.Headers),
		Rows:         make([]Row, len(s.Rows)),
		ColoredCells: slices.Clone(s.ColoredCells),
	}
	for i, r := range s.Rows {
		data := make(map[string]string, len(r.Data))
		for k, v := range r.Data {
			data[k] = v
		}
		out.Rows[i] = Row{RowNumber: r.RowNumber, Data: data}
	}
	return out
}

// FindRow returns the first row with any cell satisfying match.
func (s *SheetData) FindRow(match func(cell string) bool) *Row {
	if s == nil {
		return nil
	}
	for i := range s.Rows {
		for _, h := range s.Headers {
			if match(s.Rows[i].Data[h]) {
				return &s.Rows[i]
			}
		}
	}
	return nil
}

// PqKeywords is the matching vocabulary derived from the auxiliary sheets.
type PqKeywords struct {
	Titles           []string `json:"titles" yaml:"titles"`
	Seniority        []string `json:"seniority" yaml:"seniority"`
	NegativeKeywords []string `json:"negative_keywords" yaml:"negative"`
}

// SpreadsheetData is everything loaded for one spreadsheet.
type SpreadsheetData struct {
	ID             string     `json:"id"`
	Name           string     `json:"name,omitempty"`
	NewConnections SheetData  `json:"new_connections"`
	PqData         SheetData  `json:"pq_data"`
	Keywords       PqKeywords `json:"keywords"`
}

// SpreadsheetFile is one entry from a folder listing.
type SpreadsheetFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
