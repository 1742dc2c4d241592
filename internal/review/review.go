// Package review writes reviewer-approved contact fields back to the
// source spreadsheet.
package review

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrInvalidRequest is returned for a save request missing its target.
var ErrInvalidRequest = eris.New("review: invalid request")

// CellWriter writes one row of a sheet and keeps cached reads consistent.
type CellWriter interface {
	WriteCells(ctx context.Context, spreadsheetID, sheetName string, rowNumber int, cells map[string]string) (int, error)
}

// ImageRemover drops a contact's localised images.
type ImageRemover interface {
	DeleteByUsername(username string) error
}

// Request is one reviewed row.
type Request struct {
	SpreadsheetID    string            `json:"spreadsheet_id"`
	RowNumber        int               `json:"row_number"`
	Cells            map[string]string `json:"cells"`
	LinkedInUsername string            `json:"linkedin_username,omitempty"`
}

// Result reports the outcome of a save.
type Result struct {
	UpdatedCells int `json:"updated_cells"`
}

// Service is the save path.
type Service struct {
	sheets       CellWriter
	images       ImageRemover
	primarySheet string
}

// NewService creates a save service writing to primarySheet.
func NewService(sheets CellWriter, images ImageRemover, primarySheet string) *Service {
	return &Service{sheets: sheets, images: images, primarySheet: primarySheet}
}

// Save writes the request's cells to its row of the primary sheet. Unknown
// columns are ignored by the writer. Once written, the contact's images are
// no longer needed and are removed; a failure there is only logged.
func (s *Service) Save(ctx context.Context, req Request) (*Result, error) {
	switch {
	case req.SpreadsheetID == "":
		return nil, eris.Wrap(ErrInvalidRequest, "review: missing spreadsheet id")
	case req.RowNumber < 1:
		return nil, eris.Wrapf(ErrInvalidRequest, "review: bad row number %d", req.RowNumber)
	case len(req.Cells) == 0:
		return nil, eris.Wrap(ErrInvalidRequest, "review: no cells")
	}

	log := zap.L().With(
		zap.String("spreadsheet_id", req.SpreadsheetID),
		zap.Int("row_number", req.RowNumber),
	)

	n, err := s.sheets.WriteCells(ctx, req.SpreadsheetID, s.primarySheet, req.RowNumber, req.Cells)
	if err != nil {
		return nil, eris.Wrap(err, "review: write cells")
	}
	log.Info("review: row saved", zap.Int("updated_cells", n))

	if req.LinkedInUsername != "" && s.images != nil {
		if err := s.images.DeleteByUsername(req.LinkedInUsername); err != nil {
			log.Warn("review: delete images failed", zap.String("linkedin_username", req.LinkedInUsername), zap.Error(err))
		}
	}
	return &Result{UpdatedCells: n}, nil
}
