package enrich

import (
	"strings"

	"github.com/sells-group/contact-enrich/internal/model"
)

// Review markers. A row with either column filled has been handled by a
// reviewer and is never enriched again.
const (
	ColByTheWay = "by the way"
	ColApproved = "approved"
)

// IsProcessed reports whether a row carries a non-blank review marker.
// Marker columns are matched case-insensitively.
func IsProcessed(row model.Row) bool {
	for col, v := range row.Data {
		if !strings.EqualFold(col, ColByTheWay) && !strings.EqualFold(col, ColApproved) {
			continue
		}
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// FilterUnprocessed returns the rows without a review marker, in order.
func FilterUnprocessed(rows []model.Row) []model.Row {
	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if !IsProcessed(r) {
			out = append(out, r)
		}
	}
	return out
}

// CountUnprocessed returns the number of rows without a review marker.
func CountUnprocessed(sheet *model.SheetData) int {
	if sheet == nil {
		return 0
	}
	n := 0
	for _, r := range sheet.Rows {
		if !IsProcessed(r) {
			n++
		}
	}
	return n
}
