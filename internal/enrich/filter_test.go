package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/contact-enrich/internal/model"
)

func TestIsProcessed(t *testing.T) {
	tests := []struct {
		name string
		data map[string]string
		want bool
	}{
		{"no markers", map[string]string{"contact_first_name": "Ada"}, false},
		{"blank markers", map[string]string{"by the way": "", "approved": ""}, false},
		{"whitespace markers", map[string]string{"by the way": "   ", "approved": "\t"}, false},
		{"by the way filled", map[string]string{"by the way": "Loved your talk"}, true},
		{"approved filled", map[string]string{"approved": "x"}, true},
		{"header case ignored", map[string]string{"Approved": "yes"}, true},
		{"other column filled", map[string]string{"notes": "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProcessed(model.Row{RowNumber: 1, Data: tt.data}))
		})
	}
}

func TestFilterUnprocessed(t *testing.T) {
	sheet := model.SheetFromMatrix([][]string{
		{"contact_first_name", "by the way", "approved"},
		{"Ada", "", ""},
		{"Grace", "hi", ""},
		{"Linus", "", " yes "},
		{"Ken", " ", ""},
	})

	got := FilterUnprocessed(sheet.Rows)
	var numbers []int
	for _, r := range got {
		numbers = append(numbers, r.RowNumber)
	}
	assert.Equal(t, []int{1, 4}, numbers)
	assert.Equal(t, 2, CountUnprocessed(sheet))
}

func TestFilterUnprocessed_MarkingExcludes(t *testing.T) {
	sheet := model.SheetFromMatrix([][]string{
		{"contact_first_name", "approved"},
		{"Ada", ""},
	})
	assert.Len(t, FilterUnprocessed(sheet.Rows), 1)

	sheet.UpdateRow(1, map[string]string{"approved": "done"})
	assert.Empty(t, FilterUnprocessed(sheet.Rows))
	assert.Equal(t, 0, CountUnprocessed(sheet))
	assert.Equal(t, 0, CountUnprocessed(nil))
}
