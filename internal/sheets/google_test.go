package sheets

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enrich/pkg/gsheets"
	"github.com/sells-group/contact-enrich/pkg/gsheets/mocks"
)

func TestGoogleProvider_SheetNames(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Spreadsheet", mock.Anything, "abc").Return(&gsheets.Spreadsheet{
		Sheets: []gsheets.Sheet{
			{Properties: gsheets.SheetProperties{Title: "New Connections"}},
			{Properties: gsheets.SheetProperties{Title: "Acme pq"}},
		},
	}, nil)

	p := NewGoogleProvider(client)
	names, err := p.SheetNames(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"New Connections", "Acme pq"}, names)
}

func TestGoogleProvider_ReadRange_MissingSheet(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Values", mock.Anything, "abc", "'Acme pq'!A:ZZ").Return(nil, &gsheets.APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "Unable to parse range: 'Acme pq'!A:ZZ",
	})

	p := NewGoogleProvider(client)
	_, err := p.ReadRange(context.Background(), "abc", "Acme pq", "A:ZZ")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestGoogleProvider_ReadRange_OtherError(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Values", mock.Anything, "abc", "'New Connections'!A:ZZ").Return(nil, &gsheets.APIError{
		StatusCode: http.StatusForbidden,
		Message:    "The caller does not have permission",
	})

	p := NewGoogleProvider(client)
	_, err := p.ReadRange(context.Background(), "abc", "New Connections", "A:ZZ")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSheetNotFound)
}

func TestGoogleProvider_HeaderHighlights(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("CellFormats", mock.Anything, "abc", "'New Connections'!1:1").Return([]gsheets.CellData{
		{FormattedValue: "First Name", EffectiveFormat: &gsheets.CellFormat{BackgroundColor: &gsheets.Color{Red: 1, Green: 1, Blue: 1}}},
		{FormattedValue: "Company", EffectiveFormat: &gsheets.CellFormat{BackgroundColor: &gsheets.Color{Red: 1, Green: 1}}},
		{FormattedValue: "Notes"},
	}, nil)

	p := NewGoogleProvider(client)
	values, err := p.HeaderHighlights(context.Background(), "abc", "New Connections")
	require.NoError(t, err)
	assert.Equal(t, []string{"Company"}, values)
}

func TestGoogleProvider_WriteCells(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Values", mock.Anything, "abc", "'New Connections'!1:1").Return(&gsheets.ValueRange{
		Values: [][]string{{"First Name", "Notes"}},
	}, nil)
	client.On("BatchUpdateValues", mock.Anything, "abc", []gsheets.ValueRange{
		{Range: "'New Connections'!B3", Values: [][]string{{"COBOL"}}},
	}).Return(&gsheets.BatchUpdateResponse{TotalUpdatedCells: 1}, nil)

	p := NewGoogleProvider(client)
	n, err := p.WriteCells(context.Background(), "abc", "New Connections", 2, map[string]string{
		"Notes":   "COBOL",
		"Unknown": "x",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGoogleProvider_WriteCells_NoKnownColumns(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Values", mock.Anything, "abc", "'New Connections'!1:1").Return(&gsheets.ValueRange{
		Values: [][]string{{"First Name"}},
	}, nil)

	p := NewGoogleProvider(client)
	n, err := p.WriteCells(context.Background(), "abc", "New Connections", 1, map[string]string{"Unknown": "x"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestGoogleProvider_ListSpreadsheets(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("ListSpreadsheets", mock.Anything, "folder").Return([]gsheets.File{{ID: "s1", Name: "Acme"}}, nil)

	p := NewGoogleProvider(client)
	files, err := p.ListSpreadsheets(context.Background(), "folder")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "s1", files[0].ID)
	assert.Equal(t, "Acme", files[0].Name)
}
