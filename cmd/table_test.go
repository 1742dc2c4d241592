package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/contact-enrich/internal/enrich"
	"github.com/sells-group/contact-enrich/internal/model"
	"github.com/sells-group/contact-enrich/internal/store"
)

func TestRenderTable_Empty(t *testing.T) {
	assert.Equal(t, "", renderTable(nil, nil, nil))
}

func TestRenderSpreadsheets(t *testing.T) {
	out := renderSpreadsheets([]enrich.SpreadsheetSummary{
		{ID: "abc123", Name: "Q3 Leads", Unprocessed: 7},
	})
	assert.Contains(t, out, "Unprocessed")
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "Q3 Leads")
	assert.Contains(t, out, "7")
}

func TestRenderContacts(t *testing.T) {
	out := renderContacts([]store.ContactRecord{
		{
			LinkedInUsername: "jdoe",
			SpreadsheetID:    "s1",
			RowNumber:        4,
			Contact:          &model.ContactData{ParsedName: "Jane Doe", ContactCompanyName: "Acme"},
			UpdatedAt:        time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
		},
		{LinkedInUsername: "nocontact"},
	})
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "2024-06-15 12:00:00")
	assert.Contains(t, out, "nocontact")
}

func TestIsTerminal_NonFile(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
}
