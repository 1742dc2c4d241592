// Package store persists enriched contacts.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enrich/internal/db"
	"github.com/sells-group/contact-enrich/internal/model"
)

// ErrNotFound is returned when no contact matches a lookup.
var ErrNotFound = eris.New("store: contact not found")

// ContactRecord is a persisted contact.
type ContactRecord struct {
	ID               string             `json:"id"`
	LinkedInUsername string             `json:"linkedin_username"`
	SpreadsheetID    string             `json:"spreadsheet_id"`
	RowNumber        int                `json:"row_number"`
	Contact          *model.ContactData `json:"contact"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// ContactFilter specifies criteria for listing contacts.
type ContactFilter struct {
	SpreadsheetID string `json:"spreadsheet_id,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for enriched contacts.
type Store interface {
	// UpsertContact inserts or replaces the contact keyed by its LinkedIn
	// username. Repeating the call with the same contact is a no-op.
	UpsertContact(ctx context.Context, c *model.ContactData) error
	GetContact(ctx context.Context, username string) (*ContactRecord, error)
	ListContacts(ctx context.Context, filter ContactFilter) ([]ContactRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const contactsTable = "contacts"

var contactColumns = []string{"id", "linkedin_username", "spreadsheet_id", "row_number", "data", "created_at", "updated_at"}

func contactUpsertSQL(ph db.Placeholder) (string, error) {
	return db.UpsertSQL(db.UpsertConfig{
		Table:        contactsTable,
		Columns:      contactColumns,
		ConflictKeys: []string{"linkedin_username"},
		UpdateCols:   []string{"spreadsheet_id", "row_number", "data", "updated_at"},
		Placeholder:  ph,
	})
}

func validateContact(c *model.ContactData) error {
	if c == nil {
		return eris.New("store: nil contact")
	}
	if c.LinkedInUsername == "" {
		return eris.New("store: contact has no linkedin username")
	}
	return nil
}

func listLimit(filter ContactFilter) int {
	if filter.Limit <= 0 {
		return 100
	}
	return filter.Limit
}
