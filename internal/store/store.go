// Package store is the relational boundary of the import pipeline: fetching
// existing records for duplicate and match checks, and batch-inserting
// accepted candidates.
package store

import (
	"context"

	"github.com/bizdesk/backend/internal/models"
)

// RowError reports the failure of a single row inside a batch insert. Index
// is the position in the submitted slice, not the source file row.
type RowError struct {
	Index int
	Err   error
}

// NewContact is a contact candidate bound to its resolved parent lead.
type NewContact struct {
	Contact models.Contact
	LeadID  string
}

// NewOpportunity is an opportunity candidate bound to its resolved lead.
type NewOpportunity struct {
	Opportunity models.Opportunity
	LeadID      string
}

// NewTask is a task candidate bound to its resolved lead.
type NewTask struct {
	Task   models.Task
	LeadID string
}

// RecordStore is the storage boundary consumed by the orchestrator. Batch
// inserts are not atomic: each row succeeds or fails independently and the
// per-row failures come back as RowErrors. A non-nil error return means the
// whole call failed and nothing can be assumed inserted beyond what the
// RowErrors already reported.
//
// Fetches return records in creation order; fuzzy matching relies on that
// order for its tie-break.
type RecordStore interface {
	FetchTransactions(ctx context.Context, tenantID, accountID string) ([]models.ExistingTransaction, error)
	FetchLeads(ctx context.Context, tenantID string) ([]models.ExistingLead, error)

	InsertTransactions(ctx context.Context, tenantID, accountID string, txs []models.Transaction) ([]RowError, error)
	InsertContacts(ctx context.Context, tenantID string, contacts []NewContact) ([]RowError, error)
	InsertOpportunities(ctx context.Context, tenantID string, opps []NewOpportunity) ([]RowError, error)
	InsertTasks(ctx context.Context, tenantID string, tasks []NewTask) ([]RowError, error)

	// InsertLeadWithContacts creates a lead together with its nested
	// contact-slot rows in one logical call and returns the number of
	// contact rows created.
	InsertLeadWithContacts(ctx context.Context, tenantID string, lead models.Lead) (contactsCreated int, err error)
}
