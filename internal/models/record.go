package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExistingTransaction is the projection of an already-imported transaction
// used by the structural duplicate check.
type ExistingTransaction struct {
	ID        string
	AccountID string
	Date      time.Time
	Amount    decimal.Decimal
}

// ExistingLead is the projection of an existing lead used both by the lead
// duplicate check and by fuzzy parent-name matching. Records are fetched in
// creation order; that order is the tie-break for equal match scores.
type ExistingLead struct {
	ID      string
	Name    string
	Website string
}
