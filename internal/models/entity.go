package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityType selects which import pipeline variant handles a session.
type EntityType string

const (
	EntityTransaction EntityType = "transaction"
	EntityLead        EntityType = "lead"
	EntityContact     EntityType = "contact"
	EntityOpportunity EntityType = "opportunity"
	EntityTask        EntityType = "task"
)

// Valid reports whether t is one of the supported entity types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTransaction, EntityLead, EntityContact, EntityOpportunity, EntityTask:
		return true
	}
	return false
}

// NeedsParentMatch reports whether candidates of this type must resolve a
// parent lead by name before they can be committed.
func (t EntityType) NeedsParentMatch() bool {
	switch t {
	case EntityContact, EntityOpportunity, EntityTask:
		return true
	}
	return false
}

// DuplicateChecked reports whether this type is screened against existing
// records for structural duplicates.
func (t EntityType) DuplicateChecked() bool {
	return t == EntityTransaction || t == EntityLead
}

// Closed vocabularies for enumerated fields. Unrecognized source values fall
// back to the first entry rather than invalidating the row.
var (
	LeadStatuses        = []string{"new", "contacted", "qualified", "lost", "won"}
	OpportunityStages   = []string{"prospecting", "proposal", "negotiation", "closed_won", "closed_lost"}
	TaskPriorities      = []string{"normal", "low", "high", "urgent"}
	TaskStatuses        = []string{"open", "in_progress", "done"}
	TransactionCategory = []string{"uncategorized", "income", "office", "travel", "software", "payroll", "marketing", "other"}
)

// Transaction is a typed financial transaction candidate. Amount keeps the
// sign convention of the source: debits negative, credits positive.
type Transaction struct {
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
}

// LeadContact is one contact-slot row attached to an imported lead.
type LeadContact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Title     string `json:"title"`
}

// Lead is a typed CRM lead candidate, possibly carrying nested contacts.
type Lead struct {
	Name     string        `json:"name"`
	Website  string        `json:"website"`
	Industry string        `json:"industry"`
	Status   string        `json:"status"`
	Contacts []LeadContact `json:"contacts,omitempty"`
}

// Contact is a standalone contact candidate referencing a lead by name.
type Contact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	LeadName  string `json:"leadName"`
}

// Opportunity is a sales opportunity candidate referencing a lead by name.
type Opportunity struct {
	Name      string          `json:"name"`
	Value     decimal.Decimal `json:"value"`
	Stage     string          `json:"stage"`
	CloseDate *time.Time      `json:"closeDate,omitempty"`
	LeadName  string          `json:"leadName"`
}

// Task is a work item candidate referencing a lead by name.
type Task struct {
	Title    string     `json:"title"`
	DueDate  *time.Time `json:"dueDate,omitempty"`
	Priority string     `json:"priority"`
	Status   string     `json:"status"`
	LeadName string     `json:"leadName"`
}

// MatchAnnotation records the outcome of fuzzy parent-name resolution for one
// candidate. Identical reference names within a session always carry
// identical annotations.
type MatchAnnotation struct {
	MatchedRecordID string           `json:"matchedRecordId,omitempty"`
	Confidence      int              `json:"confidence"` // 0-100
	Alternatives    []MatchCandidate `json:"alternatives,omitempty"`
}

// MatchCandidate is one scored alternative considered during matching.
type MatchCandidate struct {
	RecordID   string `json:"recordId"`
	Confidence int    `json:"confidence"`
}

// DuplicateAnnotation marks a candidate that structurally matches an
// already-imported record.
type DuplicateAnnotation struct {
	IsDuplicate       bool   `json:"isDuplicate"`
	MatchedExistingID string `json:"matchedExistingId,omitempty"`
}

// CandidateEntity is one transformed row: exactly one of the typed payloads
// is set, according to the session's entity type. The payload itself is
// immutable; only the annotations are attached after creation.
type CandidateEntity struct {
	RowIndex         int      `json:"rowIndex"` // 0-based data row index
	IsValid          bool     `json:"isValid"`
	ValidationErrors []string `json:"validationErrors,omitempty"`

	Transaction *Transaction `json:"transaction,omitempty"`
	Lead        *Lead        `json:"lead,omitempty"`
	Contact     *Contact     `json:"contact,omitempty"`
	Opportunity *Opportunity `json:"opportunity,omitempty"`
	Task        *Task        `json:"task,omitempty"`

	Match     *MatchAnnotation     `json:"match,omitempty"`
	Duplicate *DuplicateAnnotation `json:"duplicate,omitempty"`
}

// ReferenceName returns the free-text parent lead reference for types that
// carry one, and "" otherwise.
func (c *CandidateEntity) ReferenceName() string {
	switch {
	case c.Contact != nil:
		return c.Contact.LeadName
	case c.Opportunity != nil:
		return c.Opportunity.LeadName
	case c.Task != nil:
		return c.Task.LeadName
	}
	return ""
}
