package models

import "time"

// ImportStep is the wizard position of an import session. Steps advance in
// strict forward order; only map-columns allows re-entry from preview.
type ImportStep string

const (
	StepSelectType ImportStep = "select-entity-type"
	StepUpload     ImportStep = "upload"
	StepMapColumns ImportStep = "map-columns"
	StepPreview    ImportStep = "preview"
	StepImporting  ImportStep = "importing"
	StepComplete   ImportStep = "complete"
)

// ImportResult is the final accounting of a commit. For every valid candidate
// considered, Imported + Failed + SkippedDuplicates + SkippedUnmatched adds
// up to the valid candidate count.
type ImportResult struct {
	Success            bool     `json:"success"`
	Imported           int      `json:"imported"`
	Failed             int      `json:"failed"`
	SkippedDuplicates  int      `json:"skipped_duplicates"`
	SkippedUnmatched   int      `json:"skipped_unmatched"`
	SubEntitiesCreated int      `json:"sub_entities_created"`
	Errors             []string `json:"errors"`
	UnmatchedNames     []string `json:"unmatched_names"`
}

// SessionView is the JSON projection of an import session returned by the
// status endpoint.
type SessionView struct {
	ID                string        `json:"id"`
	TenantID          string        `json:"tenantId"`
	AccountID         string        `json:"accountId,omitempty"`
	EntityType        EntityType    `json:"entityType"`
	Step              ImportStep    `json:"step"`
	RowCount          int           `json:"rowCount"`
	ValidCount        int           `json:"validCount"`
	DuplicateCount    int           `json:"duplicateCount"`
	UnmatchedCount    int           `json:"unmatchedCount"`
	IncludeDuplicates bool          `json:"includeDuplicates"`
	Committing        bool          `json:"committing"`
	CreatedAt         time.Time     `json:"createdAt"`
	Result            *ImportResult `json:"result,omitempty"`
}
