// Package session owns the import wizard: per-session state machines and
// the manager that drives parsing, matching and the final commit.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/bizdesk/backend/internal/mapping"
	"github.com/bizdesk/backend/internal/models"
)

var (
	// ErrInvalidTransition is returned when an event arrives in a step that
	// does not accept it.
	ErrInvalidTransition = errors.New("invalid step transition")
	// ErrCommitInFlight rejects a commit attempt while one is outstanding.
	// The attempt is refused, never queued.
	ErrCommitInFlight = errors.New("a commit is already in flight")
	// ErrNothingToImport is returned when the accepted subset is empty.
	ErrNothingToImport = errors.New("no candidates eligible for import")
	// ErrSessionNotFound is returned for unknown or discarded session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrStoreUnavailable wraps record-store failures surfaced mid-step, so
	// callers can tell them apart from bad requests.
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// ImportSession is the working state of one wizard run. It is created when
// the user opens the wizard and discarded when the session closes; it is
// never persisted. All mutation goes through the transition methods below,
// which enforce the step ordering; the methods perform no I/O.
type ImportSession struct {
	ID         string
	TenantID   string
	AccountID  string
	EntityType models.EntityType
	Step       models.ImportStep

	Table      *models.ParsedTable
	Mapping    *models.FieldMapping
	Candidates []models.CandidateEntity

	IncludeDuplicates bool
	UnmatchedNames    []string
	Result            *models.ImportResult

	Committing   bool
	CreatedAt    time.Time
	LastAccessed time.Time
}

// NewImportSession starts a session at the entity-type selection step.
func NewImportSession(id, tenantID, accountID string) *ImportSession {
	now := time.Now()
	return &ImportSession{
		ID:           id,
		TenantID:     tenantID,
		AccountID:    accountID,
		Step:         models.StepSelectType,
		CreatedAt:    now,
		LastAccessed: now,
	}
}

// SelectEntityType fixes the entity type and advances to the upload step.
func (s *ImportSession) SelectEntityType(entityType models.EntityType) error {
	if s.Step != models.StepSelectType {
		return fmt.Errorf("%w: select-entity-type in step %s", ErrInvalidTransition, s.Step)
	}
	if !entityType.Valid() {
		return fmt.Errorf("unknown entity type %q", entityType)
	}
	s.EntityType = entityType
	s.Step = models.StepUpload
	return nil
}

// AttachTable stores the parsed upload, proposes a column mapping and
// advances to map-columns. The proposal always waits for confirmation.
func (s *ImportSession) AttachTable(table *models.ParsedTable) error {
	if s.Step != models.StepUpload {
		return fmt.Errorf("%w: upload in step %s", ErrInvalidTransition, s.Step)
	}
	s.Table = table
	s.Mapping = mapping.Detect(s.EntityType, table.Headers)
	s.Step = models.StepMapColumns
	return nil
}

// ConfirmMapping replaces the working mapping with the user's edited one.
// The session stays at map-columns; advancing happens via SetPreview once
// the candidates are computed.
func (s *ImportSession) ConfirmMapping(m *models.FieldMapping) error {
	if s.Step != models.StepMapColumns {
		return fmt.Errorf("%w: map-columns in step %s", ErrInvalidTransition, s.Step)
	}
	if m.EntityType != s.EntityType {
		return fmt.Errorf("mapping is for %q, session imports %q", m.EntityType, s.EntityType)
	}
	if problems := mapping.Validate(m); len(problems) > 0 {
		return fmt.Errorf("mapping incomplete: %v", problems)
	}
	s.Mapping = m
	return nil
}

// SetPreview installs the transformed, annotated candidates and advances to
// the preview step. The mapping must have passed validation first.
func (s *ImportSession) SetPreview(candidates []models.CandidateEntity, unmatchedNames []string) error {
	if s.Step != models.StepMapColumns {
		return fmt.Errorf("%w: preview in step %s", ErrInvalidTransition, s.Step)
	}
	if s.Mapping == nil || len(mapping.Validate(s.Mapping)) > 0 {
		return fmt.Errorf("mapping does not satisfy required fields")
	}
	s.Candidates = candidates
	s.UnmatchedNames = unmatchedNames
	s.Step = models.StepPreview
	return nil
}

// Back steps the wizard one step backwards. Leaving preview discards the
// candidates and their annotations: they depend on the mapping and must be
// recomputed on the next preview.
func (s *ImportSession) Back() error {
	switch s.Step {
	case models.StepPreview:
		s.Candidates = nil
		s.UnmatchedNames = nil
		s.Step = models.StepMapColumns
	case models.StepMapColumns:
		s.Table = nil
		s.Mapping = nil
		s.Step = models.StepUpload
	case models.StepUpload:
		s.EntityType = ""
		s.Step = models.StepSelectType
	default:
		return fmt.Errorf("%w: back in step %s", ErrInvalidTransition, s.Step)
	}
	return nil
}

// BeginCommit validates the commit guards, marks the session busy and
// advances to importing. It returns the indices of the accepted candidates.
// A second call while Committing is refused with ErrCommitInFlight.
func (s *ImportSession) BeginCommit(includeDuplicates bool) ([]int, error) {
	if s.Committing {
		return nil, ErrCommitInFlight
	}
	if s.Step != models.StepPreview {
		return nil, fmt.Errorf("%w: commit in step %s", ErrInvalidTransition, s.Step)
	}

	s.IncludeDuplicates = includeDuplicates
	accepted := s.acceptedIndices()
	if len(accepted) == 0 {
		return nil, ErrNothingToImport
	}

	s.Committing = true
	s.Step = models.StepImporting
	return accepted, nil
}

// FinishCommit records the outcome and completes the session.
func (s *ImportSession) FinishCommit(result *models.ImportResult) {
	s.Result = result
	s.Committing = false
	s.Step = models.StepComplete
}

// FailCommit records a whole-batch failure and returns to preview so the
// user can re-trigger the commit manually. Nothing is retried automatically.
func (s *ImportSession) FailCommit(result *models.ImportResult) {
	s.Result = result
	s.Committing = false
	s.Step = models.StepPreview
}

// acceptedIndices returns the candidates eligible for commit: valid, parent-
// matched where the type requires it, and non-duplicate unless the user
// opted in.
func (s *ImportSession) acceptedIndices() []int {
	var accepted []int
	for i := range s.Candidates {
		c := &s.Candidates[i]
		if !c.IsValid {
			continue
		}
		if s.EntityType.NeedsParentMatch() {
			if c.Match == nil || c.Match.MatchedRecordID == "" {
				continue
			}
		}
		if !s.IncludeDuplicates && c.Duplicate != nil && c.Duplicate.IsDuplicate {
			continue
		}
		accepted = append(accepted, i)
	}
	return accepted
}

// Tally pre-computes the skip counts for the result bookkeeping: for every
// valid candidate, imported + failed + skipped adds up exactly.
func (s *ImportSession) Tally() (valid, skippedDuplicates, skippedUnmatched int) {
	for i := range s.Candidates {
		c := &s.Candidates[i]
		if !c.IsValid {
			continue
		}
		valid++
		if s.EntityType.NeedsParentMatch() && (c.Match == nil || c.Match.MatchedRecordID == "") {
			skippedUnmatched++
			continue
		}
		if !s.IncludeDuplicates && c.Duplicate != nil && c.Duplicate.IsDuplicate {
			skippedDuplicates++
		}
	}
	return valid, skippedDuplicates, skippedUnmatched
}

// View renders the JSON projection served by the status endpoint.
func (s *ImportSession) View() *models.SessionView {
	view := &models.SessionView{
		ID:                s.ID,
		TenantID:          s.TenantID,
		AccountID:         s.AccountID,
		EntityType:        s.EntityType,
		Step:              s.Step,
		IncludeDuplicates: s.IncludeDuplicates,
		Committing:        s.Committing,
		CreatedAt:         s.CreatedAt,
		Result:            s.Result,
	}
	if s.Table != nil {
		view.RowCount = s.Table.RowCount()
	}
	for i := range s.Candidates {
		c := &s.Candidates[i]
		if c.IsValid {
			view.ValidCount++
		}
		if c.Duplicate != nil && c.Duplicate.IsDuplicate {
			view.DuplicateCount++
		}
		if s.EntityType.NeedsParentMatch() && c.IsValid && (c.Match == nil || c.Match.MatchedRecordID == "") {
			view.UnmatchedCount++
		}
	}
	return view
}
