package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bizdesk/backend/internal/match"
	"github.com/bizdesk/backend/internal/models"
	"github.com/bizdesk/backend/internal/parser"
	"github.com/bizdesk/backend/internal/store"
	"github.com/bizdesk/backend/internal/transform"
)

// DefaultMaxSessions caps concurrent sessions to bound memory use.
const DefaultMaxSessions = 50

// Manager owns the active import sessions. The manager lock guards only the
// map; each session carries its own lock so one session's network-bound
// steps never stall another's.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState

	records      store.RecordStore
	transformers *transform.Registry
	maxSessions  int
}

type sessionState struct {
	mu sync.Mutex
	s  *ImportSession
}

// NewManager creates a session manager backed by the given record store.
func NewManager(records store.RecordStore) *Manager {
	return &Manager{
		sessions:     make(map[string]*sessionState),
		records:      records,
		transformers: transform.NewRegistry(),
		maxSessions:  DefaultMaxSessions,
	}
}

// SetMaxSessions overrides the concurrent session cap.
func (m *Manager) SetMaxSessions(n int) {
	if n > 0 {
		m.maxSessions = n
	}
}

// Create starts a new session scoped to a tenant (and account, for
// transaction imports). When an entity type is supplied the select step is
// taken immediately.
func (m *Manager) Create(tenantID, accountID string, entityType models.EntityType) (*models.SessionView, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}

	m.mu.Lock()
	if len(m.sessions) >= m.maxSessions {
		m.evictCompletedLocked()
	}
	if len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, fmt.Errorf("session limit reached (%d)", m.maxSessions)
	}

	id := uuid.New().String()
	s := NewImportSession(id, tenantID, accountID)
	m.sessions[id] = &sessionState{s: s}
	m.mu.Unlock()

	if entityType != "" {
		if err := s.SelectEntityType(entityType); err != nil {
			m.Delete(id)
			return nil, err
		}
	}

	fmt.Printf("[Import %s] Session created (tenant=%s, type=%s)\n", short(id), tenantID, entityType)
	return s.View(), nil
}

// Get returns the status view of a session.
func (m *Manager) Get(id string) (*models.SessionView, bool) {
	state, ok := m.state(id)
	if !ok {
		return nil, false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	state.s.LastAccessed = time.Now()
	return state.s.View(), true
}

// SelectEntityType handles a deferred entity-type selection.
func (m *Manager) SelectEntityType(id string, entityType models.EntityType) error {
	return m.withSession(id, func(s *ImportSession) error {
		return s.SelectEntityType(entityType)
	})
}

// Upload parses the raw file and attaches the table, advancing the session
// to map-columns. A parse failure leaves the session at upload.
func (m *Manager) Upload(id string, data []byte, delimiter rune) error {
	table, err := parser.Parse(data, delimiter)
	if err != nil {
		return err
	}
	return m.withSession(id, func(s *ImportSession) error {
		if err := s.AttachTable(table); err != nil {
			return err
		}
		fmt.Printf("[Import %s] Parsed %d rows, %d headers\n", short(id), table.RowCount(), len(table.Headers))
		return nil
	})
}

// Mapping returns the current (proposed or confirmed) mapping and headers.
func (m *Manager) Mapping(id string) (*models.FieldMapping, []string, error) {
	state, ok := m.state(id)
	if !ok {
		return nil, nil, ErrSessionNotFound
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.s.Mapping == nil || state.s.Table == nil {
		return nil, nil, fmt.Errorf("no file uploaded yet")
	}
	return state.s.Mapping, state.s.Table.Headers, nil
}

// ConfirmMapping applies the user-edited mapping.
func (m *Manager) ConfirmMapping(id string, mapping *models.FieldMapping) error {
	return m.withSession(id, func(s *ImportSession) error {
		return s.ConfirmMapping(mapping)
	})
}

// Back steps the session backwards one step.
func (m *Manager) Back(id string) error {
	return m.withSession(id, func(s *ImportSession) error {
		return s.Back()
	})
}

// Preview transforms the rows under the confirmed mapping, runs the match
// and duplicate engines, and advances the session to preview. It is safe to
// call again after stepping back to map-columns: candidates and annotations
// are recomputed from scratch.
func (m *Manager) Preview(ctx context.Context, id string) ([]models.CandidateEntity, error) {
	state, ok := m.state(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	s := state.s
	s.LastAccessed = time.Now()

	if s.Step != models.StepMapColumns {
		return nil, fmt.Errorf("%w: preview in step %s", ErrInvalidTransition, s.Step)
	}

	tr, err := m.transformers.Get(s.EntityType)
	if err != nil {
		return nil, err
	}
	candidates := tr.Transform(s.Table, s.Mapping)

	var unmatched []string
	switch {
	case s.EntityType == models.EntityTransaction:
		existing, err := m.records.FetchTransactions(ctx, s.TenantID, s.AccountID)
		if err != nil {
			return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrStoreUnavailable, err)
		}
		match.AnnotateTransactionDuplicates(candidates, existing)
	case s.EntityType == models.EntityLead:
		existing, err := m.records.FetchLeads(ctx, s.TenantID)
		if err != nil {
			return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrStoreUnavailable, err)
		}
		match.AnnotateLeadDuplicates(candidates, existing)
	case s.EntityType.NeedsParentMatch():
		leads, err := m.records.FetchLeads(ctx, s.TenantID)
		if err != nil {
			return nil, fmt.Errorf("%w: lead fetch failed: %v", ErrStoreUnavailable, err)
		}
		unmatched = match.AnnotateNames(candidates, leads)
	}

	if err := s.SetPreview(candidates, unmatched); err != nil {
		return nil, err
	}

	valid, dups, unm := s.Tally()
	fmt.Printf("[Import %s] Preview ready: %d rows, %d valid, %d duplicates, %d unmatched\n",
		short(id), len(candidates), valid, dups, unm)
	return candidates, nil
}

// Candidates returns the annotated preview rows.
func (m *Manager) Candidates(id string) ([]models.CandidateEntity, error) {
	state, ok := m.state(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.s.Step != models.StepPreview && state.s.Step != models.StepComplete {
		return nil, fmt.Errorf("no preview computed in step %s", state.s.Step)
	}
	return state.s.Candidates, nil
}

// Commit filters the accepted subset and submits it to the record store.
// The session lock is released during the network call; a concurrent commit
// attempt is rejected by the busy flag, never queued. A whole-batch failure
// returns the session to preview for a manual re-trigger.
func (m *Manager) Commit(ctx context.Context, id string, includeDuplicates bool) (*models.ImportResult, error) {
	state, ok := m.state(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	state.mu.Lock()
	s := state.s
	s.LastAccessed = time.Now()

	accepted, err := s.BeginCommit(includeDuplicates)
	if err != nil {
		state.mu.Unlock()
		return nil, err
	}

	// Snapshot everything the network call needs before releasing the lock.
	valid, skippedDup, skippedUnm := s.Tally()
	snapshot := make([]models.CandidateEntity, len(accepted))
	for i, idx := range accepted {
		snapshot[i] = s.Candidates[idx]
	}
	entityType := s.EntityType
	tenantID, accountID := s.TenantID, s.AccountID
	unmatchedNames := append([]string(nil), s.UnmatchedNames...)
	state.mu.Unlock()

	fmt.Printf("[Import %s] Committing %d of %d valid candidates\n", short(id), len(snapshot), valid)

	result, totalFailure := m.executeCommit(ctx, entityType, tenantID, accountID, snapshot)
	result.SkippedDuplicates = skippedDup
	result.SkippedUnmatched = skippedUnm
	result.UnmatchedNames = unmatchedNames
	result.Success = result.Failed == 0

	state.mu.Lock()
	if totalFailure {
		s.FailCommit(result)
	} else {
		s.FinishCommit(result)
	}
	state.mu.Unlock()

	fmt.Printf("[Import %s] Commit done: imported=%d failed=%d skipped_dup=%d skipped_unmatched=%d\n",
		short(id), result.Imported, result.Failed, result.SkippedDuplicates, result.SkippedUnmatched)
	return result, nil
}

// executeCommit drives the store boundary for one entity type and folds the
// per-row outcomes into an ImportResult. Row errors identify the source row
// by its 1-based data row number. totalFailure reports that the whole batch
// call failed, as opposed to independent per-row failures.
func (m *Manager) executeCommit(ctx context.Context, entityType models.EntityType, tenantID, accountID string, accepted []models.CandidateEntity) (result *models.ImportResult, totalFailure bool) {
	result = &models.ImportResult{Errors: []string{}, UnmatchedNames: []string{}}

	fail := func(idx int, err error) {
		result.Failed++
		result.Errors = append(result.Errors,
			fmt.Sprintf("row %d: %v", accepted[idx].RowIndex+1, err))
	}
	failAll := func(err error) {
		result.Failed = len(accepted)
		result.Imported = 0
		result.Errors = append(result.Errors, fmt.Sprintf("batch insert failed: %v", err))
	}

	switch entityType {
	case models.EntityTransaction:
		payload := make([]models.Transaction, len(accepted))
		for i, c := range accepted {
			payload[i] = *c.Transaction
		}
		rowErrs, err := m.records.InsertTransactions(ctx, tenantID, accountID, payload)
		if err != nil {
			failAll(err)
			return result, true
		}
		result.Imported = len(accepted) - len(rowErrs)
		for _, re := range rowErrs {
			fail(re.Index, re.Err)
		}

	case models.EntityLead:
		for i, c := range accepted {
			created, err := m.records.InsertLeadWithContacts(ctx, tenantID, *c.Lead)
			if err != nil {
				fail(i, err)
				continue
			}
			result.Imported++
			result.SubEntitiesCreated += created
		}

	case models.EntityContact:
		payload := make([]store.NewContact, len(accepted))
		for i, c := range accepted {
			payload[i] = store.NewContact{Contact: *c.Contact, LeadID: c.Match.MatchedRecordID}
		}
		rowErrs, err := m.records.InsertContacts(ctx, tenantID, payload)
		if err != nil {
			failAll(err)
			return result, true
		}
		result.Imported = len(accepted) - len(rowErrs)
		for _, re := range rowErrs {
			fail(re.Index, re.Err)
		}

	case models.EntityOpportunity:
		payload := make([]store.NewOpportunity, len(accepted))
		for i, c := range accepted {
			payload[i] = store.NewOpportunity{Opportunity: *c.Opportunity, LeadID: c.Match.MatchedRecordID}
		}
		rowErrs, err := m.records.InsertOpportunities(ctx, tenantID, payload)
		if err != nil {
			failAll(err)
			return result, true
		}
		result.Imported = len(accepted) - len(rowErrs)
		for _, re := range rowErrs {
			fail(re.Index, re.Err)
		}

	case models.EntityTask:
		payload := make([]store.NewTask, len(accepted))
		for i, c := range accepted {
			payload[i] = store.NewTask{Task: *c.Task, LeadID: c.Match.MatchedRecordID}
		}
		rowErrs, err := m.records.InsertTasks(ctx, tenantID, payload)
		if err != nil {
			failAll(err)
			return result, true
		}
		result.Imported = len(accepted) - len(rowErrs)
		for _, re := range rowErrs {
			fail(re.Index, re.Err)
		}
	}

	return result, false
}

// Result returns the commit outcome once available.
func (m *Manager) Result(id string) (*models.ImportResult, bool) {
	state, ok := m.state(id)
	if !ok {
		return nil, false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.s.Result == nil {
		return nil, false
	}
	return state.s.Result, true
}

// ActiveSessions returns the number of live sessions.
func (m *Manager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Delete abandons a session, discarding its in-memory state. A commit
// already in flight completes or fails on its own.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	fmt.Printf("[Import %s] Session discarded\n", short(id))
	return true
}

// Touch refreshes a session's keep-alive timestamp.
func (m *Manager) Touch(id string) bool {
	state, ok := m.state(id)
	if !ok {
		return false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	state.s.LastAccessed = time.Now()
	return true
}

// CleanupOldSessions drops sessions idle for longer than maxAge. Sessions
// with a commit in flight are never removed.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, state := range m.sessions {
		state.mu.Lock()
		idle := state.s.LastAccessed.Before(cutoff) && !state.s.Committing
		state.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			fmt.Printf("[Import %s] Cleaned up idle session\n", short(id))
		}
	}
}

// evictCompletedLocked frees capacity by dropping completed sessions.
// Caller holds m.mu.
func (m *Manager) evictCompletedLocked() {
	for id, state := range m.sessions {
		state.mu.Lock()
		done := state.s.Step == models.StepComplete
		state.mu.Unlock()
		if done {
			delete(m.sessions, id)
		}
	}
}

func (m *Manager) state(id string) (*sessionState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.sessions[id]
	return state, ok
}

func (m *Manager) withSession(id string, fn func(*ImportSession) error) error {
	state, ok := m.state(id)
	if !ok {
		return ErrSessionNotFound
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	state.s.LastAccessed = time.Now()
	return fn(state.s)
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
