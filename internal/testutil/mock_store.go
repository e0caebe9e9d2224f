// mock_store.go - In-memory RecordStore used by tests and DSN-less dev mode.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/bizdesk/backend/internal/models"
	"github.com/bizdesk/backend/internal/store"
)

// MemoryStore implements store.RecordStore in memory. Records are kept in
// insertion order, which doubles as the creation order the fuzzy matcher
// relies on. Failure injection fields let tests exercise partial and total
// batch failures.
type MemoryStore struct {
	mu           sync.RWMutex
	transactions []models.ExistingTransaction
	leads        []models.ExistingLead
	contacts     []store.NewContact
	opps         []store.NewOpportunity
	tasks        []store.NewTask

	// FailFetch makes every fetch return this error.
	FailFetch error
	// FailInsert makes every insert call fail wholesale.
	FailInsert error
	// FailRows marks these submitted-slice indices as per-row failures.
	FailRows map[int]error

	nextID int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{FailRows: make(map[int]error)}
}

// SeedTransaction adds an existing transaction and returns its id.
func (m *MemoryStore) SeedTransaction(tx models.ExistingTransaction) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.ID == "" {
		tx.ID = m.generateID("tx")
	}
	m.transactions = append(m.transactions, tx)
	return tx.ID
}

// SeedLead adds an existing lead and returns its id.
func (m *MemoryStore) SeedLead(lead models.ExistingLead) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lead.ID == "" {
		lead.ID = m.generateID("lead")
	}
	m.leads = append(m.leads, lead)
	return lead.ID
}

func (m *MemoryStore) FetchTransactions(_ context.Context, _, accountID string) ([]models.ExistingTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailFetch != nil {
		return nil, m.FailFetch
	}
	out := make([]models.ExistingTransaction, 0, len(m.transactions))
	for _, tx := range m.transactions {
		if tx.AccountID == "" || accountID == "" || tx.AccountID == accountID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *MemoryStore) FetchLeads(_ context.Context, _ string) ([]models.ExistingLead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailFetch != nil {
		return nil, m.FailFetch
	}
	out := make([]models.ExistingLead, len(m.leads))
	copy(out, m.leads)
	return out, nil
}

func (m *MemoryStore) InsertTransactions(_ context.Context, _, accountID string, txs []models.Transaction) ([]store.RowError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailInsert != nil {
		return nil, m.FailInsert
	}
	var rowErrs []store.RowError
	for i, tx := range txs {
		if err, fail := m.FailRows[i]; fail {
			rowErrs = append(rowErrs, store.RowError{Index: i, Err: err})
			continue
		}
		m.transactions = append(m.transactions, models.ExistingTransaction{
			ID:        m.generateID("tx"),
			AccountID: accountID,
			Date:      tx.Date,
			Amount:    tx.Amount,
		})
	}
	return rowErrs, nil
}

func (m *MemoryStore) InsertContacts(_ context.Context, _ string, contacts []store.NewContact) ([]store.RowError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailInsert != nil {
		return nil, m.FailInsert
	}
	var rowErrs []store.RowError
	for i, nc := range contacts {
		if err, fail := m.FailRows[i]; fail {
			rowErrs = append(rowErrs, store.RowError{Index: i, Err: err})
			continue
		}
		m.contacts = append(m.contacts, nc)
	}
	return rowErrs, nil
}

func (m *MemoryStore) InsertOpportunities(_ context.Context, _ string, opps []store.NewOpportunity) ([]store.RowError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailInsert != nil {
		return nil, m.FailInsert
	}
	var rowErrs []store.RowError
	for i, no := range opps {
		if err, fail := m.FailRows[i]; fail {
			rowErrs = append(rowErrs, store.RowError{Index: i, Err: err})
			continue
		}
		m.opps = append(m.opps, no)
	}
	return rowErrs, nil
}

func (m *MemoryStore) InsertTasks(_ context.Context, _ string, tasks []store.NewTask) ([]store.RowError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailInsert != nil {
		return nil, m.FailInsert
	}
	var rowErrs []store.RowError
	for i, nt := range tasks {
		if err, fail := m.FailRows[i]; fail {
			rowErrs = append(rowErrs, store.RowError{Index: i, Err: err})
			continue
		}
		m.tasks = append(m.tasks, nt)
	}
	return rowErrs, nil
}

func (m *MemoryStore) InsertLeadWithContacts(_ context.Context, _ string, lead models.Lead) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailInsert != nil {
		return 0, m.FailInsert
	}
	m.leads = append(m.leads, models.ExistingLead{
		ID:      m.generateID("lead"),
		Name:    lead.Name,
		Website: lead.Website,
	})
	return len(lead.Contacts), nil
}

// TransactionCount reports how many transactions the store holds.
func (m *MemoryStore) TransactionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.transactions)
}

// LeadCount reports how many leads the store holds.
func (m *MemoryStore) LeadCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.leads)
}

// ContactCount reports how many standalone contacts the store holds.
func (m *MemoryStore) ContactCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.contacts)
}

func (m *MemoryStore) generateID(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}
