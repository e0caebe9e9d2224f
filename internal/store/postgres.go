package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bizdesk/backend/internal/models"
)

// PostgresStore implements RecordStore against the shared multi-tenant
// Postgres backend.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a pool for the given DSN.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) FetchTransactions(ctx context.Context, tenantID, accountID string) ([]models.ExistingTransaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, account_id, date, amount
		FROM transactions
		WHERE tenant_id = $1 AND account_id = $2
		ORDER BY created_at, id`,
		tenantID, accountID)
	if err != nil {
		return nil, fmt.Errorf("fetching transactions: %w", err)
	}
	defer rows.Close()

	var result []models.ExistingTransaction
	for rows.Next() {
		var tx models.ExistingTransaction
		var amount decimal.Decimal
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.Date, &amount); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		tx.Amount = amount
		result = append(result, tx)
	}
	return result, rows.Err()
}

func (s *PostgresStore) FetchLeads(ctx context.Context, tenantID string) ([]models.ExistingLead, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, COALESCE(website, '')
		FROM leads
		WHERE tenant_id = $1
		ORDER BY created_at, id`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("fetching leads: %w", err)
	}
	defer rows.Close()

	var result []models.ExistingLead
	for rows.Next() {
		var lead models.ExistingLead
		if err := rows.Scan(&lead.ID, &lead.Name, &lead.Website); err != nil {
			return nil, fmt.Errorf("scanning lead: %w", err)
		}
		result = append(result, lead)
	}
	return result, rows.Err()
}

func (s *PostgresStore) InsertTransactions(ctx context.Context, tenantID, accountID string, txs []models.Transaction) ([]RowError, error) {
	var rowErrs []RowError
	for i, tx := range txs {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO transactions (id, tenant_id, account_id, date, amount, description, category)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(), tenantID, accountID, tx.Date, tx.Amount, tx.Description, tx.Category)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Index: i, Err: err})
		}
	}
	return rowErrs, nil
}

func (s *PostgresStore) InsertContacts(ctx context.Context, tenantID string, contacts []NewContact) ([]RowError, error) {
	var rowErrs []RowError
	for i, nc := range contacts {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO contacts (id, tenant_id, lead_id, first_name, last_name, email, phone)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(), tenantID, nc.LeadID,
			nc.Contact.FirstName, nc.Contact.LastName, nc.Contact.Email, nc.Contact.Phone)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Index: i, Err: err})
		}
	}
	return rowErrs, nil
}

func (s *PostgresStore) InsertOpportunities(ctx context.Context, tenantID string, opps []NewOpportunity) ([]RowError, error) {
	var rowErrs []RowError
	for i, no := range opps {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO opportunities (id, tenant_id, lead_id, name, value, stage, close_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(), tenantID, no.LeadID,
			no.Opportunity.Name, no.Opportunity.Value, no.Opportunity.Stage, no.Opportunity.CloseDate)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Index: i, Err: err})
		}
	}
	return rowErrs, nil
}

func (s *PostgresStore) InsertTasks(ctx context.Context, tenantID string, tasks []NewTask) ([]RowError, error) {
	var rowErrs []RowError
	for i, nt := range tasks {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO tasks (id, tenant_id, lead_id, title, due_date, priority, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(), tenantID, nt.LeadID,
			nt.Task.Title, nt.Task.DueDate, nt.Task.Priority, nt.Task.Status)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Index: i, Err: err})
		}
	}
	return rowErrs, nil
}

// InsertLeadWithContacts inserts the lead and its contact-slot rows in one
// transaction so a lead never lands without the contacts that arrived on
// its source row.
func (s *PostgresStore) InsertLeadWithContacts(ctx context.Context, tenantID string, lead models.Lead) (int, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	leadID := uuid.New().String()
	_, err = tx.Exec(ctx, `
		INSERT INTO leads (id, tenant_id, name, website, industry, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		leadID, tenantID, lead.Name, lead.Website, lead.Industry, lead.Status)
	if err != nil {
		return 0, fmt.Errorf("inserting lead: %w", err)
	}

	created := 0
	for _, contact := range lead.Contacts {
		_, err := tx.Exec(ctx, `
			INSERT INTO contacts (id, tenant_id, lead_id, first_name, last_name, email, phone, title)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New().String(), tenantID, leadID,
			contact.FirstName, contact.LastName, contact.Email, contact.Phone, contact.Title)
		if err != nil {
			return 0, fmt.Errorf("inserting lead contact: %w", err)
		}
		created++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing lead insert: %w", err)
	}
	return created, nil
}
