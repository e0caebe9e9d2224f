package transform

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdesk/backend/internal/mapping"
	"github.com/bizdesk/backend/internal/models"
)

func txMapping(fields map[string]int) *models.FieldMapping {
	return &models.FieldMapping{EntityType: models.EntityTransaction, Fields: fields}
}

func TestTransactionTransformBasic(t *testing.T) {
	table := &models.ParsedTable{
		Headers: []string{"Date", "Amount", "Memo"},
		Rows: [][]string{
			{"2024-01-01", "-50.00", "Coffee"},
			{"2024-01-02", "1200.00", "Payroll"},
		},
	}
	m := txMapping(map[string]int{
		mapping.FieldDate: 0, mapping.FieldAmount: 1, mapping.FieldDescription: 2,
	})

	candidates := (&TransactionTransformer{}).Transform(table, m)
	require.Len(t, candidates, 2)

	first := candidates[0]
	assert.True(t, first.IsValid)
	assert.Equal(t, "Coffee", first.Transaction.Description)
	assert.True(t, first.Transaction.Amount.Equal(decimal.RequireFromString("-50.00")))
	assert.Equal(t, 2024, first.Transaction.Date.Year())
	assert.Equal(t, "uncategorized", first.Transaction.Category)
}

func TestTransactionDebitCreditCombination(t *testing.T) {
	table := &models.ParsedTable{
		Headers: []string{"Date", "Debit", "Credit", "Memo"},
		Rows: [][]string{
			{"2024-01-01", "50.00", "", "Coffee"},
			{"2024-01-02", "", "1200.00", "Payroll"},
			{"2024-01-03", "10.00", "20.00", "Ambiguous"},
			{"2024-01-04", "", "", "Nothing"},
		},
	}
	m := txMapping(map[string]int{
		mapping.FieldDate: 0, mapping.FieldDebit: 1, mapping.FieldCredit: 2, mapping.FieldDescription: 3,
	})

	candidates := (&TransactionTransformer{}).Transform(table, m)
	require.Len(t, candidates, 4)

	assert.True(t, candidates[0].IsValid)
	assert.True(t, candidates[0].Transaction.Amount.IsNegative(), "debit must be negative")

	assert.True(t, candidates[1].IsValid)
	assert.True(t, candidates[1].Transaction.Amount.IsPositive(), "credit must be positive")

	assert.False(t, candidates[2].IsValid, "both debit and credit set is ambiguous")
	assert.Contains(t, candidates[2].ValidationErrors, "both debit and credit are set")

	assert.False(t, candidates[3].IsValid, "no amount at all")
}

func TestTransactionInvalidRowsStillTransformed(t *testing.T) {
	table := &models.ParsedTable{
		Headers: []string{"Date", "Amount", "Memo"},
		Rows: [][]string{
			{"not a date", "12.00", "Lunch"},
			{"2024-03-01", "abc", ""},
		},
	}
	m := txMapping(map[string]int{
		mapping.FieldDate: 0, mapping.FieldAmount: 1, mapping.FieldDescription: 2,
	})

	candidates := (&TransactionTransformer{}).Transform(table, m)
	require.Len(t, candidates, 2)

	assert.False(t, candidates[0].IsValid)
	// Best effort: amount and description survive even though the date failed.
	assert.Equal(t, "Lunch", candidates[0].Transaction.Description)
	assert.True(t, candidates[0].Transaction.Amount.Equal(decimal.RequireFromString("12")))

	assert.False(t, candidates[1].IsValid)
	assert.Len(t, candidates[1].ValidationErrors, 2)
}

func TestTransactionMoneyFormats(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"1,200.00", "1200"},
		{"$45.99", "45.99"},
		{"(50.00)", "-50"},
		{"-3", "-3"},
	}

	for _, tc := range cases {
		d, ok := parseMoney(tc.raw)
		require.True(t, ok, "parseMoney(%q)", tc.raw)
		assert.True(t, d.Equal(decimal.RequireFromString(tc.want)), "parseMoney(%q) = %s", tc.raw, d)
	}

	_, ok := parseMoney("twelve")
	assert.False(t, ok)
}

func TestLeadTransformWithContactSlots(t *testing.T) {
	table := &models.ParsedTable{
		Headers: []string{"Company", "Website", "C1 First", "C1 Email", "C2 First", "C2 Email"},
		Rows: [][]string{
			{"Acme Corp", "acme.com", "Jane", "jane@acme.com", "Bob", "bob@acme.com"},
			{"Globex", "globex.io", "Ann", "ann@globex.io", "", ""},
			{"", "nobody.com", "", "", "", ""},
		},
	}
	m := &models.FieldMapping{
		EntityType: models.EntityLead,
		Fields:     map[string]int{mapping.FieldName: 0, mapping.FieldWebsite: 1},
		ContactSlots: []models.ContactSlotMapping{
			{Fields: map[string]int{mapping.FieldFirstName: 2, mapping.FieldEmail: 3}},
			{Fields: map[string]int{mapping.FieldFirstName: 4, mapping.FieldEmail: 5}},
		},
	}

	candidates := (&LeadTransformer{}).Transform(table, m)
	require.Len(t, candidates, 3)

	assert.True(t, candidates[0].IsValid)
	require.Len(t, candidates[0].Lead.Contacts, 2)
	assert.Equal(t, "jane@acme.com", candidates[0].Lead.Contacts[0].Email)

	// Empty second slot is skipped, not emitted as a blank contact.
	require.Len(t, candidates[1].Lead.Contacts, 1)

	assert.False(t, candidates[2].IsValid, "missing lead name")
}

func TestEnumNormalization(t *testing.T) {
	assert.Equal(t, "qualified", normalizeEnum("Qualified", models.LeadStatuses))
	assert.Equal(t, "closed_won", normalizeEnum("Closed Won", models.OpportunityStages))
	assert.Equal(t, "new", normalizeEnum("something weird", models.LeadStatuses), "unknown value falls back to default")
	assert.Equal(t, "normal", normalizeEnum("", models.TaskPriorities))
}

func TestTaskOptionalDueDate(t *testing.T) {
	table := &models.ParsedTable{
		Headers: []string{"Task", "Due", "Lead"},
		Rows: [][]string{
			{"Call back", "2024-05-01", "Acme Corp"},
			{"Send deck", "whenever", "Acme Corp"},
		},
	}
	m := &models.FieldMapping{
		EntityType: models.EntityTask,
		Fields: map[string]int{
			mapping.FieldTitle: 0, mapping.FieldDueDate: 1, mapping.FieldLeadName: 2,
		},
	}

	candidates := (&TaskTransformer{}).Transform(table, m)
	require.Len(t, candidates, 2)

	require.NotNil(t, candidates[0].Task.DueDate)
	assert.True(t, candidates[1].IsValid, "unparseable optional date keeps row valid")
	assert.Nil(t, candidates[1].Task.DueDate)
}

func TestTransformDeterministic(t *testing.T) {
	table := &models.ParsedTable{
		Headers: []string{"Date", "Amount", "Memo"},
		Rows: [][]string{
			{"2024-01-01", "-50.00", "Coffee"},
			{"bad", "x", ""},
		},
	}
	m := txMapping(map[string]int{
		mapping.FieldDate: 0, mapping.FieldAmount: 1, mapping.FieldDescription: 2,
	})

	tr := &TransactionTransformer{}
	first := tr.Transform(table, m)
	second := tr.Transform(table, m)

	if !reflect.DeepEqual(first, second) {
		t.Error("transformer output differs between identical runs")
	}
}

func TestRegistryCoversAllTypes(t *testing.T) {
	r := NewRegistry()
	for _, et := range []models.EntityType{
		models.EntityTransaction, models.EntityLead, models.EntityContact,
		models.EntityOpportunity, models.EntityTask,
	} {
		tr, err := r.Get(et)
		require.NoError(t, err)
		assert.Equal(t, et, tr.EntityType())
	}

	_, err := r.Get(models.EntityType("bogus"))
	assert.Error(t, err)
}
