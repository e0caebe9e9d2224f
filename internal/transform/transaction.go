package transform

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bizdesk/backend/internal/mapping"
	"github.com/bizdesk/backend/internal/models"
)

// TransactionTransformer builds financial transaction candidates. The sign
// convention of the source is preserved: a single amount column is taken
// as-is, while separate debit/credit columns are combined into one signed
// value (debit negative, credit positive).
type TransactionTransformer struct{}

func (t *TransactionTransformer) EntityType() models.EntityType {
	return models.EntityTransaction
}

func (t *TransactionTransformer) Transform(table *models.ParsedTable, m *models.FieldMapping) []models.CandidateEntity {
	candidates := make([]models.CandidateEntity, 0, table.RowCount())

	for row := 0; row < table.RowCount(); row++ {
		c := models.CandidateEntity{RowIndex: row, IsValid: true}
		tx := &models.Transaction{}

		dateStr := cell(table, row, m, mapping.FieldDate)
		if dateStr == "" {
			invalidate(&c, "date is missing")
		} else if d, ok := parseDate(dateStr); ok {
			tx.Date = d
		} else {
			invalidate(&c, fmt.Sprintf("unparseable date %q", dateStr))
		}

		amount, errMsg := resolveAmount(table, row, m)
		if errMsg != "" {
			invalidate(&c, errMsg)
		} else {
			tx.Amount = amount
		}

		tx.Description = cell(table, row, m, mapping.FieldDescription)
		if tx.Description == "" {
			invalidate(&c, "description is missing")
		}

		tx.Category = normalizeEnum(cell(table, row, m, mapping.FieldCategory), models.TransactionCategory)

		c.Transaction = tx
		candidates = append(candidates, c)
	}

	return candidates
}

// resolveAmount picks the signed amount from either the single amount column
// or the debit/credit pair. A row with non-zero values in both debit and
// credit is ambiguous and rejected.
func resolveAmount(table *models.ParsedTable, row int, m *models.FieldMapping) (decimal.Decimal, string) {
	if m.IsMapped(mapping.FieldAmount) {
		raw := cell(table, row, m, mapping.FieldAmount)
		if raw == "" {
			return decimal.Zero, "amount is missing"
		}
		d, ok := parseMoney(raw)
		if !ok {
			return decimal.Zero, fmt.Sprintf("unparseable amount %q", raw)
		}
		return d, ""
	}

	debitRaw := cell(table, row, m, mapping.FieldDebit)
	creditRaw := cell(table, row, m, mapping.FieldCredit)

	var debit, credit decimal.Decimal
	if debitRaw != "" {
		d, ok := parseMoney(debitRaw)
		if !ok {
			return decimal.Zero, fmt.Sprintf("unparseable debit %q", debitRaw)
		}
		debit = d.Abs()
	}
	if creditRaw != "" {
		d, ok := parseMoney(creditRaw)
		if !ok {
			return decimal.Zero, fmt.Sprintf("unparseable credit %q", creditRaw)
		}
		credit = d.Abs()
	}

	switch {
	case !debit.IsZero() && !credit.IsZero():
		return decimal.Zero, "both debit and credit are set"
	case !debit.IsZero():
		return debit.Neg(), ""
	case !credit.IsZero():
		return credit, ""
	case debitRaw == "" && creditRaw == "":
		return decimal.Zero, "amount is missing"
	}
	return decimal.Zero, ""
}
