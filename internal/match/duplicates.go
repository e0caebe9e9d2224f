package match

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bizdesk/backend/internal/models"
)

// transactionKey builds the equality-tuple key for the duplicate index.
// Amounts are keyed at fixed scale so "-50" and "-50.00" collide as they
// should regardless of how the source or the database rendered them.
func transactionKey(date time.Time, amount decimal.Decimal) string {
	return date.Format("2006-01-02") + "|" + amount.StringFixed(4)
}

// AnnotateTransactionDuplicates flags candidates whose (date, signed amount)
// tuple matches an existing transaction or an earlier row of the same file.
// The existing set is already scoped to the session's tenant and account by
// the fetch, which completes the (date, amount, account) equality tuple.
// Within the file the first occurrence wins; repeats are flagged.
func AnnotateTransactionDuplicates(candidates []models.CandidateEntity, existing []models.ExistingTransaction) {
	index := make(map[string]string, len(existing))
	for _, tx := range existing {
		index[transactionKey(tx.Date, tx.Amount)] = tx.ID
	}

	for i := range candidates {
		c := &candidates[i]
		ann := &models.DuplicateAnnotation{}
		if c.IsValid && c.Transaction != nil {
			key := transactionKey(c.Transaction.Date, c.Transaction.Amount)
			if id, ok := index[key]; ok {
				ann.IsDuplicate = true
				ann.MatchedExistingID = id
			} else {
				index[key] = ""
			}
		}
		c.Duplicate = ann
	}
}

// AnnotateLeadDuplicates flags candidates matching an existing lead, or an
// earlier row of the same file, on normalized name or on normalized website
// domain.
func AnnotateLeadDuplicates(candidates []models.CandidateEntity, existing []models.ExistingLead) {
	byName := make(map[string]string, len(existing))
	byDomain := make(map[string]string, len(existing))
	for _, lead := range existing {
		if key := NormalizeName(lead.Name); key != "" {
			if _, taken := byName[key]; !taken {
				byName[key] = lead.ID
			}
		}
		if key := NormalizeDomain(lead.Website); key != "" {
			if _, taken := byDomain[key]; !taken {
				byDomain[key] = lead.ID
			}
		}
	}

	for i := range candidates {
		c := &candidates[i]
		ann := &models.DuplicateAnnotation{}
		if c.IsValid && c.Lead != nil {
			nameKey := NormalizeName(c.Lead.Name)
			domainKey := NormalizeDomain(c.Lead.Website)

			if id, ok := byName[nameKey]; ok && nameKey != "" {
				ann.IsDuplicate = true
				ann.MatchedExistingID = id
			} else if id, ok := byDomain[domainKey]; ok && domainKey != "" {
				ann.IsDuplicate = true
				ann.MatchedExistingID = id
			} else {
				// First occurrence in the file claims both keys.
				if nameKey != "" {
					byName[nameKey] = ""
				}
				if domainKey != "" {
					byDomain[domainKey] = ""
				}
			}
		}
		c.Duplicate = ann
	}
}
