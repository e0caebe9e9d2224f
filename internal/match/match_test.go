package match

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdesk/backend/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func txCandidate(row int, date, amount, desc string) models.CandidateEntity {
	return models.CandidateEntity{
		RowIndex: row,
		IsValid:  true,
		Transaction: &models.Transaction{
			Date:        day(date),
			Amount:      decimal.RequireFromString(amount),
			Description: desc,
		},
	}
}

func refCandidate(row int, leadName string) models.CandidateEntity {
	return models.CandidateEntity{
		RowIndex: row,
		IsValid:  true,
		Contact:  &models.Contact{FirstName: "X", LeadName: leadName},
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 100, Similarity("acme corp", "acme corp"))
	assert.Equal(t, 0, Similarity("", ""))
	assert.Equal(t, 0, Similarity("abc", ""))

	// One edit in nine runes is still comfortably above threshold.
	assert.GreaterOrEqual(t, Similarity("acme corp", "acme corps"), MatchThreshold)
	assert.Less(t, Similarity("acme corp", "globex industries"), MatchThreshold)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "acme corp", NormalizeName("  Acme Corp  "))
	assert.Equal(t, "acme corp", NormalizeName("acme corp."))
	assert.Equal(t, "acme corp", NormalizeName("ACME   CORP"))
}

func TestNormalizeDomain(t *testing.T) {
	assert.Equal(t, "acme.com", NormalizeDomain("https://www.acme.com/about?x=1"))
	assert.Equal(t, "acme.com", NormalizeDomain("ACME.com"))
	assert.Equal(t, "acme.com", NormalizeDomain("acme.com:8080"))
	assert.Equal(t, "", NormalizeDomain(""))
}

func TestAnnotateNamesConsistency(t *testing.T) {
	leads := []models.ExistingLead{
		{ID: "lead-1", Name: "Acme Corp"},
		{ID: "lead-2", Name: "Globex"},
	}
	candidates := []models.CandidateEntity{
		refCandidate(0, "Acme Corp"),
		refCandidate(1, "acme corp."),
		refCandidate(2, "Acme Corp"),
		refCandidate(3, "Completely Unrelated Ltd"),
	}

	unmatched := AnnotateNames(candidates, leads)

	// Case/punctuation variants of the same company resolve identically.
	require.NotNil(t, candidates[0].Match)
	assert.Equal(t, "lead-1", candidates[0].Match.MatchedRecordID)
	assert.Equal(t, "lead-1", candidates[1].Match.MatchedRecordID)
	assert.GreaterOrEqual(t, candidates[1].Match.Confidence, MatchThreshold)

	// Identical names share identical annotations.
	assert.Equal(t, *candidates[0].Match, *candidates[2].Match)

	// Below-threshold reference stays unmatched and is reported once.
	assert.Empty(t, candidates[3].Match.MatchedRecordID)
	assert.Equal(t, []string{"Completely Unrelated Ltd"}, unmatched)
}

func TestAnnotateNamesTieBreakFirstInFetchOrder(t *testing.T) {
	leads := []models.ExistingLead{
		{ID: "older", Name: "Acme Corp"},
		{ID: "newer", Name: "Acme Corp"},
	}
	candidates := []models.CandidateEntity{refCandidate(0, "Acme Corp")}

	AnnotateNames(candidates, leads)

	assert.Equal(t, "older", candidates[0].Match.MatchedRecordID)
}

func TestAnnotateNamesBlankReference(t *testing.T) {
	candidates := []models.CandidateEntity{
		{RowIndex: 0, IsValid: false, Contact: &models.Contact{LeadName: ""}},
	}

	unmatched := AnnotateNames(candidates, []models.ExistingLead{{ID: "l", Name: "Acme"}})

	assert.Nil(t, candidates[0].Match)
	assert.Empty(t, unmatched)
}

func TestAnnotateTransactionDuplicates(t *testing.T) {
	existing := []models.ExistingTransaction{
		{ID: "tx-1", Date: day("2024-01-01"), Amount: decimal.RequireFromString("-50.00")},
	}

	candidates := []models.CandidateEntity{
		txCandidate(0, "2024-01-01", "-50.00", "Coffee"),
		txCandidate(1, "2024-01-02", "-50.00", "Coffee"), // different date
		txCandidate(2, "2024-01-01", "-50.01", "Coffee"), // different amount
		txCandidate(3, "2024-01-01", "-50", "Coffee"),    // same value, different rendering
	}

	AnnotateTransactionDuplicates(candidates, existing)

	assert.True(t, candidates[0].Duplicate.IsDuplicate)
	assert.Equal(t, "tx-1", candidates[0].Duplicate.MatchedExistingID)
	assert.False(t, candidates[1].Duplicate.IsDuplicate)
	assert.False(t, candidates[2].Duplicate.IsDuplicate)
	assert.True(t, candidates[3].Duplicate.IsDuplicate)
}

func TestAnnotateTransactionDuplicatesWithinFile(t *testing.T) {
	// No pre-existing records: repeats inside the upload itself still get
	// flagged, first occurrence wins.
	candidates := []models.CandidateEntity{
		txCandidate(0, "2024-01-01", "-50.00", "Coffee"),
		txCandidate(1, "2024-01-02", "1200.00", "Payroll"),
		txCandidate(2, "2024-01-01", "-50.00", "Coffee"),
	}

	AnnotateTransactionDuplicates(candidates, nil)

	assert.False(t, candidates[0].Duplicate.IsDuplicate, "first occurrence")
	assert.False(t, candidates[1].Duplicate.IsDuplicate)
	assert.True(t, candidates[2].Duplicate.IsDuplicate, "repeat of row 0")
	assert.Empty(t, candidates[2].Duplicate.MatchedExistingID, "no existing record to point at")
}

func TestAnnotateLeadDuplicatesWithinFile(t *testing.T) {
	candidates := []models.CandidateEntity{
		{RowIndex: 0, IsValid: true, Lead: &models.Lead{Name: "Acme Corp", Website: "acme.com"}},
		{RowIndex: 1, IsValid: true, Lead: &models.Lead{Name: "ACME CORP."}},                       // name repeat
		{RowIndex: 2, IsValid: true, Lead: &models.Lead{Name: "Fresh Co", Website: "www.acme.com"}}, // domain repeat
		{RowIndex: 3, IsValid: true, Lead: &models.Lead{Name: "Globex", Website: "globex.io"}},
	}

	AnnotateLeadDuplicates(candidates, nil)

	assert.False(t, candidates[0].Duplicate.IsDuplicate)
	assert.True(t, candidates[1].Duplicate.IsDuplicate)
	assert.True(t, candidates[2].Duplicate.IsDuplicate)
	assert.False(t, candidates[3].Duplicate.IsDuplicate)
}

func TestAnnotateLeadDuplicates(t *testing.T) {
	existing := []models.ExistingLead{
		{ID: "lead-1", Name: "Acme Corp", Website: "https://www.acme.com"},
	}

	candidates := []models.CandidateEntity{
		{RowIndex: 0, IsValid: true, Lead: &models.Lead{Name: "ACME CORP."}},
		{RowIndex: 1, IsValid: true, Lead: &models.Lead{Name: "Fresh Co", Website: "acme.com/contact"}},
		{RowIndex: 2, IsValid: true, Lead: &models.Lead{Name: "Fresh Co", Website: "fresh.example"}},
	}

	AnnotateLeadDuplicates(candidates, existing)

	assert.True(t, candidates[0].Duplicate.IsDuplicate, "normalized name match")
	assert.True(t, candidates[1].Duplicate.IsDuplicate, "normalized domain match")
	assert.False(t, candidates[2].Duplicate.IsDuplicate)
}
