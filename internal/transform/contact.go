package transform

import (
	"github.com/bizdesk/backend/internal/mapping"
	"github.com/bizdesk/backend/internal/models"
)

// ContactTransformer builds standalone contact candidates. The lead_name
// column is a free-text reference resolved later by the match engine.
type ContactTransformer struct{}

func (t *ContactTransformer) EntityType() models.EntityType {
	return models.EntityContact
}

func (t *ContactTransformer) Transform(table *models.ParsedTable, m *models.FieldMapping) []models.CandidateEntity {
	candidates := make([]models.CandidateEntity, 0, table.RowCount())

	for row := 0; row < table.RowCount(); row++ {
		c := models.CandidateEntity{RowIndex: row, IsValid: true}

		contact := &models.Contact{
			FirstName: cell(table, row, m, mapping.FieldFirstName),
			LastName:  cell(table, row, m, mapping.FieldLastName),
			Email:     cell(table, row, m, mapping.FieldEmail),
			Phone:     cell(table, row, m, mapping.FieldPhone),
			LeadName:  cell(table, row, m, mapping.FieldLeadName),
		}

		if contact.FirstName == "" {
			invalidate(&c, "first_name is missing")
		}
		if contact.LeadName == "" {
			invalidate(&c, "lead_name is missing")
		}

		c.Contact = contact
		candidates = append(candidates, c)
	}

	return candidates
}
