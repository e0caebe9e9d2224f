package transform

import (
	"github.com/bizdesk/backend/internal/mapping"
	"github.com/bizdesk/backend/internal/models"
)

// LeadTransformer builds CRM lead candidates, materializing one nested
// contact per populated contact slot.
type LeadTransformer struct{}

func (t *LeadTransformer) EntityType() models.EntityType {
	return models.EntityLead
}

func (t *LeadTransformer) Transform(table *models.ParsedTable, m *models.FieldMapping) []models.CandidateEntity {
	candidates := make([]models.CandidateEntity, 0, table.RowCount())

	for row := 0; row < table.RowCount(); row++ {
		c := models.CandidateEntity{RowIndex: row, IsValid: true}

		lead := &models.Lead{
			Name:     cell(table, row, m, mapping.FieldName),
			Website:  cell(table, row, m, mapping.FieldWebsite),
			Industry: cell(table, row, m, mapping.FieldIndustry),
			Status:   normalizeEnum(cell(table, row, m, mapping.FieldStatus), models.LeadStatuses),
		}

		if lead.Name == "" {
			invalidate(&c, "name is missing")
		}

		for _, slot := range m.ContactSlots {
			contact := models.LeadContact{
				FirstName: slotCell(table, row, slot, mapping.FieldFirstName),
				LastName:  slotCell(table, row, slot, mapping.FieldLastName),
				Email:     slotCell(table, row, slot, mapping.FieldEmail),
				Phone:     slotCell(table, row, slot, mapping.FieldPhone),
				Title:     slotCell(table, row, slot, mapping.FieldTitle),
			}
			// Slots with no populated cells on this row are simply absent.
			if contact == (models.LeadContact{}) {
				continue
			}
			lead.Contacts = append(lead.Contacts, contact)
		}

		c.Lead = lead
		candidates = append(candidates, c)
	}

	return candidates
}
