package transform

import (
	"fmt"

	"github.com/bizdesk/backend/internal/mapping"
	"github.com/bizdesk/backend/internal/models"
)

// OpportunityTransformer builds sales opportunity candidates.
type OpportunityTransformer struct{}

func (t *OpportunityTransformer) EntityType() models.EntityType {
	return models.EntityOpportunity
}

func (t *OpportunityTransformer) Transform(table *models.ParsedTable, m *models.FieldMapping) []models.CandidateEntity {
	candidates := make([]models.CandidateEntity, 0, table.RowCount())

	for row := 0; row < table.RowCount(); row++ {
		c := models.CandidateEntity{RowIndex: row, IsValid: true}

		opp := &models.Opportunity{
			Name:     cell(table, row, m, mapping.FieldName),
			Stage:    normalizeEnum(cell(table, row, m, mapping.FieldStage), models.OpportunityStages),
			LeadName: cell(table, row, m, mapping.FieldLeadName),
		}

		if opp.Name == "" {
			invalidate(&c, "name is missing")
		}
		if opp.LeadName == "" {
			invalidate(&c, "lead_name is missing")
		}

		if raw := cell(table, row, m, mapping.FieldValue); raw != "" {
			if v, ok := parseMoney(raw); ok {
				opp.Value = v
			} else {
				invalidate(&c, fmt.Sprintf("unparseable value %q", raw))
			}
		}

		// close_date is optional: an unparseable value leaves the field null
		// without invalidating the row.
		if raw := cell(table, row, m, mapping.FieldCloseDate); raw != "" {
			if d, ok := parseDate(raw); ok {
				opp.CloseDate = &d
			}
		}

		c.Opportunity = opp
		candidates = append(candidates, c)
	}

	return candidates
}
