package transform

import (
	"github.com/bizdesk/backend/internal/mapping"
	"github.com/bizdesk/backend/internal/models"
)

// TaskTransformer builds work item candidates.
type TaskTransformer struct{}

func (t *TaskTransformer) EntityType() models.EntityType {
	return models.EntityTask
}

func (t *TaskTransformer) Transform(table *models.ParsedTable, m *models.FieldMapping) []models.CandidateEntity {
	candidates := make([]models.CandidateEntity, 0, table.RowCount())

	for row := 0; row < table.RowCount(); row++ {
		c := models.CandidateEntity{RowIndex: row, IsValid: true}

		task := &models.Task{
			Title:    cell(table, row, m, mapping.FieldTitle),
			Priority: normalizeEnum(cell(table, row, m, mapping.FieldPriority), models.TaskPriorities),
			Status:   normalizeEnum(cell(table, row, m, mapping.FieldStatus), models.TaskStatuses),
			LeadName: cell(table, row, m, mapping.FieldLeadName),
		}

		if task.Title == "" {
			invalidate(&c, "title is missing")
		}
		if task.LeadName == "" {
			invalidate(&c, "lead_name is missing")
		}

		// due_date is optional: unparseable values stay null.
		if raw := cell(table, row, m, mapping.FieldDueDate); raw != "" {
			if d, ok := parseDate(raw); ok {
				task.DueDate = &d
			}
		}

		c.Task = task
		candidates = append(candidates, c)
	}

	return candidates
}
