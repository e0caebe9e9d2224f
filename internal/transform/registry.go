// Package transform applies a confirmed column mapping to raw rows,
// producing typed, validated candidate entities.
package transform

import (
	"fmt"

	"github.com/bizdesk/backend/internal/models"
)

// Transformer converts raw table rows into candidates for one entity type.
// Implementations are pure: the same (table, mapping) input always produces
// the same candidate sequence, so the preview can be re-run freely as the
// user edits the mapping.
type Transformer interface {
	EntityType() models.EntityType
	Transform(table *models.ParsedTable, m *models.FieldMapping) []models.CandidateEntity
}

// Registry resolves the transformer variant for an entity type.
type Registry struct {
	transformers map[models.EntityType]Transformer
}

// NewRegistry returns a registry with all built-in transformers registered.
func NewRegistry() *Registry {
	r := &Registry{transformers: make(map[models.EntityType]Transformer)}
	r.Register(&TransactionTransformer{})
	r.Register(&LeadTransformer{})
	r.Register(&ContactTransformer{})
	r.Register(&OpportunityTransformer{})
	r.Register(&TaskTransformer{})
	return r
}

// Register adds a transformer, replacing any existing one for its type.
func (r *Registry) Register(t Transformer) {
	r.transformers[t.EntityType()] = t
}

// Get returns the transformer for entityType.
func (r *Registry) Get(entityType models.EntityType) (Transformer, error) {
	t, ok := r.transformers[entityType]
	if !ok {
		return nil, fmt.Errorf("no transformer registered for entity type %q", entityType)
	}
	return t, nil
}
