package models

// Unmapped marks a canonical field with no source column assigned.
const Unmapped = -1

// FieldMapping assigns canonical field keys of one entity type to header
// indices of a ParsedTable. Fields absent from the map are unmapped.
type FieldMapping struct {
	EntityType EntityType     `json:"entityType"`
	Fields     map[string]int `json:"fields"`
	// ContactSlots holds one repeated sub-group mapping per detected
	// "Contact N ..." header family (leads only), in slot order.
	ContactSlots []ContactSlotMapping `json:"contactSlots,omitempty"`
}

// ContactSlotMapping maps the contact-slot canonical fields of one repetition
// index to header indices.
type ContactSlotMapping struct {
	Fields map[string]int `json:"fields"`
}

// HeaderFor returns the header index mapped to field, or Unmapped.
func (m *FieldMapping) HeaderFor(field string) int {
	if m.Fields == nil {
		return Unmapped
	}
	idx, ok := m.Fields[field]
	if !ok {
		return Unmapped
	}
	return idx
}

// IsMapped reports whether field has a source column assigned.
func (m *FieldMapping) IsMapped(field string) bool {
	return m.HeaderFor(field) != Unmapped
}
