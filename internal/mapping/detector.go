package mapping

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/bizdesk/backend/internal/models"
)

// slotHeaderRe matches repeated contact-group headers like "Contact 1 Email",
// "contact_2_first_name" or "Contact3-Phone".
var slotHeaderRe = regexp.MustCompile(`(?i)^contact[ _-]*(\d+)[ _-]+(.+)$`)

// punctRe strips everything but letters, digits and spaces during header
// normalization, so "E-Mail_Address" and "email address" compare equal.
var punctRe = regexp.MustCompile(`[^a-z0-9 ]+`)

// Detect proposes a FieldMapping for the given headers. The result is a
// best-effort 1:1 assignment: each canonical field gets at most one header
// index and each header index is claimed by at most one field, with earlier
// fields in the declaration list winning contested headers. The proposal is
// never applied without user confirmation.
func Detect(entityType models.EntityType, headers []string) *models.FieldMapping {
	specs := FieldsFor(entityType)

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	claimed := make(map[int]bool)
	proposal := &models.FieldMapping{
		EntityType: entityType,
		Fields:     make(map[string]int),
	}

	// Slot headers are carved out first so a "Contact 1 Email" column never
	// gets claimed by the flat "email" field of another spec.
	var slotIndices map[int]bool
	if entityType == models.EntityLead {
		var slots []models.ContactSlotMapping
		slots, slotIndices = detectContactSlots(headers)
		proposal.ContactSlots = slots
		for idx := range slotIndices {
			claimed[idx] = true
		}
	}

	for _, spec := range specs {
		idx := findHeader(normalized, spec.Synonyms, claimed)
		if idx == models.Unmapped {
			continue
		}
		proposal.Fields[spec.Key] = idx
		claimed[idx] = true
	}

	return proposal
}

// findHeader returns the first unclaimed header index whose normalized form
// exactly equals one of the synonyms, trying synonyms in declaration order.
func findHeader(normalized []string, synonyms []string, claimed map[int]bool) int {
	for _, syn := range synonyms {
		want := normalizeHeader(syn)
		for i, h := range normalized {
			if claimed[i] {
				continue
			}
			if h == want {
				return i
			}
		}
	}
	return models.Unmapped
}

// detectContactSlots finds repeated "Contact N <field>" header families and
// builds one slot mapping per repetition index, capped at MaxContactSlots.
// It also returns the set of header indices consumed by slots.
func detectContactSlots(headers []string) ([]models.ContactSlotMapping, map[int]bool) {
	type slotField struct {
		key string
		idx int
	}
	bySlot := make(map[int][]slotField)
	consumed := make(map[int]bool)

	for i, h := range headers {
		m := slotHeaderRe.FindStringSubmatch(strings.TrimSpace(h))
		if m == nil {
			continue
		}
		var slotNum int
		fmt.Sscanf(m[1], "%d", &slotNum)
		if slotNum < 1 {
			continue
		}
		rest := normalizeHeader(m[2])

		for _, spec := range contactSlotFields {
			matched := false
			for _, syn := range spec.Synonyms {
				if rest == normalizeHeader(syn) {
					matched = true
					break
				}
			}
			if matched {
				bySlot[slotNum] = append(bySlot[slotNum], slotField{key: spec.Key, idx: i})
				consumed[i] = true
				break
			}
		}
	}

	if len(bySlot) == 0 {
		return nil, consumed
	}

	nums := make([]int, 0, len(bySlot))
	for n := range bySlot {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	slots := make([]models.ContactSlotMapping, 0, len(nums))
	for _, n := range nums {
		if len(slots) >= MaxContactSlots {
			// Release headers of slots beyond the cap back to the pool.
			for _, f := range bySlot[n] {
				delete(consumed, f.idx)
			}
			continue
		}
		slot := models.ContactSlotMapping{Fields: make(map[string]int)}
		for _, f := range bySlot[n] {
			if _, dup := slot.Fields[f.key]; dup {
				delete(consumed, f.idx)
				continue
			}
			slot.Fields[f.key] = f.idx
		}
		slots = append(slots, slot)
	}

	return slots, consumed
}

// Validate reports the required-field problems that block advancing past the
// map-columns step. An empty result means the mapping is usable.
func Validate(m *models.FieldMapping) []string {
	var problems []string

	for _, spec := range FieldsFor(m.EntityType) {
		if spec.Required && !m.IsMapped(spec.Key) {
			problems = append(problems, fmt.Sprintf("required field %q is not mapped", spec.Key))
		}
	}

	// Transactions need a money column in one of the two shapes: a single
	// signed amount, or a debit/credit pair (either half is enough).
	if m.EntityType == models.EntityTransaction {
		if !m.IsMapped(FieldAmount) && !m.IsMapped(FieldDebit) && !m.IsMapped(FieldCredit) {
			problems = append(problems, "no amount column mapped: map either amount or debit/credit")
		}
	}

	return problems
}

func normalizeHeader(h string) string {
	s := strings.ToLower(strings.TrimSpace(h))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	s = punctRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
