package transform

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bizdesk/backend/internal/models"
)

// dateLayouts are tried in order; the first successful parse wins. All
// values are truncated to the calendar date.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
	"02.01.2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// invalidate marks a candidate invalid and records the reason. The rest of
// the row keeps being transformed best-effort so the preview can show every
// problem at once.
func invalidate(c *models.CandidateEntity, reason string) {
	c.IsValid = false
	c.ValidationErrors = append(c.ValidationErrors, reason)
}

// cell reads the mapped source value for field, trimmed. Returns "" when the
// field is unmapped or the row is short.
func cell(table *models.ParsedTable, row int, m *models.FieldMapping, field string) string {
	idx := m.HeaderFor(field)
	if idx == models.Unmapped {
		return ""
	}
	return strings.TrimSpace(table.Cell(row, idx))
}

// slotCell reads a contact-slot field value, trimmed.
func slotCell(table *models.ParsedTable, row int, slot models.ContactSlotMapping, field string) string {
	idx, ok := slot.Fields[field]
	if !ok {
		return ""
	}
	return strings.TrimSpace(table.Cell(row, idx))
}

// parseDate accepts the common textual date shapes. The boolean is false
// when no layout matches; callers decide whether that invalidates the row.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseMoney parses a decimal amount, tolerating currency symbols, thousands
// separators and accountant-style parentheses for negatives.
func parseMoney(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+':
			b.WriteRune(r)
		case r == ',', r == '$', r == '€', r == '£', r == ' ':
			// separators and currency markers are dropped
		default:
			return decimal.Zero, false
		}
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// normalizeEnum matches a free-text value against a closed vocabulary,
// case-insensitively and with spaces treated as underscores. Unrecognized
// values fall back to the vocabulary's first entry.
func normalizeEnum(value string, vocab []string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.ReplaceAll(v, " ", "_")
	for _, known := range vocab {
		if v == known {
			return known
		}
	}
	return vocab[0]
}
