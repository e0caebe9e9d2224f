// Package mapping proposes and validates column-to-field mappings for each
// importable entity type.
package mapping

import "github.com/bizdesk/backend/internal/models"

// FieldSpec declares one canonical target field. Declaration order matters:
// when two fields both match the same source header, the earlier field wins.
type FieldSpec struct {
	Key      string
	Required bool
	Synonyms []string
}

// Canonical field keys shared across entity types.
const (
	FieldDate        = "date"
	FieldAmount      = "amount"
	FieldDebit       = "debit"
	FieldCredit      = "credit"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldName        = "name"
	FieldWebsite     = "website"
	FieldIndustry    = "industry"
	FieldStatus      = "status"
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldTitle       = "title"
	FieldLeadName    = "lead_name"
	FieldValue       = "value"
	FieldStage       = "stage"
	FieldCloseDate   = "close_date"
	FieldDueDate     = "due_date"
	FieldPriority    = "priority"
)

// MaxContactSlots caps how many repeated "Contact N ..." groups are detected
// on a lead import.
const MaxContactSlots = 5

var transactionFields = []FieldSpec{
	{Key: FieldDate, Required: true, Synonyms: []string{"date", "transaction date", "posted", "posting date", "booking date", "value date"}},
	{Key: FieldAmount, Synonyms: []string{"amount", "value", "sum", "total", "price", "transaction amount"}},
	{Key: FieldDebit, Synonyms: []string{"debit", "withdrawal", "money out", "paid out", "outflow"}},
	{Key: FieldCredit, Synonyms: []string{"credit", "deposit", "money in", "paid in", "inflow"}},
	{Key: FieldDescription, Required: true, Synonyms: []string{"description", "memo", "narrative", "details", "reference", "payee", "merchant"}},
	{Key: FieldCategory, Synonyms: []string{"category", "type", "classification"}},
}

var leadFields = []FieldSpec{
	{Key: FieldName, Required: true, Synonyms: []string{"name", "company", "company name", "lead", "lead name", "organization", "organisation", "account name", "business name"}},
	{Key: FieldWebsite, Synonyms: []string{"website", "web site", "url", "domain", "homepage", "web"}},
	{Key: FieldIndustry, Synonyms: []string{"industry", "sector", "vertical"}},
	{Key: FieldStatus, Synonyms: []string{"status", "stage", "lead status"}},
}

// contactSlotFields are the repeatable sub-group fields on a lead row
// ("Contact 1 Email", "Contact 2 First Name", ...).
var contactSlotFields = []FieldSpec{
	{Key: FieldFirstName, Synonyms: []string{"first name", "firstname", "first", "fname", "given name"}},
	{Key: FieldLastName, Synonyms: []string{"last name", "lastname", "last", "lname", "surname", "family name"}},
	{Key: FieldEmail, Synonyms: []string{"email", "email address", "e-mail", "mail"}},
	{Key: FieldPhone, Synonyms: []string{"phone", "phone number", "telephone", "mobile", "cell"}},
	{Key: FieldTitle, Synonyms: []string{"title", "job title", "role", "position"}},
}

var contactFields = []FieldSpec{
	{Key: FieldFirstName, Required: true, Synonyms: []string{"first name", "firstname", "first", "fname", "given name"}},
	{Key: FieldLastName, Synonyms: []string{"last name", "lastname", "last", "lname", "surname", "family name"}},
	{Key: FieldEmail, Synonyms: []string{"email", "email address", "e-mail", "mail"}},
	{Key: FieldPhone, Synonyms: []string{"phone", "phone number", "telephone", "mobile", "cell"}},
	{Key: FieldLeadName, Required: true, Synonyms: []string{"lead", "lead name", "company", "company name", "account", "account name", "organization", "organisation"}},
}

var opportunityFields = []FieldSpec{
	{Key: FieldName, Required: true, Synonyms: []string{"name", "opportunity", "opportunity name", "deal", "deal name"}},
	{Key: FieldValue, Synonyms: []string{"value", "amount", "deal value", "deal size", "revenue"}},
	{Key: FieldStage, Synonyms: []string{"stage", "status", "pipeline stage", "deal stage"}},
	{Key: FieldCloseDate, Synonyms: []string{"close date", "closing date", "expected close", "close"}},
	{Key: FieldLeadName, Required: true, Synonyms: []string{"lead", "lead name", "company", "company name", "account", "account name"}},
}

var taskFields = []FieldSpec{
	{Key: FieldTitle, Required: true, Synonyms: []string{"title", "task", "task name", "subject", "name", "summary"}},
	{Key: FieldDueDate, Synonyms: []string{"due date", "due", "deadline", "due by"}},
	{Key: FieldPriority, Synonyms: []string{"priority", "importance", "urgency"}},
	{Key: FieldStatus, Synonyms: []string{"status", "state"}},
	{Key: FieldLeadName, Required: true, Synonyms: []string{"lead", "lead name", "company", "company name", "account", "account name"}},
}

// FieldsFor returns the ordered canonical field declarations for an entity
// type, or nil for an unknown type.
func FieldsFor(entityType models.EntityType) []FieldSpec {
	switch entityType {
	case models.EntityTransaction:
		return transactionFields
	case models.EntityLead:
		return leadFields
	case models.EntityContact:
		return contactFields
	case models.EntityOpportunity:
		return opportunityFields
	case models.EntityTask:
		return taskFields
	}
	return nil
}
