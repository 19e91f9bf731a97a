package form

import "strings"

// FieldErrors maps section name -> field name -> message.
type FieldErrors map[string]map[string]string

func (e FieldErrors) add(section Section, field, message string) {
	key := string(section)
	if e[key] == nil {
		e[key] = map[string]string{}
	}
	e[key][field] = message
}

// ValidateForSubmission applies the submission gate: the mandatory child
// identity field and summary narrative must be non-empty strings. The
// confidentiality flag defaults to true when the caller never set it.
// Returns nil when the record is acceptable.
func ValidateForSubmission(record *Record) FieldErrors {
	record.ensureSections()

	errs := FieldErrors{}
	if !hasNonEmptyString(record.Child, ChildFirstNameField) {
		errs.add(SectionChild, ChildFirstNameField, "first name is required")
	}
	if !hasNonEmptyString(record.Summary, SummaryNarrativeField) {
		errs.add(SectionSummary, SummaryNarrativeField, "call summary is required")
	}

	if _, ok := record.Summary[SummaryConfidentialField].(bool); !ok {
		record.Summary[SummaryConfidentialField] = true
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func hasNonEmptyString(section map[string]any, field string) bool {
	value, ok := section[field].(string)
	return ok && strings.TrimSpace(value) != ""
}
