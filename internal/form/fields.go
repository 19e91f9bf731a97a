package form

// Section names a destination inside a Record.
type Section string

const (
	SectionChild    Section = "child"
	SectionCategory Section = "category"
	SectionSummary  Section = "summary"
	SectionMetadata Section = "metadata"
)

type fieldKind int

const (
	kindFreeText fieldKind = iota
	kindEnum
	kindPhone
	kindAge
	kindList
	kindMultiSelect
	kindBoolean
)

// Reserved extraction keys. suggestedCategoriesKey carries the category
// section; the envelope keys are completion plumbing, never form data.
const (
	suggestedCategoriesKey = "suggested_categories"
	envelopeSuccessKey     = "success"
	envelopeMessageKey     = "message"
)

// Mandatory submission fields.
const (
	ChildFirstNameField      = "firstName"
	SummaryNarrativeField    = "callSummary"
	SummaryConfidentialField = "keepConfidential"
)

var genderVocabulary = []string{"Male", "Female", "Non-binary", "Other", "Unknown"}

var parishVocabulary = []string{
	"Kingston", "St. Andrew", "St. Thomas", "Portland", "St. Mary",
	"St. Ann", "Trelawny", "St. James", "Hanover", "Westmoreland",
	"St. Elizabeth", "Manchester", "Clarendon", "St. Catherine",
}

var regionVocabulary = []string{"South East", "North East", "Western", "Southern"}

var livingSituationVocabulary = []string{
	"With both parents", "With one parent", "With relatives", "With guardian",
	"Children's home", "On the street", "Other", "Unknown",
}

var yesNoVocabulary = []string{"Yes", "No"}

// Age values are the zero-padded two-digit strings the extraction prompt
// asks for, plus the sentinels below.
var ageSentinels = []string{"Unborn", ">25", "Unknown"}

type fieldSpec struct {
	section Section
	kind    fieldKind
	vocab   []string
}

// fieldTable maps every known extraction key to its destination and
// normalizer. Keys absent from the table land in metadata.
var fieldTable = map[string]fieldSpec{
	// Child demographics and placement.
	"firstName":        {section: SectionChild, kind: kindFreeText},
	"lastName":         {section: SectionChild, kind: kindFreeText},
	"gender":           {section: SectionChild, kind: kindEnum, vocab: genderVocabulary},
	"age":              {section: SectionChild, kind: kindAge},
	"streetAddress":    {section: SectionChild, kind: kindFreeText},
	"parish":           {section: SectionChild, kind: kindEnum, vocab: parishVocabulary},
	"phone1":           {section: SectionChild, kind: kindPhone},
	"phone2":           {section: SectionChild, kind: kindPhone},
	"nationality":      {section: SectionChild, kind: kindFreeText},
	"schoolName":       {section: SectionChild, kind: kindFreeText},
	"gradeLevel":       {section: SectionChild, kind: kindFreeText},
	"livingSituation":  {section: SectionChild, kind: kindEnum, vocab: livingSituationVocabulary},
	"vulnerableGroups": {section: SectionChild, kind: kindList},
	"region":           {section: SectionChild, kind: kindEnum, vocab: regionVocabulary},

	// Summary narrative and follow-up questions.
	"callSummary":               {section: SectionSummary, kind: kindFreeText},
	"keepConfidential":          {section: SectionSummary, kind: kindBoolean},
	"isCaseAccurate":            {section: SectionSummary, kind: kindEnum, vocab: yesNoVocabulary},
	"locationOfIssue":           {section: SectionSummary, kind: kindMultiSelect},
	"actionTaken":               {section: SectionSummary, kind: kindMultiSelect},
	"outcomeOfContact":          {section: SectionSummary, kind: kindFreeText},
	"howDidYouKnowAboutOurLine": {section: SectionSummary, kind: kindFreeText},
	"discussedRightsWithChild":  {section: SectionSummary, kind: kindEnum, vocab: yesNoVocabulary},
	"childFeltSafe":             {section: SectionSummary, kind: kindEnum, vocab: yesNoVocabulary},
	"repeatCaller":              {section: SectionSummary, kind: kindEnum, vocab: yesNoVocabulary},
}

// ChildFieldNames returns the closed set of child field names. Order is not
// guaranteed; callers sort when ordering matters.
func ChildFieldNames() []string {
	return fieldNamesForSection(SectionChild)
}

// SummaryFieldNames returns the closed set of summary field names.
func SummaryFieldNames() []string {
	return fieldNamesForSection(SectionSummary)
}

func fieldNamesForSection(section Section) []string {
	names := make([]string, 0, len(fieldTable))
	for name, spec := range fieldTable {
		if spec.section == section {
			names = append(names, name)
		}
	}
	return names
}
