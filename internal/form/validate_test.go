package form

import "testing"

func TestValidateForSubmissionRequiresIdentityAndNarrative(t *testing.T) {
	record := NewRecord()

	errs := ValidateForSubmission(&record)
	if errs == nil {
		t.Fatal("expected validation errors for an empty record")
	}
	if _, ok := errs["child"]["firstName"]; !ok {
		t.Fatalf("expected child.firstName error, got %v", errs)
	}
	if _, ok := errs["summary"]["callSummary"]; !ok {
		t.Fatalf("expected summary.callSummary error, got %v", errs)
	}
}

func TestValidateForSubmissionAcceptsCompleteRecord(t *testing.T) {
	record := NewRecord()
	record.Child["firstName"] = "Amara"
	record.Summary["callSummary"] = "Child reported bullying at school."

	if errs := ValidateForSubmission(&record); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateForSubmissionDefaultsConfidentiality(t *testing.T) {
	record := NewRecord()
	record.Child["firstName"] = "Amara"
	record.Summary["callSummary"] = "Child reported bullying at school."

	ValidateForSubmission(&record)
	if record.Summary["keepConfidential"] != true {
		t.Fatalf("expected keepConfidential default true, got %v", record.Summary["keepConfidential"])
	}

	record.Summary["keepConfidential"] = false
	ValidateForSubmission(&record)
	if record.Summary["keepConfidential"] != false {
		t.Fatal("explicit keepConfidential=false must survive validation")
	}
}

func TestValidateForSubmissionRejectsBlankStrings(t *testing.T) {
	record := NewRecord()
	record.Child["firstName"] = "   "
	record.Summary["callSummary"] = "Fine."

	errs := ValidateForSubmission(&record)
	if errs == nil {
		t.Fatal("expected whitespace-only first name to fail validation")
	}
	if _, ok := errs["child"]["firstName"]; !ok {
		t.Fatalf("expected child.firstName error, got %v", errs)
	}
}
