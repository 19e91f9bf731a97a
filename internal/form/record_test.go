package form

import (
	"reflect"
	"testing"
)

func TestMergeIsFieldLevelLastWriteWins(t *testing.T) {
	record := NewRecord()
	record.Child["firstName"] = "Amara"
	record.Child["age"] = "09"
	record.Summary["callSummary"] = "Initial note."

	update := NewRecord()
	update.Child["age"] = "10"
	update.Category["Violence"] = []string{"Bullying"}

	counts := record.Merge(update)

	if record.Child["firstName"] != "Amara" {
		t.Fatalf("untouched field changed: %v", record.Child)
	}
	if record.Child["age"] != "10" {
		t.Fatalf("expected age overwritten, got %v", record.Child["age"])
	}
	if record.Summary["callSummary"] != "Initial note." {
		t.Fatalf("untouched summary changed: %v", record.Summary)
	}
	if counts.Child != 1 || counts.Category != 1 || counts.Total() != 2 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	update := NewRecord()
	update.Child["firstName"] = "Amara"
	update.Summary["keepConfidential"] = true
	update.Category["Violence"] = []string{"Bullying"}

	once := NewRecord()
	once.Merge(update)

	twice := NewRecord()
	twice.Merge(update)
	twice.Merge(update)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge not idempotent: %+v vs %+v", once, twice)
	}
}

func TestMergeAllocatesNilSections(t *testing.T) {
	var record Record

	update := NewRecord()
	update.Metadata["note"] = "unmapped"
	counts := record.Merge(update)

	if counts.Metadata != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if record.Metadata["note"] != "unmapped" {
		t.Fatalf("expected metadata populated, got %v", record.Metadata)
	}
}

func TestIsEmpty(t *testing.T) {
	record := NewRecord()
	if !record.IsEmpty() {
		t.Fatal("fresh record should be empty")
	}
	record.Child["firstName"] = "Amara"
	if record.IsEmpty() {
		t.Fatal("record with a child field should not be empty")
	}
}
