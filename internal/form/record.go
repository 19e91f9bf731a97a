package form

// Record is the section-partitioned form state for a session. Child and
// summary values are strings, string lists, or booleans after
// classification; metadata is an open bag for keys the extraction prompt
// may grow later.
type Record struct {
	Child    map[string]any      `json:"child"`
	Category map[string][]string `json:"category"`
	Summary  map[string]any      `json:"summary"`
	Metadata map[string]any      `json:"metadata"`
}

// NewRecord returns an empty record with all sections allocated.
func NewRecord() Record {
	return Record{
		Child:    map[string]any{},
		Category: map[string][]string{},
		Summary:  map[string]any{},
		Metadata: map[string]any{},
	}
}

func (r *Record) ensureSections() {
	if r.Child == nil {
		r.Child = map[string]any{}
	}
	if r.Category == nil {
		r.Category = map[string][]string{}
	}
	if r.Summary == nil {
		r.Summary = map[string]any{}
	}
	if r.Metadata == nil {
		r.Metadata = map[string]any{}
	}
}

// IsEmpty reports whether no section holds any field.
func (r Record) IsEmpty() bool {
	return len(r.Child) == 0 && len(r.Category) == 0 && len(r.Summary) == 0 && len(r.Metadata) == 0
}

// Counts reports how many fields an update touched per section. Used only
// for the human-readable confirmation message.
type Counts struct {
	Child    int `json:"child"`
	Category int `json:"category"`
	Summary  int `json:"summary"`
	Metadata int `json:"metadata"`
}

// Total sums the per-section counts.
func (c Counts) Total() int {
	return c.Child + c.Category + c.Summary + c.Metadata
}

// Merge applies a classified update onto the record: field-level
// last-write-wins, keys absent from the update untouched. Applying the same
// update twice yields the same record as applying it once.
func (r *Record) Merge(update Record) Counts {
	r.ensureSections()

	counts := Counts{}
	for key, value := range update.Child {
		r.Child[key] = value
		counts.Child++
	}
	for group, tags := range update.Category {
		r.Category[group] = tags
		counts.Category++
	}
	for key, value := range update.Summary {
		r.Summary[key] = value
		counts.Summary++
	}
	for key, value := range update.Metadata {
		r.Metadata[key] = value
		counts.Metadata++
	}
	return counts
}
