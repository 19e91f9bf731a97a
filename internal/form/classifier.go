package form

import (
	"regexp"
	"strconv"
	"strings"
)

// phonePattern captures the leading run of digits and hyphens; anything
// after it (extensions, "(home)" annotations) is discarded.
var phonePattern = regexp.MustCompile(`^[0-9][0-9-]*`)

var twoDigitPattern = regexp.MustCompile(`^[0-9]{2}$`)

// Classify partitions a raw extraction into a Record-shaped update,
// normalizing each value on the way in. Unusable values are dropped, never
// coerced into a guess; the returned slice names the dropped keys so the
// caller can log them. Classification never fails.
func Classify(raw map[string]any) (Record, []string) {
	update := NewRecord()
	dropped := make([]string, 0)

	for key, value := range hoistSummaryObject(raw) {
		switch key {
		case envelopeSuccessKey, envelopeMessageKey:
			// Completion envelope, not form data.
			continue
		case suggestedCategoriesKey:
			categories := coerceCategoryMap(value)
			if len(categories) == 0 {
				dropped = append(dropped, key)
				continue
			}
			for group, tags := range categories {
				update.Category[group] = tags
			}
			continue
		}

		spec, known := fieldTable[key]
		if !known {
			update.Metadata[key] = value
			continue
		}

		normalized, ok := normalizeValue(spec, value)
		if !ok {
			dropped = append(dropped, key)
			continue
		}
		switch spec.section {
		case SectionChild:
			update.Child[key] = normalized
		case SectionSummary:
			update.Summary[key] = normalized
		}
	}

	return update, dropped
}

// hoistSummaryObject folds a nested "summary" object into the flat mapping.
// Existing top-level keys win on collision.
func hoistSummaryObject(raw map[string]any) map[string]any {
	nested, ok := raw["summary"].(map[string]any)
	if !ok {
		return raw
	}

	flat := make(map[string]any, len(raw)+len(nested))
	for key, value := range nested {
		flat[key] = value
	}
	for key, value := range raw {
		if key == "summary" {
			continue
		}
		flat[key] = value
	}
	return flat
}

func normalizeValue(spec fieldSpec, value any) (any, bool) {
	if value == nil {
		return nil, false
	}

	switch spec.kind {
	case kindPhone:
		return normalizePhone(value)
	case kindList:
		return normalizeList(value, false)
	case kindMultiSelect:
		return normalizeList(value, true)
	case kindBoolean:
		return normalizeBoolean(value)
	case kindEnum:
		return normalizeEnum(value, spec.vocab)
	case kindAge:
		return normalizeAge(value)
	default:
		return normalizeFreeText(value)
	}
}

// isPlaceholder flags values where the completion emitted explanatory or
// negative-placeholder text instead of a real value, e.g. "-null" or
// "Unknown (not stated)".
func isPlaceholder(value string) bool {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "-") {
		return true
	}
	if strings.Contains(trimmed, "(") {
		return true
	}
	return strings.Contains(strings.ToLower(trimmed), "null")
}

func normalizeFreeText(value any) (any, bool) {
	text, ok := stringifyScalar(value)
	if !ok {
		return nil, false
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || isPlaceholder(trimmed) {
		return nil, false
	}
	return trimmed, true
}

func normalizeEnum(value any, vocab []string) (any, bool) {
	text, ok := normalizeFreeText(value)
	if !ok {
		return nil, false
	}
	candidate := text.(string)
	for _, member := range vocab {
		if candidate == member {
			return member, true
		}
	}
	// No fuzzy matching: a value outside the vocabulary is dropped entirely.
	return nil, false
}

func normalizeAge(value any) (any, bool) {
	text, ok := normalizeFreeText(value)
	if !ok {
		return nil, false
	}
	candidate := text.(string)
	for _, sentinel := range ageSentinels {
		if candidate == sentinel {
			return sentinel, true
		}
	}
	if twoDigitPattern.MatchString(candidate) {
		return candidate, true
	}
	return nil, false
}

// normalizePhone runs before the placeholder check so that a trailing
// annotation like "876-555-0123 (home)" still yields the number.
func normalizePhone(value any) (any, bool) {
	text, ok := stringifyScalar(value)
	if !ok {
		return nil, false
	}
	match := phonePattern.FindString(strings.TrimSpace(text))
	match = strings.TrimRight(match, "-")
	if match == "" {
		return nil, false
	}
	return match, true
}

// normalizeList accepts list values, filtering unusable entries. The
// comma-split string fallback only applies to multi-select fields.
func normalizeList(value any, splitStrings bool) (any, bool) {
	switch list := value.(type) {
	case []any:
		entries := make([]string, 0, len(list))
		for _, item := range list {
			entry, ok := item.(string)
			if !ok {
				continue
			}
			trimmed := strings.TrimSpace(entry)
			if trimmed == "" || strings.EqualFold(trimmed, "null") {
				continue
			}
			entries = append(entries, trimmed)
		}
		if len(entries) == 0 {
			return nil, false
		}
		return entries, true
	case []string:
		return normalizeList(anySlice(list), splitStrings)
	case string:
		if !splitStrings {
			return nil, false
		}
		trimmed := strings.TrimSpace(list)
		if trimmed == "" || isPlaceholder(trimmed) {
			return nil, false
		}
		parts := strings.Split(trimmed, ",")
		entries := make([]string, 0, len(parts))
		for _, part := range parts {
			segment := strings.TrimSpace(part)
			if segment != "" {
				entries = append(entries, segment)
			}
		}
		if len(entries) == 0 {
			return nil, false
		}
		return entries, true
	default:
		return nil, false
	}
}

func normalizeBoolean(value any) (any, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || isPlaceholder(trimmed) {
			return nil, false
		}
		parsed, err := strconv.ParseBool(strings.ToLower(trimmed))
		if err != nil {
			return nil, false
		}
		return parsed, true
	default:
		return nil, false
	}
}

func coerceCategoryMap(value any) map[string][]string {
	raw, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	categories := make(map[string][]string, len(raw))
	for group, tags := range raw {
		list, ok := tags.([]any)
		if !ok {
			continue
		}
		entries := make([]string, 0, len(list))
		for _, item := range list {
			if tag, ok := item.(string); ok && strings.TrimSpace(tag) != "" {
				entries = append(entries, strings.TrimSpace(tag))
			}
		}
		if len(entries) > 0 {
			categories[group] = entries
		}
	}
	return categories
}

func stringifyScalar(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func anySlice(list []string) []any {
	result := make([]any, len(list))
	for i, item := range list {
		result[i] = item
	}
	return result
}
