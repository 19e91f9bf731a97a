package server

import (
	"sort"
	"strings"

	"aselo/backend/internal/form"
)

const chatSystemPrompt = "You are a helpful assistant for a child support " +
	"helpline. Help counsellors capture case details through conversation. " +
	"Keep responses friendly and concise, and guide the conversation toward " +
	"the information the case form needs: the child's identity, contact and " +
	"living situation, what happened, and what action was taken."

const summarySystemPrompt = "Summarize the conversation concisely, " +
	"highlighting key case information: who the child is, what was reported, " +
	"and what was agreed or recommended."

const summaryUserPrompt = "Please provide a concise summary of our conversation in plain text."

const extractionUserPrompt = "Please extract any form-relevant information from our conversation as a JSON object."

// buildExtractionSystemPrompt enumerates the closed field sets and their
// vocabularies so the completion lines up with the classifier table.
func buildExtractionSystemPrompt() string {
	childFields := form.ChildFieldNames()
	summaryFields := form.SummaryFieldNames()
	sort.Strings(childFields)
	sort.Strings(summaryFields)

	return strings.Join([]string{
		"Extract case form data from the conversation.",
		"Return only a JSON object, no markdown and no commentary.",
		"Child fields: " + strings.Join(childFields, ", ") + ".",
		"Summary fields: " + strings.Join(summaryFields, ", ") + ".",
		"Use null for anything not stated in the conversation; never guess.",
		`age must be a zero-padded two-digit string ("00".."25"), "Unborn", ">25", or "Unknown".`,
		"gender, parish, region and livingSituation must use the exact option wording from the form.",
		"locationOfIssue, actionTaken and vulnerableGroups are JSON arrays of strings.",
		"keepConfidential is a boolean; the yes/no follow-up fields take exactly \"Yes\" or \"No\".",
		`Also include "suggested_categories": an object mapping category group names to arrays of applicable tags.`,
	}, "\n")
}
