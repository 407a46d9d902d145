// Package retrieval answers phone questions: it classifies the question,
// resolves model names against the catalog, and composes a text answer.
package retrieval

import "strings"

// Intent represents the classified purpose of a question.
type Intent string

const (
	IntentSpecs                  Intent = "specs"
	IntentCompare                Intent = "compare"
	IntentBestBatteryUnderBudget Intent = "best_battery_under_budget"
	IntentUnknown                Intent = "unknown"
)

// ClassifyIntent maps a question to an intent by keyword presence.
// Rules are checked in order and the first hit wins, so a question that
// mentions both "spec" and "compare" is a specs question.
func ClassifyIntent(question string) Intent {
	q := strings.ToLower(question)

	switch {
	case strings.Contains(q, "spec"):
		return IntentSpecs
	case strings.Contains(q, "compare") || strings.Contains(q, " vs "):
		return IntentCompare
	case strings.Contains(q, "best battery") &&
		(strings.Contains(q, "under") || strings.Contains(q, "below")):
		return IntentBestBatteryUnderBudget
	default:
		return IntentUnknown
	}
}

// Focus is a comparison sub-topic picked from the question.
type Focus string

const (
	FocusNone   Focus = ""
	FocusCamera Focus = "camera"
)

// DetectFocus returns FocusCamera when the question is about photos or cameras.
func DetectFocus(question string) Focus {
	q := strings.ToLower(question)
	if strings.Contains(q, "photo") || strings.Contains(q, "camera") {
		return FocusCamera
	}
	return FocusNone
}
