// Package domain defines the core data model shared across the digest
// pipeline: fetched email items, structured summaries, and persisted run
// records.
package domain

import (
	"strings"
	"time"
)

// Item is one fetched email-like record. It is immutable once fetched;
// ID may be empty for sources that do not assign message identifiers.
type Item struct {
	ID      string `json:"id,omitempty"`
	Sender  string `json:"from"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
}

// Key returns the identity key used for deduplication. Two items with the
// same key are the same item regardless of object identity.
func (i Item) Key() string {
	return i.ID + "|" + i.Sender + "|" + i.Subject
}

// Action is a single suggested follow-up extracted from a summary.
type Action struct {
	Action string `json:"action"`
	Name   string `json:"name"`
}

// Summary is the structured result of one summarization pass:
// ordered bullet points plus suggested actions.
type Summary struct {
	SummaryOfEmails []string `json:"summary_of_emails"`
	Actions         []Action `json:"actions"`
}

// EmptySummary returns the identity element for Merge: non-nil, zero-length
// lists.
func EmptySummary() Summary {
	return Summary{
		SummaryOfEmails: []string{},
		Actions:         []Action{},
	}
}

// ErrorSummary is the sentinel returned when every summarization backend
// failed. It is a recognizable value, not an error: the pipeline must still
// produce a digest.
func ErrorSummary() Summary {
	return Summary{
		SummaryOfEmails: []string{"Error producing summary"},
		Actions:         []Action{},
	}
}

// IsEmpty reports whether the summary carries no content.
func (s Summary) IsEmpty() bool {
	return len(s.SummaryOfEmails) == 0 && len(s.Actions) == 0
}

// Merge concatenates both lists preserving order: s first, then other.
func (s Summary) Merge(other Summary) Summary {
	merged := Summary{
		SummaryOfEmails: make([]string, 0, len(s.SummaryOfEmails)+len(other.SummaryOfEmails)),
		Actions:         make([]Action, 0, len(s.Actions)+len(other.Actions)),
	}
	merged.SummaryOfEmails = append(merged.SummaryOfEmails, s.SummaryOfEmails...)
	merged.SummaryOfEmails = append(merged.SummaryOfEmails, other.SummaryOfEmails...)
	merged.Actions = append(merged.Actions, s.Actions...)
	merged.Actions = append(merged.Actions, other.Actions...)

	return merged
}

// MergeSummaries folds parts in order into a single summary.
func MergeSummaries(parts []Summary) Summary {
	merged := EmptySummary()
	for _, p := range parts {
		merged = merged.Merge(p)
	}

	return merged
}

// Normalize replaces nil lists with empty ones so JSON encoding and merging
// behave uniformly.
func (s Summary) Normalize() Summary {
	if s.SummaryOfEmails == nil {
		s.SummaryOfEmails = []string{}
	}

	if s.Actions == nil {
		s.Actions = []Action{}
	}

	return s
}

// RunRecord is the persisted, timestamped outcome of one pipeline execution.
type RunRecord struct {
	Time    time.Time `json:"time"`
	Summary Summary   `json:"summary"`
	Count   int       `json:"count"`
}

// SearchHit is one nearest-neighbor result from the semantic store.
type SearchHit struct {
	ID      string  `json:"id"`
	Score   float32 `json:"score"`
	Sender  string  `json:"from"`
	Subject string  `json:"subject"`
	Snippet string  `json:"snippet"`
}

// DocumentText renders the item the way it is embedded and indexed.
func (i Item) DocumentText() string {
	var sb strings.Builder

	sb.WriteString(i.Sender)
	sb.WriteString("\n")
	sb.WriteString(i.Subject)
	sb.WriteString("\n")
	sb.WriteString(i.Snippet)

	return sb.String()
}
