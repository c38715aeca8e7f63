// Package filters implements the essential-sender filter: an explicit,
// user-editable allowlist of sender substrings whose mail is always included
// in a digest, regardless of the fetch window.
package filters

import (
	"strings"

	"github.com/mailsmart/mailsmart/internal/core/domain"
)

// SelectEssential returns the items whose sender matches at least one
// allowlist entry as a case-insensitive substring. The result is a subset of
// items in input order. An empty allowlist selects nothing.
//
// The caller unions this output with the full fetch result; duplicates are
// resolved downstream by the deduplicator.
func SelectEssential(items []domain.Item, allowlist []string) []domain.Item {
	if len(allowlist) == 0 || len(items) == 0 {
		return nil
	}

	patterns := make([]string, 0, len(allowlist))

	for _, entry := range allowlist {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			patterns = append(patterns, entry)
		}
	}

	var selected []domain.Item

	for _, item := range items {
		sender := strings.ToLower(item.Sender)

		for _, p := range patterns {
			if strings.Contains(sender, p) {
				selected = append(selected, item)
				break
			}
		}
	}

	return selected
}
