// Package format renders structured summaries into the plain-text digest
// email body.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/mailsmart/mailsmart/internal/core/domain"
)

const (
	digestHeader = "MailSmart Daily Digest"

	// maxHighlights caps the bullet list in the email body; the full summary
	// stays available through the run history.
	maxHighlights = 5
)

// Subject returns the digest email subject line for the given run date.
func Subject(at time.Time) string {
	return fmt.Sprintf("%s - %s", digestHeader, at.Format("Mon, 2 Jan 2006"))
}

// Digest renders the summary as a plain-text email body. count is the
// number of emails behind the summary.
func Digest(summary domain.Summary, count int) string {
	var sb strings.Builder

	sb.WriteString(digestHeader + "\n")
	sb.WriteString(strings.Repeat("=", len(digestHeader)) + "\n\n")
	sb.WriteString(fmt.Sprintf("Total emails: %d\n\n", count))

	highlights := summary.SummaryOfEmails
	if len(highlights) > maxHighlights {
		highlights = highlights[:maxHighlights]
	}

	if len(highlights) == 0 {
		sb.WriteString("Nothing to report today.\n")
	} else {
		sb.WriteString("Highlights:\n")

		for _, point := range highlights {
			sb.WriteString("- " + point + "\n")
		}
	}

	if len(summary.Actions) > 0 {
		sb.WriteString("\nSuggested actions:\n")

		for _, action := range summary.Actions {
			if action.Name != "" {
				sb.WriteString(fmt.Sprintf("- %s (%s)\n", action.Action, action.Name))
			} else {
				sb.WriteString("- " + action.Action + "\n")
			}
		}
	}

	return sb.String()
}
