package llm

import (
	"encoding/json"
	"strings"

	"github.com/mailsmart/mailsmart/internal/core/domain"
)

// ParseSummary turns raw backend output into a structured summary. The
// parsing policy, in order:
//
//  1. Strict JSON parse of the entire text.
//  2. Parse of the first top-level brace-delimited substring.
//  3. Heuristic: non-empty lines become summary bullets (capped at
//     maxFallbackLines, each truncated to maxFallbackLineLen runes);
//     actions are empty.
//  4. Fixed sentinel "No summary available".
//
// Malformed output degrades summary quality but never breaks the pipeline:
// ParseSummary never returns an error.
func ParseSummary(raw string) domain.Summary {
	if s, ok := parseStrict(raw); ok {
		return s
	}

	if sub := extractJSON(raw); sub != raw {
		if s, ok := parseStrict(sub); ok {
			return s
		}
	}

	if bullets := heuristicBullets(raw); len(bullets) > 0 {
		return domain.Summary{SummaryOfEmails: bullets, Actions: []domain.Action{}}
	}

	return domain.Summary{
		SummaryOfEmails: []string{"No summary available"},
		Actions:         []domain.Action{},
	}
}

func parseStrict(text string) (domain.Summary, bool) {
	var s domain.Summary
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return domain.Summary{}, false
	}

	return s.Normalize(), true
}

// extractJSON returns the first top-level brace-delimited substring, or the
// input unchanged when no braces are found.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}

func heuristicBullets(text string) []string {
	var bullets []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if runes := []rune(line); len(runes) > maxFallbackLineLen {
			line = string(runes[:maxFallbackLineLen])
		}

		bullets = append(bullets, line)
		if len(bullets) >= maxFallbackLines {
			break
		}
	}

	return bullets
}
