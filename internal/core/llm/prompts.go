package llm

import (
	"fmt"
	"strings"

	"github.com/mailsmart/mailsmart/internal/core/domain"
)

// Settings key for the operator-editable prompt template override.
const PromptSettingKey = "summarizer_prompt"

// emailsTextToken marks where rendered emails are substituted into the
// prompt template.
const emailsTextToken = "{emails_text}"

const emailSeparator = "\n\n---\n\n"

// defaultSummarizerPrompt is the built-in template used when no override is
// stored in settings.
const defaultSummarizerPrompt = `You are an email digest assistant. Summarize the emails below into
concise bullet points and extract any suggested follow-up actions.

Return ONLY a JSON object (no markdown, no explanation) with this shape:
{"summary_of_emails": ["point", ...], "actions": [{"action": "verb phrase", "name": "who it concerns"}, ...]}

Guidelines:
- One bullet per distinct topic, at most one sentence each
- Include an action only when the email clearly asks for one
- Return empty lists if there is nothing to summarize

Emails:
{emails_text}`

// DefaultPromptTemplate returns the built-in summarizer prompt template.
func DefaultPromptTemplate() string {
	return defaultSummarizerPrompt
}

// RenderEmails renders items into the prompt's email block.
func RenderEmails(items []domain.Item) string {
	blocks := make([]string, 0, len(items))

	for _, item := range items {
		blocks = append(blocks, fmt.Sprintf("From: %s\nSubject: %s\n%s", item.Sender, item.Subject, item.Snippet))
	}

	return strings.Join(blocks, emailSeparator)
}

// BuildPrompt substitutes rendered email text into the template. A template
// without the substitution token gets the text appended, so a broken
// operator override still produces a usable prompt.
func BuildPrompt(template, emailsText string) string {
	if strings.Contains(template, emailsTextToken) {
		return strings.ReplaceAll(template, emailsTextToken, emailsText)
	}

	return template + "\n\n" + emailsText
}
