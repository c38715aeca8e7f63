package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"

	apperrors "github.com/mailsmart/mailsmart/internal/core/errors"
)

// Mailer sends digest emails through the authenticated Gmail account.
type Mailer struct {
	source *Source
}

// NewMailer creates a Mailer sharing the source's credentials.
func NewMailer(source *Source) *Mailer {
	return &Mailer{source: source}
}

// Send delivers a plain-text email from the authenticated account.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	svc, err := m.source.newSvc(ctx)
	if err != nil {
		return errors.Join(apperrors.ErrDeliveryFailed, err)
	}

	var sb strings.Builder
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)

	msg := &gmailapi.Message{
		Raw: base64.RawURLEncoding.EncodeToString([]byte(sb.String())),
	}

	if _, err := svc.Users.Messages.Send(gmailUserID, msg).Context(ctx).Do(); err != nil {
		return errors.Join(apperrors.ErrDeliveryFailed, fmt.Errorf("messages.Send failed: %w", err))
	}

	return nil
}
