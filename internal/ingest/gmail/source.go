package gmail

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/mailsmart/mailsmart/internal/core/domain"
	apperrors "github.com/mailsmart/mailsmart/internal/core/errors"
)

const (
	gmailUserID = "me"

	// recentQuery selects messages from the last day, matching the daily
	// digest cadence.
	recentQuery = "newer_than:1d"

	defaultFetchLimit = 20
)

// Source fetches recent inbox messages.
type Source struct {
	cfg        *oauth2.Config
	token      *Token
	fetchLimit int64
	logger     *zerolog.Logger
}

// NewOAuthConfig reads Google OAuth client credentials and builds the config
// with the scopes the pipeline needs: read for ingest, send for delivery.
func NewOAuthConfig(credentialsPath string) (*oauth2.Config, error) {
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}

	cfg, err := google.ConfigFromJSON(raw, gmailapi.GmailReadonlyScope, gmailapi.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}

	return cfg, nil
}

// NewSource creates a message source backed by the Gmail API.
func NewSource(cfg *oauth2.Config, token *Token, fetchLimit int, logger *zerolog.Logger) *Source {
	if fetchLimit <= 0 {
		fetchLimit = defaultFetchLimit
	}

	return &Source{
		cfg:        cfg,
		token:      token,
		fetchLimit: int64(fetchLimit),
		logger:     logger,
	}
}

// FetchRecent lists messages from the last day and resolves From, Subject,
// and the snippet for each. A message that fails to resolve is skipped and
// logged; a failing list call makes the whole source unavailable.
func (s *Source) FetchRecent(ctx context.Context) ([]domain.Item, error) {
	svc, err := s.newSvc(ctx)
	if err != nil {
		return nil, errors.Join(apperrors.ErrSourceUnavailable, err)
	}

	list, err := svc.Users.Messages.List(gmailUserID).
		Q(recentQuery).
		MaxResults(s.fetchLimit).
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Join(apperrors.ErrSourceUnavailable, fmt.Errorf("messages.List failed: %w", err))
	}

	items := make([]domain.Item, 0, len(list.Messages))

	for _, ref := range list.Messages {
		msg, err := svc.Users.Messages.Get(gmailUserID, ref.Id).
			Format("METADATA").
			MetadataHeaders("From", "Subject").
			Context(ctx).
			Do()
		if err != nil {
			s.logger.Warn().Err(err).Str("message_id", ref.Id).Msg("failed to fetch message metadata")
			continue
		}

		items = append(items, domain.Item{
			ID:      msg.Id,
			Sender:  headerValue(msg, "From"),
			Subject: headerValue(msg, "Subject"),
			Snippet: msg.Snippet,
		})
	}

	return items, nil
}

// Profile returns the authenticated account's email address, used as the
// default digest recipient.
func (s *Source) Profile(ctx context.Context) (string, error) {
	svc, err := s.newSvc(ctx)
	if err != nil {
		return "", errors.Join(apperrors.ErrSourceUnavailable, err)
	}

	profile, err := svc.Users.GetProfile(gmailUserID).Context(ctx).Do()
	if err != nil {
		return "", errors.Join(apperrors.ErrSourceUnavailable, fmt.Errorf("users.GetProfile failed: %w", err))
	}

	return profile.EmailAddress, nil
}

func (s *Source) newSvc(ctx context.Context) (*gmailapi.Service, error) {
	src, err := s.token.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := gmailapi.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}

	return svc, nil
}

func headerValue(msg *gmailapi.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}

	for _, h := range msg.Payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}

	return ""
}
