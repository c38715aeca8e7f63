package digest

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsmart/mailsmart/internal/core/domain"
	apperrors "github.com/mailsmart/mailsmart/internal/core/errors"
	"github.com/mailsmart/mailsmart/internal/core/llm"
)

type fakeSource struct {
	items      []domain.Item
	fetchErr   error
	profile    string
	fetchCalls int
}

func (f *fakeSource) FetchRecent(_ context.Context) ([]domain.Item, error) {
	f.fetchCalls++
	return f.items, f.fetchErr
}

func (f *fakeSource) Profile(_ context.Context) (string, error) {
	if f.profile == "" {
		return "", errors.New("no profile")
	}

	return f.profile, nil
}

type fakeRunStore struct {
	allowlist    []string
	allowlistErr error
	records      []domain.RunRecord
	recordErr    error
	lockHeld     bool
	releases     int
}

func (f *fakeRunStore) EssentialSenders(_ context.Context) ([]string, error) {
	return f.allowlist, f.allowlistErr
}

func (f *fakeRunStore) AppendRunRecord(_ context.Context, record domain.RunRecord) error {
	f.records = append(f.records, record)
	return f.recordErr
}

func (f *fakeRunStore) TryAcquireRunLock(_ context.Context, _ int64) (func(context.Context) error, bool, error) {
	if f.lockHeld {
		return nil, false, nil
	}

	f.lockHeld = true

	return func(context.Context) error {
		f.lockHeld = false
		f.releases++

		return nil
	}, true, nil
}

func (f *fakeRunStore) GetSetting(_ context.Context, _ string, _ interface{}) error {
	return nil
}

type fakeIndexer struct {
	indexed []domain.Item
	err     error
}

func (f *fakeIndexer) Index(_ context.Context, items []domain.Item) error {
	f.indexed = append(f.indexed, items...)
	return f.err
}

type fakeMailer struct {
	to      string
	subject string
	body    string
	err     error
	calls   int
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.calls++
	f.to, f.subject, f.body = to, subject, body

	return f.err
}

// fakeClient returns a fixed JSON completion.
type fakeClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeClient) Complete(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeClient) Statuses() []llm.ProviderStatus { return nil }

func newTestRunner(source *fakeSource, store *fakeRunStore, indexer *fakeIndexer, client *fakeClient, mailer *fakeMailer) *Runner {
	logger := zerolog.Nop()
	summarizer := NewSummarizer(client, store, SummarizerConfig{ChunkSize: 5}, &logger)

	var ix Indexer
	if indexer != nil {
		ix = indexer
	}

	var m Mailer
	if mailer != nil {
		m = mailer
	}

	return NewRunner(source, store, ix, summarizer, m, &logger)
}

func TestRunEmptyFetchSkipsEverything(t *testing.T) {
	source := &fakeSource{}
	store := &fakeRunStore{}
	indexer := &fakeIndexer{}
	client := &fakeClient{response: `{"summary_of_emails":["x"],"actions":[]}`}

	result, err := newTestRunner(source, store, indexer, client, nil).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Summary.IsEmpty())
	assert.Zero(t, result.Count)
	assert.Zero(t, client.calls, "no backend call on empty fetch")
	assert.Empty(t, indexer.indexed, "no indexing on empty fetch")
	assert.Empty(t, store.records, "no run record on empty fetch")
}

func TestRunFetchErrorPropagates(t *testing.T) {
	source := &fakeSource{fetchErr: apperrors.ErrSourceUnavailable}
	store := &fakeRunStore{}

	_, err := newTestRunner(source, store, nil, &fakeClient{}, nil).Run(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrSourceUnavailable)
	assert.Empty(t, store.records)
}

func TestRunLockHeldReturnsRunInProgress(t *testing.T) {
	source := &fakeSource{items: []domain.Item{{ID: "a"}}}
	store := &fakeRunStore{lockHeld: true}

	_, err := newTestRunner(source, store, nil, &fakeClient{}, nil).Run(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrRunInProgress)
	assert.Zero(t, source.fetchCalls, "pipeline must not start without the lock")
}

func TestRunReleasesLockBetweenRuns(t *testing.T) {
	source := &fakeSource{items: []domain.Item{{ID: "a", Subject: "s"}}}
	store := &fakeRunStore{}
	client := &fakeClient{response: `{"summary_of_emails":["ok"],"actions":[]}`}
	runner := newTestRunner(source, store, nil, client, nil)

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	// A leaked lock would make the second run fail with ErrRunInProgress.
	_, err = runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, store.releases, "each run releases the lock it acquired")
	assert.False(t, store.lockHeld)
}

func TestRunEssentialUnionHasNoDuplicates(t *testing.T) {
	boss := domain.Item{ID: "1", Sender: "boss@co", Subject: "plan"}
	other := domain.Item{ID: "2", Sender: "news@list", Subject: "weekly"}

	source := &fakeSource{items: []domain.Item{other, boss}}
	store := &fakeRunStore{allowlist: []string{"boss@co"}}
	indexer := &fakeIndexer{}
	client := &fakeClient{response: `{"summary_of_emails":["ok"],"actions":[]}`}

	result, err := newTestRunner(source, store, indexer, client, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Count)
	require.Len(t, indexer.indexed, 2)

	// Allowlisted sender comes first, and appears exactly once.
	assert.Equal(t, boss, indexer.indexed[0])
	assert.Equal(t, other, indexer.indexed[1])
}

func TestRunAllowlistErrorIsAbsorbed(t *testing.T) {
	source := &fakeSource{items: []domain.Item{{ID: "a", Subject: "s"}}}
	store := &fakeRunStore{allowlistErr: errors.New("settings down")}
	client := &fakeClient{response: `{"summary_of_emails":["ok"],"actions":[]}`}

	result, err := newTestRunner(source, store, nil, client, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Count)
}

func TestRunIndexFailureIsNonFatal(t *testing.T) {
	source := &fakeSource{items: []domain.Item{{ID: "a", Subject: "s"}}}
	store := &fakeRunStore{}
	indexer := &fakeIndexer{err: errors.New("store down")}
	client := &fakeClient{response: `{"summary_of_emails":["ok"],"actions":[]}`}

	result, err := newTestRunner(source, store, indexer, client, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"ok"}, result.Summary.SummaryOfEmails)
	require.Len(t, store.records, 1)
}

func TestRunRecordsPersistedOutcome(t *testing.T) {
	source := &fakeSource{items: []domain.Item{{ID: "a", Subject: "s"}, {ID: "b", Subject: "t"}}}
	store := &fakeRunStore{}
	client := &fakeClient{response: `{"summary_of_emails":["merged"],"actions":[]}`}

	result, err := newTestRunner(source, store, nil, client, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.records, 1)
	assert.Equal(t, 2, store.records[0].Count)
	assert.Equal(t, result.Summary, store.records[0].Summary)
	assert.False(t, store.records[0].Time.IsZero())
}

func TestRunRecordFailureIsNonFatal(t *testing.T) {
	source := &fakeSource{items: []domain.Item{{ID: "a", Subject: "s"}}}
	store := &fakeRunStore{recordErr: errors.New("insert failed")}
	client := &fakeClient{response: `{"summary_of_emails":["ok"],"actions":[]}`}

	result, err := newTestRunner(source, store, nil, client, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"ok"}, result.Summary.SummaryOfEmails)
}

func TestRunBackendFailureDegradesToSentinel(t *testing.T) {
	source := &fakeSource{items: []domain.Item{{ID: "a", Subject: "s"}}}
	store := &fakeRunStore{}
	client := &fakeClient{err: apperrors.ErrAllProvidersFailed}

	result, err := newTestRunner(source, store, nil, client, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.ErrorSummary(), result.Summary)
	require.Len(t, store.records, 1, "degraded runs are still recorded")
}

func TestRunAndDeliverDefaultsToProfile(t *testing.T) {
	source := &fakeSource{items: []domain.Item{{ID: "a", Subject: "s"}}, profile: "me@example.com"}
	store := &fakeRunStore{}
	mailer := &fakeMailer{}
	client := &fakeClient{response: `{"summary_of_emails":["ok"],"actions":[]}`}

	_, err := newTestRunner(source, store, nil, client, mailer).RunAndDeliver(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, mailer.calls)
	assert.Equal(t, "me@example.com", mailer.to)
	assert.Contains(t, mailer.subject, "MailSmart Daily Digest")
	assert.Contains(t, mailer.body, "Total emails: 1")
}

func TestRunAndDeliverExplicitRecipient(t *testing.T) {
	source := &fakeSource{items: []domain.Item{{ID: "a", Subject: "s"}}}
	store := &fakeRunStore{}
	mailer := &fakeMailer{}
	client := &fakeClient{response: `{"summary_of_emails":["ok"],"actions":[]}`}

	_, err := newTestRunner(source, store, nil, client, mailer).RunAndDeliver(context.Background(), "ops@example.com")
	require.NoError(t, err)

	assert.Equal(t, "ops@example.com", mailer.to)
}

func TestRunAndDeliverSendFailurePropagates(t *testing.T) {
	source := &fakeSource{items: []domain.Item{{ID: "a", Subject: "s"}}}
	store := &fakeRunStore{}
	mailer := &fakeMailer{err: apperrors.ErrDeliveryFailed}
	client := &fakeClient{response: `{"summary_of_emails":["ok"],"actions":[]}`}

	result, err := newTestRunner(source, store, nil, client, mailer).RunAndDeliver(context.Background(), "ops@example.com")

	assert.ErrorIs(t, err, apperrors.ErrDeliveryFailed)
	assert.Equal(t, 1, result.Count, "the run itself still completed")
	require.Len(t, store.records, 1)
}
