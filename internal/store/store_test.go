package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lovenotes/lovenotes/internal/domain"
)

func setupTestDB(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewStore(db), mock, func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

func TestCreateSubscriberDuplicateEmail(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO subscribers").
		WillReturnError(&pq.Error{Code: "23505"})

	err := s.CreateSubscriber(context.Background(), &domain.Subscriber{
		Email:    "amy@example.com",
		WifeName: "Amy",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestCreateSubscriberDefaults(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO subscribers").
		WillReturnResult(sqlmock.NewResult(0, 1))

	sub := &domain.Subscriber{Email: "amy@example.com", WifeName: "Amy"}
	require.NoError(t, s.CreateSubscriber(context.Background(), sub))

	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, domain.StatusTrial, sub.Status)
	assert.Equal(t, domain.TierFree, sub.Tier)
	assert.False(t, sub.TrialStartedAt.IsZero())
}

func TestGetSubscriberNotFound(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM subscribers WHERE id").
		WithArgs("missing-id").
		WillReturnError(sql.ErrNoRows)

	sub, err := s.GetSubscriber(context.Background(), "missing-id")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func subscriberRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "email", "phone", "wife_name", "nickname", "theme", "frequency",
		"status", "tier", "anniversary_date", "wife_birthday", "onboarded",
		"stripe_customer_id", "stripe_subscription_id", "trial_started_at",
		"created_at", "updated_at",
	}).AddRow("sub-1", "amy@example.com", "5551234567", "Amy", "", "romantic",
		"daily", "active", "paid", "06-14", "", true, "cus_123", "sub_456", now, now, now)
}

func TestGetSubscriberByEmail(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM subscribers WHERE email").
		WithArgs("amy@example.com").
		WillReturnRows(subscriberRows())

	sub, err := s.GetSubscriberByEmail(context.Background(), "amy@example.com")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "sub-1", sub.ID)
	assert.Equal(t, domain.CadenceDaily, sub.Cadence)
	assert.Equal(t, "cus_123", sub.StripeCustomerID)
}

func TestListDeliverableSubscribers(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM subscribers\\s+WHERE status IN .+ OR tier = 'free'").
		WillReturnRows(subscriberRows())

	subs, err := s.ListDeliverableSubscribers(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, domain.StatusActive, subs[0].Status)
}

func TestMarkMessageSentIdempotent(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	// Second insert of the same pair hits ON CONFLICT DO NOTHING.
	mock.ExpectExec("INSERT INTO sent_messages").
		WithArgs("sub-1", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO sent_messages").
		WithArgs("sub-1", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.MarkMessageSent(context.Background(), "sub-1", 7))
	require.NoError(t, s.MarkMessageSent(context.Background(), "sub-1", 7))
}

func TestListUnsentMessages(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "theme", "occasion", "content"}).
		AddRow(int64(1), "romantic", "", "Good morning {wife_name}.").
		AddRow(int64(2), "romantic", "", "Thinking of you, {wife_name}.")

	mock.ExpectQuery("SELECT .+ FROM messages m").
		WithArgs("sub-1", "romantic").
		WillReturnRows(rows)

	msgs, err := s.ListUnsentMessages(context.Background(), "sub-1", "romantic")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(1), msgs[0].ID)
}

func TestResetSentHistory(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM sent_messages").
		WithArgs("sub-1", "romantic").
		WillReturnResult(sqlmock.NewResult(0, 12))

	require.NoError(t, s.ResetSentHistory(context.Background(), "sub-1", "romantic"))
}

func TestGetDailyPromptNewestRowWins(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	// Alternatives add rows for the same date; the query orders newest first.
	newest := sqlmock.NewRows([]string{
		"id", "subscriber_id", "template_id", "nudge", "starter", "for_date", "completed", "created_at",
	}).AddRow("dp-2", "sub-1", int64(5), "Thank her for something.", "", "2026-08-31", false, time.Now())
	mock.ExpectQuery("SELECT .+ FROM daily_prompts WHERE subscriber_id .+ ORDER BY created_at DESC LIMIT 1").
		WithArgs("sub-1", "2026-08-31").
		WillReturnRows(newest)

	got, err := s.GetDailyPrompt(context.Background(), "sub-1", "2026-08-31")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "dp-2", got.ID)
	assert.Equal(t, int64(5), got.TemplateID)
}

func TestListTemplateIDsForDate(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"template_id"}).
		AddRow(int64(3)).
		AddRow(int64(5))
	mock.ExpectQuery("SELECT template_id FROM daily_prompts").
		WithArgs("sub-1", "2026-08-31").
		WillReturnRows(rows)

	ids, err := s.ListTemplateIDsForDate(context.Background(), "sub-1", "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, ids)
}

func TestMarkPromptCompletedScopedToOwner(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("UPDATE daily_prompts SET completed = TRUE WHERE id = \\$1 AND subscriber_id = \\$2").
		WithArgs("dp-1", "sub-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.MarkPromptCompleted(context.Background(), "dp-1", "sub-1"))
}

func TestSetFavoriteScopedToOwner(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("UPDATE compositions SET favorite").
		WithArgs("comp-1", "intruder", true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := s.SetFavorite(context.Background(), "comp-1", "intruder", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCountPolishesSince(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	cutoff := time.Now().Truncate(24 * time.Hour)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM polish_usage").
		WithArgs("sub-1", cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	n, err := s.CountPolishesSince(context.Background(), "sub-1", cutoff)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestSendLogLifecycle(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO send_log").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE send_log SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))

	l := &domain.SendLog{SubscriberID: "sub-1", MessageID: 7}
	require.NoError(t, s.CreateSendLog(context.Background(), l))
	assert.Equal(t, domain.SendPending, l.Status)
	assert.NotEmpty(t, l.ID)

	require.NoError(t, s.UpdateSendLog(context.Background(), l.ID, domain.SendSent, "SM123", ""))
}

func TestUpsertProfile(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO relationship_profiles").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpsertProfile(context.Background(), &domain.RelationshipProfile{
		SubscriberID: "sub-1",
		HowWeMet:     "college",
		LoveLanguage: "acts of service",
	})
	require.NoError(t, err)
}
