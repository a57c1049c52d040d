package delivery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lovenotes/lovenotes/internal/config"
	"github.com/lovenotes/lovenotes/internal/domain"
)

type logEvent struct {
	op         string // "create" or "update"
	status     domain.SendStatus
	providerID string
	errMsg     string
}

type fakeSendLogStore struct {
	events []logEvent
}

func (f *fakeSendLogStore) CreateSendLog(_ context.Context, l *domain.SendLog) error {
	l.ID = "log-1"
	f.events = append(f.events, logEvent{op: "create", status: l.Status})
	return nil
}

func (f *fakeSendLogStore) UpdateSendLog(_ context.Context, _ string, status domain.SendStatus, providerID, errMsg string) error {
	f.events = append(f.events, logEvent{op: "update", status: status, providerID: providerID, errMsg: errMsg})
	return nil
}

type fakeSMS struct {
	sid   string
	err   error
	calls int
	body  string
}

func (f *fakeSMS) SendSMS(_, body string) (string, error) {
	f.calls++
	f.body = body
	return f.sid, f.err
}

type fakeEmail struct {
	id    string
	err   error
	calls int
	html  string
}

func (f *fakeEmail) SendEmail(_ context.Context, _, _, htmlContent, _ string) (string, error) {
	f.calls++
	f.html = htmlContent
	return f.id, f.err
}

func deliverySubscriber() *domain.Subscriber {
	return &domain.Subscriber{
		ID:       "sub-1",
		Email:    "amy@example.com",
		Phone:    "5551234567",
		WifeName: "Amy",
	}
}

func TestDeliverPrefersSMS(t *testing.T) {
	store := &fakeSendLogStore{}
	sms := &fakeSMS{sid: "SM123"}
	email := &fakeEmail{}
	o := NewOrchestrator(store, sms, email, "https://lovenotes.app/dashboard")

	res, err := o.Deliver(context.Background(), deliverySubscriber(), 7, "hello Amy", domain.OccasionNone)
	require.NoError(t, err)

	assert.Equal(t, "sms", res.Channel)
	assert.Equal(t, domain.SendSent, res.Status)
	assert.Equal(t, 1, sms.calls)
	assert.Zero(t, email.calls, "email must not be attempted when SMS is configured")
	assert.Contains(t, sms.body, "hello Amy")
	assert.Contains(t, sms.body, "Reply STOP")

	require.Len(t, store.events, 2)
	assert.Equal(t, "create", store.events[0].op)
	assert.Equal(t, domain.SendPending, store.events[0].status, "row must be pending before the call")
	assert.Equal(t, domain.SendSent, store.events[1].status)
	assert.Equal(t, "SM123", store.events[1].providerID)
}

func TestDeliverSMSFailureDoesNotFallBack(t *testing.T) {
	store := &fakeSendLogStore{}
	sms := &fakeSMS{err: errors.New("carrier rejected")}
	email := &fakeEmail{}
	o := NewOrchestrator(store, sms, email, "")

	res, err := o.Deliver(context.Background(), deliverySubscriber(), 7, "hi", domain.OccasionNone)
	require.NoError(t, err, "gateway failure is in the result, not the error")

	assert.Equal(t, domain.SendFailed, res.Status)
	assert.ErrorContains(t, res.Err, "carrier rejected")
	assert.Zero(t, email.calls)
	assert.Equal(t, "carrier rejected", store.events[1].errMsg)
}

func TestDeliverEmailWhenNoSMS(t *testing.T) {
	store := &fakeSendLogStore{}
	email := &fakeEmail{id: "msg-9"}
	o := NewOrchestrator(store, nil, email, "https://lovenotes.app/dashboard")

	res, err := o.Deliver(context.Background(), deliverySubscriber(), 7, "hello", domain.OccasionAnniversary)
	require.NoError(t, err)

	assert.Equal(t, "email", res.Channel)
	assert.Equal(t, domain.SendSent, res.Status)
	assert.Equal(t, "msg-9", store.events[1].providerID)
}

func TestDeliverEmailWhenNoPhone(t *testing.T) {
	store := &fakeSendLogStore{}
	sms := &fakeSMS{sid: "SM1"}
	email := &fakeEmail{}
	o := NewOrchestrator(store, sms, email, "")

	sub := deliverySubscriber()
	sub.Phone = ""
	res, err := o.Deliver(context.Background(), sub, 7, "hello", domain.OccasionNone)
	require.NoError(t, err)

	assert.Equal(t, "email", res.Channel)
	assert.Zero(t, sms.calls)
}

func TestDeliverReadyWhenNothingConfigured(t *testing.T) {
	store := &fakeSendLogStore{}
	o := NewOrchestrator(store, nil, nil, "")

	res, err := o.Deliver(context.Background(), deliverySubscriber(), 7, "hello", domain.OccasionNone)
	require.NoError(t, err)

	assert.Equal(t, domain.SendReady, res.Status)
	assert.Empty(t, res.Channel)
	assert.Nil(t, res.Err)
	assert.Equal(t, domain.SendReady, store.events[1].status)
}

func TestDeliverEscapesHTML(t *testing.T) {
	store := &fakeSendLogStore{}
	email := &fakeEmail{}
	o := NewOrchestrator(store, nil, email, "")

	sub := deliverySubscriber()
	sub.WifeName = `Amy <img src=x>`
	_, err := o.Deliver(context.Background(), sub, 7, `love you "so" <much>`, domain.OccasionNone)
	require.NoError(t, err)

	assert.NotContains(t, email.html, "<img")
	assert.NotContains(t, email.html, "<much>")
	assert.Contains(t, email.html, "&lt;much&gt;")
}

func TestOccasionStyles(t *testing.T) {
	neutral := StyleFor(domain.OccasionNone)
	assert.Equal(t, "💕", neutral.Emoji)
	assert.Equal(t, "💕 Today's LoveNote for Amy", neutral.Subject("Amy"))

	anniv := StyleFor(domain.OccasionAnniversary)
	assert.Contains(t, anniv.Subject("Amy"), "Happy Anniversary!")
	assert.Contains(t, anniv.SMSPrefix("Amy"), "💍")

	// Unknown occasions fall back to neutral.
	assert.Equal(t, neutral, StyleFor(domain.Occasion("solstice")))
}

func TestSendGridSender(t *testing.T) {
	var gotAuth string
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		b := make([]byte, r.ContentLength)
		r.Body.Read(b)
		gotBody = string(b)
		w.Header().Set("X-Message-Id", "sg-42")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSendGridSender(config.SendGridConfig{
		APIKey: "SG.key", FromEmail: "hi@lovenotes.app", FromName: "LoveNotes", TimeoutSeconds: 5,
	})
	s.baseURL = srv.URL

	id, err := s.SendEmail(context.Background(), "amy@example.com", "subject", "<p>hi</p>", "hi")
	require.NoError(t, err)
	assert.Equal(t, "sg-42", id)
	assert.Equal(t, "Bearer SG.key", gotAuth)
	assert.True(t, strings.Contains(gotBody, "amy@example.com"))
}

func TestSendGridSenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad key"}]}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewSendGridSender(config.SendGridConfig{APIKey: "bad", FromEmail: "hi@lovenotes.app", TimeoutSeconds: 5})
	s.baseURL = srv.URL

	_, err := s.SendEmail(context.Background(), "amy@example.com", "s", "h", "t")
	assert.ErrorContains(t, err, "sendgrid error 401")
}
