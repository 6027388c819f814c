package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"evisa/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingTransport struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (t *recordingTransport) Send(_ context.Context, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, msg)
	return nil
}

func (t *recordingTransport) messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.sent...)
}

var fixedNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestDispatcher(tr Transport) *Dispatcher {
	d := NewDispatcher(tr, "noreply@evisa.example", "https://evisa.example")
	d.now = func() time.Time { return fixedNow }
	return d
}

func sampleUser() *domain.User {
	return &domain.User{ID: 7, FullName: "Somchai Jaidee", Email: "somchai@example.com"}
}

func sampleApp() *domain.Application {
	return &domain.Application{
		ID:            3,
		UserID:        7,
		BookingNumber: "TH-2026-4821",
		VisaType:      domain.VisaTourist,
		Status:        domain.StatusSubmitted,
	}
}

func TestDispatcher_Welcome(t *testing.T) {
	tr := &recordingTransport{}
	d := newTestDispatcher(tr)

	require.NoError(t, d.SendWelcome(context.Background(), sampleUser()))

	sent := tr.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, KindWelcome, sent[0].Kind)
	assert.Equal(t, "somchai@example.com", sent[0].To)
	assert.Equal(t, "Thailand eVisa Portal <noreply@evisa.example>", sent[0].From)
	assert.Equal(t, "Welcome to Thailand eVisa Portal", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "Dear Somchai Jaidee,")
	assert.Contains(t, sent[0].HTML, "https://evisa.example")
}

func TestDispatcher_SubjectsCarryBookingNumber(t *testing.T) {
	tr := &recordingTransport{}
	d := newTestDispatcher(tr)
	ctx := context.Background()
	u, app := sampleUser(), sampleApp()
	submitted := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	app.SubmittedAt = &submitted

	require.NoError(t, d.SendApplicationSubmitted(ctx, u, app))
	require.NoError(t, d.SendStatusUpdate(ctx, u, app, domain.StatusUnderReview))
	require.NoError(t, d.SendApproval(ctx, u, app))
	require.NoError(t, d.SendPaymentConfirmation(ctx, u, app, &domain.Payment{
		TransactionID: "TXN-01J0000000",
		Amount:        decimal.NewFromInt(40),
		Currency:      "USD",
	}))

	sent := tr.messages()
	require.Len(t, sent, 4)
	assert.Equal(t, "Application Submitted - TH-2026-4821", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "Mar 10, 2026")
	assert.Contains(t, sent[0].HTML, "Tourist Visa (TR)")

	assert.Equal(t, "Status Update - TH-2026-4821", sent[1].Subject)
	assert.Contains(t, sent[1].HTML, "Under Review")
	assert.Contains(t, sent[1].HTML, "Mar 14, 2026")

	assert.Equal(t, "Visa Approved - TH-2026-4821", sent[2].Subject)
	assert.Equal(t, KindApproved, sent[2].Kind)

	assert.Equal(t, "Payment Received - TH-2026-4821", sent[3].Subject)
	assert.Contains(t, sent[3].HTML, "$40.00 USD")
	assert.Contains(t, sent[3].HTML, "TXN-01J0000000")
}

func TestDispatcher_EscapesUserInput(t *testing.T) {
	tr := &recordingTransport{}
	d := newTestDispatcher(tr)
	u := sampleUser()
	u.FullName = `<script>alert("x")</script>`

	require.NoError(t, d.SendWelcome(context.Background(), u))
	html := tr.messages()[0].HTML
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestDispatcher_NoRecipient(t *testing.T) {
	tr := &recordingTransport{}
	d := newTestDispatcher(tr)
	u := sampleUser()
	u.Email = ""

	err := d.SendWelcome(context.Background(), u)
	assert.ErrorIs(t, err, ErrNoRecipient)
	assert.Empty(t, tr.messages())
}

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestSMTPTransport_Send(t *testing.T) {
	dialer := &fakeDialer{}
	tr := &SMTPTransport{dialer: dialer}

	msg := Message{From: "Portal <a@b.c>", To: "x@y.z", Subject: "Hi", HTML: "<p>hi</p>"}
	require.NoError(t, tr.Send(context.Background(), msg))
	require.Len(t, dialer.sent, 1)
	assert.Equal(t, []string{"x@y.z"}, dialer.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Hi"}, dialer.sent[0].GetHeader("Subject"))

	dialer.err = errors.New("connection refused")
	err := tr.Send(context.Background(), msg)
	assert.ErrorContains(t, err, "connection refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tr.Send(ctx, msg), context.Canceled)
}

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaTransport_KeysByRecipient(t *testing.T) {
	w := &fakeWriter{}
	tr := &KafkaTransport{writer: w, topic: "mail.outbound"}

	msg := Message{Kind: KindStatus, To: "x@y.z", Subject: "Status Update - TH-2026-1000", HTML: "<p/>"}
	require.NoError(t, tr.Send(context.Background(), msg))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "x@y.z", string(w.msgs[0].Key))

	var decoded Message
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, msg, decoded)
	assert.Equal(t, "kind", w.msgs[0].Headers[0].Key)

	require.NoError(t, tr.Close())
	assert.True(t, w.closed)
}
