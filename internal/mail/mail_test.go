package mail

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"learnstudio/internal/config"
	"learnstudio/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingMailer struct {
	mu    sync.Mutex
	sent  []Message
	err   error
	block chan struct{}
}

func (r *recordingMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Message{To: to, Subject: subject, HTML: htmlBody})
	return r.err
}

func (r *recordingMailer) messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcher_DeliversAndDrainsOnStop(t *testing.T) {
	mailer := &recordingMailer{}
	m := metrics.New()
	d := NewDispatcher(mailer, 8, time.Second, discardLogger(), m)

	assert.True(t, d.Enqueue(Message{To: "a@x.com", Subject: "one"}))
	assert.True(t, d.Enqueue(Message{To: "b@x.com", Subject: "two"}))

	require.NoError(t, d.Stop(context.Background()))

	sent := mailer.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, "a@x.com", sent[0].To)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MailMessages.WithLabelValues("sent")))
}

func TestDispatcher_FailuresAreCountedNotReturned(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("relay down")}
	m := metrics.New()
	d := NewDispatcher(mailer, 1, time.Second, discardLogger(), m)

	assert.True(t, d.Enqueue(Message{To: "a@x.com"}))
	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MailMessages.WithLabelValues("failed")))
}

func TestDispatcher_FullQueueDrops(t *testing.T) {
	mailer := &recordingMailer{block: make(chan struct{})}
	m := metrics.New()
	d := NewDispatcher(mailer, 1, time.Second, discardLogger(), m)

	// the worker takes the first message and blocks in Send
	require.True(t, d.Enqueue(Message{To: "first@x.com"}))
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, time.Millisecond)

	require.True(t, d.Enqueue(Message{To: "queued@x.com"}))
	assert.False(t, d.Enqueue(Message{To: "dropped@x.com"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MailMessages.WithLabelValues("dropped")))

	close(mailer.block)
	require.NoError(t, d.Stop(context.Background()))
	assert.Len(t, mailer.messages(), 2)
}

func TestDispatcher_EnqueueAfterStop(t *testing.T) {
	d := NewDispatcher(&recordingMailer{}, 1, time.Second, discardLogger(), nil)
	require.NoError(t, d.Stop(context.Background()))
	require.NoError(t, d.Stop(context.Background()))

	assert.False(t, d.Enqueue(Message{To: "late@x.com"}))
}

func TestRenderReset(t *testing.T) {
	body, err := RenderReset("<Ada>", "123456", 10*time.Minute)
	require.NoError(t, err)

	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "10 minutes")
	assert.Contains(t, body, "&lt;Ada&gt;")
	assert.NotContains(t, body, "<Ada>")
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, NewLogMailer(discardLogger()).Send(context.Background(), "a@x.com", "s", "secret"))
}

func TestNewSMTPMailer(t *testing.T) {
	mailer, err := NewSMTPMailer(config.SMTPConfig{Server: "smtp.example.com", Port: 587, Email: "noreply@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "noreply@example.com", mailer.from)
}
