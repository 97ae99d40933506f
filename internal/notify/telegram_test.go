package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/dir-archiver/internal/config"
	"github.com/raoulx24/dir-archiver/internal/logging"
	"github.com/raoulx24/dir-archiver/internal/report"
)

type fakeSender struct {
	sent []*telego.SendMessageParams
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, p *telego.SendMessageParams) (*telego.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, p)
	return &telego.Message{MessageID: len(f.sent)}, nil
}

func sampleRun() report.RunResult {
	start := time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC)
	return report.RunResult{
		ID:            "r1",
		Root:          "/srv/<share>",
		StartedAt:     start,
		FinishedAt:    start.Add(2500 * time.Millisecond),
		ArchiveCutoff: time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC),
		DeleteBefore:  time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC),
		Units: []report.UnitResult{
			{Name: "Photos", ArchivePath: "/srv/share/Photos/Photos_18-10-26.zip", Archived: 4, ArchivedBytes: 4000},
			{Name: "Logs", Expired: 2, ExpiredBytes: 20},
		},
	}
}

func TestTelegramNotify(t *testing.T) {
	s := &fakeSender{}
	n := newTelegram(s, "-100987", "nas (10.0.0.5)", logging.Discard())

	require.NoError(t, n.Notify(context.Background(), sampleRun()))
	require.Len(t, s.sent, 1)

	msg := s.sent[0]
	assert.Equal(t, telego.ChatID{ID: -100987}, msg.ChatID)
	assert.Equal(t, telego.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "<b>Archive run finished</b>")
	assert.Contains(t, msg.Text, "nas (10.0.0.5)")
	assert.Contains(t, msg.Text, "/srv/&lt;share&gt;")
	assert.Contains(t, msg.Text, "Duration: <b>2.50s</b>")
	assert.Contains(t, msg.Text, "Archived: <b>4 files</b> (4kB) into 1 archives, modified before 18.10.2025")
	assert.Contains(t, msg.Text, "Removed: <b>2 files</b>")
}

func TestTelegramNotifyFailuresListed(t *testing.T) {
	r := sampleRun()
	r.Units[1].Errors = []error{errors.New("permission denied")}
	r.DeleteBefore = time.Time{}

	s := &fakeSender{}
	require.NoError(t, newTelegram(s, "@ops", "nas", logging.Discard()).Notify(context.Background(), r))

	text := s.sent[0].Text
	assert.Equal(t, telego.ChatID{Username: "@ops"}, s.sent[0].ChatID)
	assert.Contains(t, text, "finished with errors")
	assert.Contains(t, text, "Failed units: <b>1</b> of 2")
	assert.Contains(t, text, "• Logs: permission denied")
	assert.NotContains(t, text, "Removed:")
}

func TestTelegramNotifySendError(t *testing.T) {
	s := &fakeSender{err: errors.New("429 too many requests")}
	err := newTelegram(s, "1", "h", logging.Discard()).Notify(context.Background(), sampleRun())
	assert.ErrorContains(t, err, "429")
}

func TestNewTelegramRequiresTokenAndChat(t *testing.T) {
	_, err := NewTelegram(config.TelegramConfig{Token: "x"}, logging.Discard())
	assert.Error(t, err)
}

func TestNewTelegramRejectsMalformedToken(t *testing.T) {
	_, err := NewTelegram(config.TelegramConfig{Token: "not-a-token", ChatID: "1"}, logging.Discard())
	assert.Error(t, err)
}

func TestNopNotifier(t *testing.T) {
	var n Notifier = Nop{}
	assert.NoError(t, n.Notify(context.Background(), sampleRun()))
}
