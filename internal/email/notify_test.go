package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	to, subject, html, text string
}

func (c *captureSender) Send(_ context.Context, to, subject, html, text string) error {
	c.to, c.subject, c.html, c.text = to, subject, html, text
	return nil
}

func TestNotifyResult(t *testing.T) {
	cs := &captureSender{}
	n := &Notifier{Sender: cs}
	err := n.NotifyResult(context.Background(), "owner@example.com", ResultNotice{
		SurveyID:    "survey_1",
		SurveyTitle: "<Coffee>",
		ResultID:    "result_1",
		SubmittedAt: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		ResultsURL:  "https://app.example/results/survey_1",
	})
	require.NoError(t, err)

	assert.Equal(t, "owner@example.com", cs.to)
	assert.Contains(t, cs.subject, "<Coffee>")
	assert.Contains(t, cs.html, "&lt;Coffee&gt;")
	assert.Contains(t, cs.text, "result_1")
	assert.Contains(t, cs.text, "2026-05-01 08:00:00 UTC")
}

func TestRenderResultNotice_FallsBackToID(t *testing.T) {
	subject, _, _, err := RenderResultNotice(ResultNotice{SurveyID: "survey_9"})
	require.NoError(t, err)
	assert.Contains(t, subject, "survey_9")
}

func TestSMTPSender_Message(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example", Port: 587, From: "noreply@example.com"})
	m := s.message("to@example.com", "hi", "<p>x</p>", "x")
	assert.Equal(t, []string{"noreply@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"to@example.com"}, m.GetHeader("To"))
	assert.Equal(t, "auto", s.cfg.TLSMode)
	assert.False(t, s.dialer().SSL)
}
