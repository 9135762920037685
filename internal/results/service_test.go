package results

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjcanyue/smart-survey/internal/email"
	"github.com/fjcanyue/smart-survey/internal/store/core"
	"github.com/fjcanyue/smart-survey/internal/store/memory"
	"github.com/fjcanyue/smart-survey/internal/survey"
)

const defJSON = `{"title":"Fruit","pages":[{"elements":[{"type":"checkbox","name":"fruit","title":"Fruit","choices":["Apple","Banana"]}]}]}`

type recordingNotifier struct {
	mu     sync.Mutex
	to     string
	notice email.ResultNotice
	err    error
}

func (n *recordingNotifier) NotifyResult(_ context.Context, to string, notice email.ResultNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.to, n.notice = to, notice
	return n.err
}

func setup(t *testing.T, ownerEmail *string, opts Options) (*Service, *memory.Store) {
	t.Helper()
	repo := memory.New()
	owner := "github:1"
	require.NoError(t, repo.CreateSurvey(context.Background(), &core.Survey{
		ID: "s1", Title: "Fruit", JSON: json.RawMessage(defJSON), ThemeType: survey.DefaultTheme,
		OwnerID: &owner, OwnerEmail: ownerEmail,
	}))
	surveys := survey.NewService(repo, survey.Options{})
	return NewService(surveys, repo, opts), repo
}

func TestSubmit_ValidatesPayload(t *testing.T) {
	svc, _ := setup(t, nil, Options{})
	ctx := context.Background()

	for _, raw := range []string{``, `null`, `[1,2]`, `"x"`, `{broken`} {
		_, err := svc.Submit(ctx, "s1", json.RawMessage(raw))
		assert.ErrorIs(t, err, ErrInvalidAnswers, raw)
	}

	_, err := svc.Submit(ctx, "missing", json.RawMessage(`{"a":1}`))
	assert.ErrorIs(t, err, survey.ErrNotFound)
}

func TestSubmitListStats(t *testing.T) {
	svc, _ := setup(t, nil, Options{})
	ctx := context.Background()

	for _, raw := range []string{`{"fruit":["Apple"]}`, `{"fruit":["Apple","Banana"]}`, `{}`} {
		id, err := svc.Submit(ctx, "s1", json.RawMessage(raw))
		require.NoError(t, err)
		assert.Regexp(t, `^result_\d+_[0-9a-z]{9}$`, id)
	}

	page, err := svc.List(ctx, "s1", 2, 0)
	require.NoError(t, err)
	assert.Len(t, page.Results, 2)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, "Fruit", page.SurveyTitle)

	page, err = svc.List(ctx, "s1", 0, -5)
	require.NoError(t, err)
	assert.Equal(t, DefaultListLimit, page.Limit)
	assert.Equal(t, 0, page.Offset)

	st, err := svc.Stats(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	require.NotNil(t, st.LatestSubmission)
	require.Len(t, st.Questions, 1)
	assert.Equal(t, []int{2, 1}, st.Questions[0].Counts())

	_, err = svc.Stats(ctx, "missing")
	assert.ErrorIs(t, err, survey.ErrNotFound)
	_, err = svc.List(ctx, "missing", 0, 0)
	assert.ErrorIs(t, err, survey.ErrNotFound)
}

func TestSubmit_NotifiesOwner(t *testing.T) {
	addr := "owner@example.com"
	n := &recordingNotifier{err: errors.New("smtp down")}
	svc, _ := setup(t, &addr, Options{Notifier: n, FrontendURL: "https://app.example"})

	done := make(chan struct{})
	svc.wait = func() { close(done) }

	id, err := svc.Submit(context.Background(), "s1", json.RawMessage(`{"fruit":["Apple"]}`))
	require.NoError(t, err, "notification failures never fail the submission")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification not sent")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	assert.Equal(t, addr, n.to)
	assert.Equal(t, id, n.notice.ResultID)
	assert.Equal(t, "https://app.example/results/s1", n.notice.ResultsURL)
}

func TestSubmit_NoOwnerEmailNoNotification(t *testing.T) {
	n := &recordingNotifier{}
	svc, _ := setup(t, nil, Options{Notifier: n})
	svc.wait = func() { t.Error("unexpected notification") }

	_, err := svc.Submit(context.Background(), "s1", json.RawMessage(`{}`))
	require.NoError(t, err)
}
