package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjcanyue/smart-survey/internal/store/core"
)

func strp(s string) *string { return &s }

func withClock(s *Store, start time.Time) {
	now := start
	s.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestSurveyCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()
	withClock(s, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	sv := &core.Survey{ID: "survey_1", Title: "T", JSON: json.RawMessage(`{"title":"T","x":1}`), ThemeType: "default"}
	require.NoError(t, s.CreateSurvey(ctx, sv))
	assert.ErrorIs(t, s.CreateSurvey(ctx, sv), core.ErrConflict)

	got, err := s.GetSurvey(ctx, "survey_1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"T","x":1}`, string(got.JSON))
	assert.False(t, got.HasOwner())

	got.OwnerID = strp("github:1")
	got.Title = "T2"
	require.NoError(t, s.UpdateSurvey(ctx, got))

	again, err := s.GetSurvey(ctx, "survey_1")
	require.NoError(t, err)
	assert.Equal(t, "T2", again.Title)
	assert.True(t, again.HasOwner())
	assert.Equal(t, sv.CreatedAt, again.CreatedAt)

	_, err = s.GetSurvey(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, s.UpdateSurvey(ctx, &core.Survey{ID: "missing"}), core.ErrNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateSurvey(ctx, &core.Survey{ID: "a", JSON: json.RawMessage(`{}`), OwnerID: strp("u")}))

	got, err := s.GetSurvey(ctx, "a")
	require.NoError(t, err)
	*got.OwnerID = "someone-else"

	again, err := s.GetSurvey(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "u", *again.OwnerID)
}

func TestListSurveysByOwner(t *testing.T) {
	ctx := context.Background()
	s := New()
	withClock(s, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	for _, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, s.CreateSurvey(ctx, &core.Survey{ID: id, JSON: json.RawMessage(`{}`), OwnerID: strp("alice")}))
	}
	require.NoError(t, s.CreateSurvey(ctx, &core.Survey{ID: "b1", JSON: json.RawMessage(`{}`), OwnerID: strp("bob")}))
	require.NoError(t, s.CreateSurvey(ctx, &core.Survey{ID: "n1", JSON: json.RawMessage(`{}`)}))

	list, total, err := s.ListSurveysByOwner(ctx, "alice", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "s3", list[0].ID)
	assert.Equal(t, "s2", list[1].ID)

	list, _, err = s.ListSurveysByOwner(ctx, "alice", 2, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "s1", list[0].ID)

	list, total, err = s.ListSurveysByOwner(ctx, "alice", 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, list)
}

func TestResultsAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	withClock(s, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, s.CreateSurvey(ctx, &core.Survey{ID: "s", JSON: json.RawMessage(`{}`)}))
	st, err := s.ResultStats(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Total)
	assert.Nil(t, st.LatestSubmission)

	for _, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, s.CreateResult(ctx, &core.Result{ID: id, SurveyID: "s", Data: json.RawMessage(`{"q":1}`)}))
	}

	rs, err := s.ListResults(ctx, "s", 2, 0)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "r3", rs[0].ID)

	all, err := s.ListResults(ctx, "s", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	st, err = s.ResultStats(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	require.NotNil(t, st.LatestSubmission)
	assert.Equal(t, all[0].CreatedAt, *st.LatestSubmission)

	require.NoError(t, s.DeleteSurvey(ctx, "s"))
	rs, err = s.ListResults(ctx, "s", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, rs)
	assert.ErrorIs(t, s.DeleteSurvey(ctx, "s"), core.ErrNotFound)
}

func TestUpdateSurveyRespectsOwner(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateSurvey(ctx, &core.Survey{ID: "s1", Title: "T", JSON: json.RawMessage(`{}`)}))

	require.NoError(t, s.UpdateSurvey(ctx, &core.Survey{ID: "s1", Title: "alice", OwnerID: strp("github:1")}))
	assert.ErrorIs(t, s.UpdateSurvey(ctx, &core.Survey{ID: "s1", Title: "bob", OwnerID: strp("google:2")}), core.ErrOwned)
	assert.ErrorIs(t, s.UpdateSurvey(ctx, &core.Survey{ID: "s1", Title: "anon"}), core.ErrOwned)
	require.NoError(t, s.UpdateSurvey(ctx, &core.Survey{ID: "s1", Title: "alice again", OwnerID: strp("github:1")}))

	got, err := s.GetSurvey(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "alice again", got.Title)
	assert.Equal(t, "github:1", *got.OwnerID)
}
