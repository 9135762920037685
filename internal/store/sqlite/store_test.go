package sqlite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjcanyue/smart-survey/internal/store/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	applied, err := Migrate(context.Background(), s.DB())
	require.NoError(t, err)
	assert.Empty(t, applied)
	require.NoError(t, s.Ping(context.Background()))
}

func TestSurveyRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	owner := "github:1"
	raw := `{"title":"T","pages":[],"custom":{"keep":true}}`
	sv := &core.Survey{ID: "survey_1", Title: "T", JSON: json.RawMessage(raw), ThemeType: "flat", OwnerID: &owner}
	require.NoError(t, s.CreateSurvey(ctx, sv))
	assert.ErrorIs(t, s.CreateSurvey(ctx, sv), core.ErrConflict)

	got, err := s.GetSurvey(ctx, "survey_1")
	require.NoError(t, err)
	assert.Equal(t, raw, string(got.JSON))
	assert.Equal(t, "flat", got.ThemeType)
	require.NotNil(t, got.OwnerID)
	assert.Equal(t, owner, *got.OwnerID)
	assert.Nil(t, got.OwnerEmail)

	list, total, err := s.ListSurveysByOwner(ctx, owner, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)

	_, err = s.GetSurvey(ctx, "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestResultsOrderingAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateSurvey(ctx, &core.Survey{ID: "s", JSON: json.RawMessage(`{}`), ThemeType: "default"}))

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, s.CreateResult(ctx, &core.Result{
			ID: id, SurveyID: "s", Data: json.RawMessage(`{"q":1}`), CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	rs, err := s.ListResults(ctx, "s", 0, 0)
	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.Equal(t, "r3", rs[0].ID)

	st, err := s.ResultStats(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	require.NotNil(t, st.LatestSubmission)
	assert.True(t, st.LatestSubmission.Equal(base.Add(2*time.Minute)))

	require.NoError(t, s.DeleteSurvey(ctx, "s"))
	rs, err = s.ListResults(ctx, "s", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, rs)
	assert.ErrorIs(t, s.DeleteSurvey(ctx, "s"), core.ErrNotFound)
}

func TestUpdateSurveyRespectsOwner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateSurvey(ctx, &core.Survey{ID: "s1", Title: "T", JSON: json.RawMessage(`{}`), ThemeType: "default"}))

	alice, bob := "github:1", "google:2"
	require.NoError(t, s.UpdateSurvey(ctx, &core.Survey{ID: "s1", Title: "A", JSON: json.RawMessage(`{}`), ThemeType: "default", OwnerID: &alice}))
	err := s.UpdateSurvey(ctx, &core.Survey{ID: "s1", Title: "B", JSON: json.RawMessage(`{}`), ThemeType: "default", OwnerID: &bob})
	assert.ErrorIs(t, err, core.ErrOwned)
	assert.ErrorIs(t, s.UpdateSurvey(ctx, &core.Survey{ID: "nope", JSON: json.RawMessage(`{}`), OwnerID: &bob}), core.ErrNotFound)

	got, err := s.GetSurvey(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, alice, *got.OwnerID)
}
