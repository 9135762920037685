package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrGenerateFailed.WithDetail("upstream timeout"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "生成问卷失败", body["error"])
	assert.Equal(t, "GENERATE_FAILED", body["code"])
	assert.Equal(t, "upstream timeout", body["details"])
}

func TestWriteError_OmitsEmptyDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrSurveyNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "details")
}

func TestFromError(t *testing.T) {
	wrapped := fmt.Errorf("ctx: %w", ErrForbidden)
	assert.Same(t, ErrForbidden, FromError(wrapped))

	cause := stderrors.New("db down")
	got := FromError(cause)
	assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
	assert.ErrorIs(t, got, cause)
}

func TestCopiesDoNotMutateBase(t *testing.T) {
	_ = ErrInvalidSurvey.WithReason("问卷必须包含 pages 数组")
	_ = ErrInvalidSurvey.WithDetail("x")
	assert.Equal(t, "问卷 JSON 格式不正确", ErrInvalidSurvey.Message)
	assert.Empty(t, ErrInvalidSurvey.Detail)

	assert.Equal(t, "问卷 JSON 格式不正确: 问卷必须包含 pages 数组",
		ErrInvalidSurvey.WithReason("问卷必须包含 pages 数组").Message)
}
