package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httperrors "github.com/fjcanyue/smart-survey/internal/http/errors"
)

func TestReadJSON(t *testing.T) {
	var body struct {
		Prompt string `json:"prompt"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"prompt":"hi","extra":1}`))
	require.NoError(t, ReadJSON(httptest.NewRecorder(), r, &body))
	assert.Equal(t, "hi", body.Prompt)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{oops`))
	err := ReadJSON(httptest.NewRecorder(), r, &body)
	assert.ErrorIs(t, err, httperrors.ErrInvalidJSON)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`"`+strings.Repeat("a", MaxBodyBytes)+`"`))
	err = ReadJSON(httptest.NewRecorder(), r, &body)
	assert.Equal(t, httperrors.ErrBodyTooLarge, err)
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=20&offset=abc&zero=0", nil)
	assert.Equal(t, 20, QueryInt(r, "limit", 50))
	assert.Equal(t, 0, QueryInt(r, "offset", 0))
	assert.Equal(t, 7, QueryInt(r, "zero", 7))
	assert.Equal(t, 9, QueryInt(r, "missing", 9))
}
