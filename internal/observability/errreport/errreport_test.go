package errreport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledIsNoop(t *testing.T) {
	flush, err := Init(Config{})
	require.NoError(t, err)
	flush()
	assert.False(t, Enabled())

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	Middleware(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	assert.NotPanics(t, func() {
		CaptureError(context.Background(), errors.New("boom"), map[string]string{"op": "x"})
		CapturePanic(context.Background(), "boom")
	})
}
