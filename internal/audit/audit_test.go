package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fjcanyue/smart-survey/internal/observability/logger"
)

func TestLogWritesNamedEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core))

	Log(ctx, EventLogin, logger.UserID("github_1"), Email("alice@example.com"))

	entries := logs.All()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "audit", e.LoggerName)
	assert.Equal(t, EventLogin, e.Message)
	fields := e.ContextMap()
	assert.Equal(t, "auth.login", fields["event"])
	assert.Equal(t, "github_1", fields["user_id"])
	assert.Equal(t, "a…@e….com", fields["email"])
}
