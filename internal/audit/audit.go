// Package audit registra eventos de seguridad y de propiedad de encuestas
// en un logger dedicado ("audit"), separado del log de requests.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/fjcanyue/smart-survey/internal/observability/logger"
	"github.com/fjcanyue/smart-survey/internal/util"
)

const (
	EventLogin         = "auth.login"
	EventLoginFailed   = "auth.login_failed"
	EventLogout        = "auth.logout"
	EventSurveyClaimed = "survey.claimed"
	EventSurveyDeleted = "survey.deleted"
)

// Log escribe event con los campos dados. El request id, si está, lo aporta
// el logger del contexto.
func Log(ctx context.Context, event string, fields ...zap.Field) {
	logger.From(ctx).Named("audit").Info(event, append(fields, zap.String("event", event))...)
}

// Email es el campo de email enmascarado.
func Email(v string) zap.Field { return zap.String("email", util.MaskEmail(v)) }
