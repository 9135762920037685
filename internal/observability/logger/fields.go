package logger

import (
	"time"

	"go.uber.org/zap"
)

// ─── HTTP ───

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

// DurationMs registra la duración en milisegundos.
func DurationMs(d time.Duration) zap.Field { return zap.Int64("duration_ms", d.Milliseconds()) }

// ─── Dominio ───

// UserID es el id compuesto "{provider}:{id}".
func UserID(v string) zap.Field   { return zap.String("user_id", v) }
func Provider(v string) zap.Field { return zap.String("provider", v) }
func SurveyID(v string) zap.Field { return zap.String("survey_id", v) }
func ResultID(v string) zap.Field { return zap.String("result_id", v) }

// LLM identifica el proveedor de LLM que respondió.
func LLM(v string) zap.Field { return zap.String("llm_provider", v) }

// ─── Sistema ───

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }

// Layer: controller, service, store.
func Layer(v string) zap.Field { return zap.String("layer", v) }
func Err(err error) zap.Field  { return zap.Error(err) }

// ─── Genéricos ───

func Count(v int) zap.Field               { return zap.Int("count", v) }
func String(key, v string) zap.Field      { return zap.String(key, v) }
func Int(key string, v int) zap.Field     { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field   { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field     { return zap.Any(key, v) }
