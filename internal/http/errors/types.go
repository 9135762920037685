package errors

import "net/http"

// ─── 400 ───

var (
	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "请求体不是有效的 JSON",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMissingPrompt = &AppError{
		Code:       "MISSING_PROMPT",
		Message:    "缺少问卷描述",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMissingSurveyFields = &AppError{
		Code:       "MISSING_FIELDS",
		Message:    "缺少问卷 ID 或 JSON 数据",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMissingSurveyID = &AppError{
		Code:       "MISSING_SURVEY_ID",
		Message:    "缺少问卷 ID",
		HTTPStatus: http.StatusBadRequest,
	}

	// ErrInvalidSurvey lleva el motivo en el mensaje (ver InvalidSurvey).
	ErrInvalidSurvey = &AppError{
		Code:       "INVALID_SURVEY",
		Message:    "问卷 JSON 格式不正确",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidAnswers = &AppError{
		Code:       "INVALID_ANSWERS",
		Message:    "缺少或无效的问卷答案数据",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidParameter = &AppError{
		Code:       "INVALID_PARAMETER",
		Message:    "查询参数无效",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrUnsupportedProvider = &AppError{
		Code:       "UNSUPPORTED_PROVIDER",
		Message:    "Unsupported provider",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrProviderNotConfigured = &AppError{
		Code:       "PROVIDER_NOT_CONFIGURED",
		Message:    "Provider not configured",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBodyTooLarge = &AppError{
		Code:       "BODY_TOO_LARGE",
		Message:    "请求体过大",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
)

// ─── 401 / 403 / 404 ───

var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "未登录",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "无权操作此问卷",
		HTTPStatus: http.StatusForbidden,
	}

	ErrSurveyNotFound = &AppError{
		Code:       "SURVEY_NOT_FOUND",
		Message:    "问卷不存在",
		HTTPStatus: http.StatusNotFound,
	}

	ErrRouteNotFound = &AppError{
		Code:       "ROUTE_NOT_FOUND",
		Message:    "接口不存在",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "不支持的请求方法",
		HTTPStatus: http.StatusMethodNotAllowed,
	}
)

// ─── 429 / 5xx ───

var (
	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "请求过于频繁，请稍后再试",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "服务器内部错误",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrGenerateFailed = &AppError{
		Code:       "GENERATE_FAILED",
		Message:    "生成问卷失败",
		HTTPStatus: http.StatusInternalServerError,
	}

	// ErrInvalidDraft: el LLM devolvió algo que no pasa la validación.
	ErrInvalidDraft = &AppError{
		Code:       "INVALID_DRAFT",
		Message:    "生成的问卷格式不正确",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrSaveFailed = &AppError{
		Code:       "SAVE_FAILED",
		Message:    "保存问卷失败",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrLoadFailed = &AppError{
		Code:       "LOAD_FAILED",
		Message:    "获取问卷失败",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrSubmitFailed = &AppError{
		Code:       "SUBMIT_FAILED",
		Message:    "提交问卷结果失败",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrResultsFailed = &AppError{
		Code:       "RESULTS_FAILED",
		Message:    "获取问卷结果失败",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "服务暂不可用",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)

// WithReason agrega el motivo al mensaje ("{mensaje}: {motivo}"), como lo
// espera el frontend para errores de validación.
func (e *AppError) WithReason(reason string) *AppError {
	cp := *e
	if reason != "" {
		cp.Message = e.Message + ": " + reason
	}
	return &cp
}
