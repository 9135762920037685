// Package helpers reúne utilidades HTTP compartidas por los controllers.
package helpers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	httperrors "github.com/fjcanyue/smart-survey/internal/http/errors"
	"github.com/fjcanyue/smart-survey/internal/observability/errreport"
	"github.com/fjcanyue/smart-survey/internal/observability/logger"
)

// MaxBodyBytes limita el cuerpo de las requests JSON.
const MaxBodyBytes = 1 << 20

// ReadJSON decodifica de forma tolerante (sin fallar por campos desconocidos).
// Un body vacío deja v sin tocar. Devuelve un *AppError listo para WriteError.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return httperrors.ErrBodyTooLarge
		}
		return httperrors.ErrInvalidJSON.WithCause(err)
	}
	return nil
}

// WriteJSON escribe una respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// QueryInt lee un entero de la query. Ausente o inválido devuelve def, como
// el frontend espera (parseInt(x) || def).
func QueryInt(r *http.Request, key string, def int) int {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n == 0 {
		return def
	}
	return n
}

// WriteError escribe el sobre de error. Los 5xx se loguean con la causa y se
// reportan a Sentry; la causa nunca llega al cliente.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := httperrors.FromError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.From(r.Context()).Error("request failed",
			logger.String("code", appErr.Code), logger.Err(appErr.Err))
		errreport.CaptureError(r.Context(), err, map[string]string{"code": appErr.Code})
	}
	httperrors.WriteError(w, appErr)
}
