// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// errorBody is the JSON shape of every error response.
//
//	{ "error": "Employee not found." }
type errorBody struct {
	Error string `json:"error"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RenderBadRequest writes a 400 with a user-facing message.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	WriteJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// RenderNotFound writes a 404 with a user-facing message.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg string) {
	WriteJSON(w, http.StatusNotFound, errorBody{Error: msg})
}

// RenderTooLarge writes a 413 with a user-facing message.
func RenderTooLarge(w http.ResponseWriter, r *http.Request, msg string) {
	WriteJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: msg})
}

// RenderTooManyRequests writes a 429 with Retry-After in whole seconds.
func RenderTooManyRequests(w http.ResponseWriter, r *http.Request, retryAfter time.Duration, msg string) {
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second)/time.Second)))
	WriteJSON(w, http.StatusTooManyRequests, errorBody{Error: msg})
}

// ErrorLogger logs server-side failures and answers with a generic 500 so
// store errors never leak to clients.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs logMsg with err and the request path, then writes a
// 500 carrying userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	WriteJSON(w, http.StatusInternalServerError, errorBody{Error: userMsg})
}
