package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotConfigured is returned when no API base URL is set.
	ErrNotConfigured = errors.New("API URL não configurada")
	// ErrInvalidCredentials is matched by a 401 from POST /token.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is matched by any other 401/403, or a call made without a token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is matched by a 404.
	ErrNotFound = errors.New("not found")
	// ErrInvalidROI is returned when the ROI response is unreadable, incomplete
	// or carries non-finite numbers.
	ErrInvalidROI = errors.New("invalid ROI result")
)

// Error is a non-2xx response. Detail is the server's message when it sent one.
type Error struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

// Is maps status codes onto the package sentinels so callers can use errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidCredentials:
		return e.Op == opLogin && e.StatusCode == http.StatusUnauthorized
	case ErrUnauthorized:
		if e.Op == opLogin {
			return false
		}
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an *Error.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func newError(op string, status int, body []byte) *Error {
	detail := detailFromBody(body)
	if detail == "" {
		detail = defaultDetail(op, status)
	}
	return &Error{Op: op, StatusCode: status, Detail: detail}
}

// detailFromBody reads {"detail": "..."} or {"message": "..."}. A non-string
// detail (validation error arrays) is ignored.
func detailFromBody(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	var detail string
	if len(payload.Detail) > 0 && json.Unmarshal(payload.Detail, &detail) == nil && strings.TrimSpace(detail) != "" {
		return detail
	}
	return strings.TrimSpace(payload.Message)
}

func defaultDetail(op string, status int) string {
	switch {
	case status == http.StatusUnauthorized && op == opLogin:
		return "Email ou senha incorretos"
	case status == http.StatusUnauthorized:
		return "Sessão inválida ou expirada"
	case status == http.StatusInternalServerError:
		return "Erro interno do servidor. Tente novamente."
	}
	return fmt.Sprintf("Erro %d: %s", status, http.StatusText(status))
}
