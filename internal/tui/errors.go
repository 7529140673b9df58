package tui

import (
	"context"
	"errors"

	"github.com/reciloop/reciloop/internal/api"
	"github.com/reciloop/reciloop/internal/market"
	"github.com/reciloop/reciloop/internal/service"
)

// UserMessage turns an error into the pt-BR line shown in the status bar
// and printed by the one-shot commands.
func UserMessage(err error) string {
	var formErr *market.FormError
	var apiErr *api.Error
	switch {
	case errors.As(err, &formErr):
		return formErr.Message
	case errors.Is(err, api.ErrNotConfigured):
		return "API não configurada: defina RECILOOP_API_BASE_URL"
	case errors.Is(err, api.ErrInvalidROI):
		return "Erro no cálculo. Verifique os valores informados."
	case errors.Is(err, service.ErrNotLoggedIn):
		return service.ErrNotLoggedIn.Error()
	case errors.As(err, &apiErr):
		return apiErr.Detail
	case errors.Is(err, context.DeadlineExceeded):
		return "Tempo esgotado ao contatar a API"
	default:
		return "Erro de conexão: " + err.Error()
	}
}
