package verifyemail

import (
	"errors"
	"net/http"
	e "herbarium/internal/core/domain/errors"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/domain/user"
	"herbarium/internal/core/services"
	verifyemail "herbarium/internal/core/services/verify_email"
	"herbarium/internal/http/handlers/response"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
)

type Handler struct {
	service services.Service[verifyemail.Input, verifyemail.Result]
}

func New(
	service services.Service[verifyemail.Input, verifyemail.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	rawToken := chi.URLParam(r, "token")
	if err := validation.Validate(rawToken, validation.Required, validation.Length(0, 128)); err != nil {
		response.RenderInvalidToken(rw)
		return
	}

	_, err := h.service.Run(
		r.Context(),
		verifyemail.Input{Token: token.Value(rawToken)},
	)
	if errors.Is(err, token.ErrTokenDoesNotExist) ||
		errors.Is(err, token.ErrTokenExpired) ||
		errors.Is(err, token.ErrTokenPurposeMismatch) {
		response.RenderInvalidToken(rw)
		return
	}
	if errors.Is(err, user.ErrUserDoesNotExist) {
		response.RenderInvalidToken(rw)
		return
	}
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	response.Render(rw, struct{}{}, http.StatusOK)
}
