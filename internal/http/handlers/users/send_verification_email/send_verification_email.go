package sendverificationemail

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	c "herbarium/internal/core/domain/common"
	e "herbarium/internal/core/domain/errors"
	ratelimiter "herbarium/internal/core/domain/rate_limiter"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/domain/user"
	"herbarium/internal/core/services"
	issuetoken "herbarium/internal/core/services/issue_token"
	"herbarium/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type Handler struct {
	service    services.Service[issuetoken.Input, issuetoken.Result]
	baseURL    string
	isTestMode bool
}

func New(
	service services.Service[issuetoken.Input, issuetoken.Result],
	baseURL string,
	isTestMode bool,
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service, baseURL: baseURL, isTestMode: isTestMode}
}

type Input struct {
	Email string `json:"email"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required, is.Email, validation.Length(0, 512)),
	)
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	input := Input{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderError(rw, "invalid request data", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		response.Render(rw, err, http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(
		r.Context(),
		issuetoken.Input{
			Email:   c.NewEmail(input.Email),
			Purpose: token.EmailVerification,
			BaseURL: h.baseURL,
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, ratelimiter.ErrRateLimitExceeded):
			response.RenderRateLimitExceeded(rw)
		case errors.Is(err, user.ErrUserDoesNotExist):
			// Same answer as success, an unknown address must not be
			// distinguishable from a known one.
			response.Render(rw, struct{}{}, http.StatusOK)
		default:
			response.RenderInternalError(rw)
		}
		return
	}

	if h.isTestMode {
		rw.Header().Set("x-test-token", string(result.Token.Value))
	}
	response.Render(rw, struct{}{}, http.StatusOK)
}
