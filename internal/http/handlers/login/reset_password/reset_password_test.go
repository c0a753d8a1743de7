package resetpassword

import (
	"context"
	"net/http"
	"net/http/httptest"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/domain/user"
	service "herbarium/internal/core/services/reset_password"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	TOKEN    = "dGVzdC10b2tlbi12YWx1ZQ"
	PASSWORD = "new-password-123"
)

type stubService struct {
	err   error
	input *service.Input
}

func (s *stubService) Run(ctx context.Context, input service.Input) (result service.Result, err error) {
	s.input = &input
	if s.err != nil {
		return result, s.err
	}
	return result, nil
}

func serve(stub *stubService, tokenValue string, body string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Post("/login/reset-password/{token}", New(stub).ServeHTTP)
	req := httptest.NewRequest(http.MethodPost, "/login/reset-password/"+tokenValue, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestResetPasswordSuccess(t *testing.T) {
	stub := &stubService{}

	rec := serve(stub, TOKEN, `{"password": "`+PASSWORD+`"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.input)
	assert.Equal(t, token.Value(TOKEN), stub.input.Token)
	assert.Equal(t, user.RawPassword(PASSWORD), stub.input.NewPassword)
}

func TestResetPasswordRejectedTokensGetOneGenericAnswer(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{name: "does not exist", err: token.ErrTokenDoesNotExist},
		{name: "expired", err: token.ErrTokenExpired},
		{name: "purpose mismatch", err: token.ErrTokenPurposeMismatch},
		{name: "account gone", err: user.ErrUserDoesNotExist},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			stub := &stubService{err: c.err}

			rec := serve(stub, TOKEN, `{"password": "`+PASSWORD+`"}`)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestResetPasswordInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ``},
		{name: "no password", body: `{}`},
		{name: "too short", body: `{"password": "short"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			stub := &stubService{}

			rec := serve(stub, TOKEN, c.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, stub.input)
		})
	}
}
