package app

import (
	"fmt"
	"net/http"
	"herbarium/internal/app/deps"
	"herbarium/internal/app/services"
	resetpassword "herbarium/internal/http/handlers/login/reset_password"
	sendpasswordresettoken "herbarium/internal/http/handlers/login/send_password_reset_token"
	sendverificationemail "herbarium/internal/http/handlers/users/send_verification_email"
	verifyemail "herbarium/internal/http/handlers/users/verify_email"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	isTestMode := deps.Config.IsTestMode
	baseURL := deps.Config.BaseURL

	usersRouter := chi.NewRouter()
	usersRouter.Method(
		http.MethodPost,
		"/send-verification-email",
		sendverificationemail.New(s.IssueToken, baseURL, isTestMode),
	)
	usersRouter.Method(http.MethodGet, "/verify-email/{token}", verifyemail.New(s.VerifyEmail))

	loginRouter := chi.NewRouter()
	loginRouter.Method(
		http.MethodPost,
		"/forgot-password",
		sendpasswordresettoken.New(s.IssueToken, baseURL, isTestMode),
	)
	loginRouter.Method(http.MethodPost, "/reset-password/{token}", resetpassword.New(s.ResetPassword))

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Route(deps.Config.APIPrefix, func(api chi.Router) {
		api.Mount("/users", usersRouter)
		api.Mount("/login", loginRouter)
	})

	address := fmt.Sprintf("0.0.0.0:%d", deps.Config.Port)

	return &http.Server{
		Handler: router,
		Addr:    address,
	}
}
