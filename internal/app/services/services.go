package services

import (
	"herbarium/internal/app/deps"
	drl "herbarium/internal/core/domain/rate_limiter"
	"herbarium/internal/core/services"
	deleteexpiredtokens "herbarium/internal/core/services/delete_expired_tokens"
	issuetoken "herbarium/internal/core/services/issue_token"
	ratelimiting "herbarium/internal/core/services/rate_limiting"
	resetpassword "herbarium/internal/core/services/reset_password"
	sendtokennotification "herbarium/internal/core/services/send_token_notification"
	verifyemail "herbarium/internal/core/services/verify_email"
)

type Services struct {
	IssueToken            services.Service[issuetoken.Input, issuetoken.Result]
	VerifyEmail           services.Service[verifyemail.Input, verifyemail.Result]
	ResetPassword         services.Service[resetpassword.Input, resetpassword.Result]
	SendTokenNotification services.Service[sendtokennotification.Input, sendtokennotification.Result]
	DeleteExpiredTokens   services.Service[deleteexpiredtokens.Input, deleteexpiredtokens.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	s.IssueToken = ratelimiting.WithRateLimiting(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Interval: drl.Hour, Value: 3},
		issuetoken.NewWithTokenSending(
			deps.Logger,
			deps.TokenNotificationPublisher,
			issuetoken.New(
				deps.Logger,
				deps.UserRepository,
				deps.TokenRepository,
				deps.TokenValueGenerator,
				deps.Now,
			),
		),
	)
	s.VerifyEmail = verifyemail.New(
		deps.Logger,
		deps.TokenRepository,
		deps.UserRepository,
		deps.Now,
	)
	s.ResetPassword = resetpassword.New(
		deps.Logger,
		deps.TokenRepository,
		deps.UserRepository,
		deps.PasswordHasher,
		deps.Now,
	)
	s.SendTokenNotification = sendtokennotification.New(
		deps.Logger,
		deps.EmailSender,
	)
	s.DeleteExpiredTokens = deleteexpiredtokens.New(
		deps.Logger,
		deps.TokenRepository,
		deps.Now,
	)

	return s
}
