package issuetoken

import (
	"context"
	"errors"
	e "herbarium/internal/core/domain/errors"
	"herbarium/internal/core/domain/logging"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/services"
)

// serviceWithTokenSending dispatches the token link after a successful
// issuance. Delivery is fire-and-forget: a sender failure is logged and
// never fails the issuance.
type serviceWithTokenSending struct {
	log    logging.Logger
	sender token.Sender
	inner  services.Service[Input, Result]
}

func NewWithTokenSending(
	log logging.Logger,
	sender token.Sender,
	inner services.Service[Input, Result],
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	if inner == nil {
		panic(e.NewNilArgumentError("inner"))
	}
	return &serviceWithTokenSending{
		log:    log,
		sender: sender,
		inner:  inner,
	}
}

func (s *serviceWithTokenSending) Run(ctx context.Context, input Input) (result Result, err error) {
	result, err = s.inner.Run(ctx, input)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Info(ctx, "Skip sending token.", logging.Entry("err", err))
		return result, err
	}

	sendErr := s.sender.SendToken(ctx, token.SendInput{
		Purpose: result.Token.Purpose,
		Email:   result.User.Email,
		Token:   result.Token.Value,
		BaseURL: input.BaseURL,
	})
	if sendErr != nil {
		s.log.Error(
			ctx,
			"Could not dispatch token notification.",
			logging.Entry("userID", result.User.ID),
			logging.Entry("purpose", result.Token.Purpose),
			logging.Entry("err", sendErr),
		)
		return result, nil
	}

	s.log.Info(
		ctx,
		"Token notification has been dispatched.",
		logging.Entry("userID", result.User.ID),
		logging.Entry("purpose", result.Token.Purpose),
	)
	return result, nil
}
