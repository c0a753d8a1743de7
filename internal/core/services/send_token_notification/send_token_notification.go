package sendtokennotification

import (
	"context"
	c "herbarium/internal/core/domain/common"
	e "herbarium/internal/core/domain/errors"
	"herbarium/internal/core/domain/logging"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/services"
)

// The worker-side half of token delivery: takes a dequeued notification and
// hands it to the actual email sender.
type Input struct {
	Purpose token.Purpose
	Email   c.Email
	Token   token.Value
	BaseURL string
}

type Result struct{}

type service struct {
	log    logging.Logger
	sender token.Sender
}

func New(
	log logging.Logger,
	sender token.Sender,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	return &service{log: log, sender: sender}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	err = s.sender.SendToken(ctx, token.SendInput{
		Purpose: input.Purpose,
		Email:   input.Email,
		Token:   input.Token,
		BaseURL: input.BaseURL,
	})
	if err != nil {
		s.log.Error(
			ctx,
			"Could not send token notification.",
			logging.Entry("email", input.Email),
			logging.Entry("purpose", input.Purpose),
			logging.Entry("err", err),
		)
		return result, err
	}
	s.log.Info(
		ctx,
		"Token notification has been sent.",
		logging.Entry("email", input.Email),
		logging.Entry("purpose", input.Purpose),
	)
	return result, nil
}
