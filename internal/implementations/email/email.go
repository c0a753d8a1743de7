package email

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"herbarium/internal/core/domain/token"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type TokenSender struct {
	ses *ses.Client
	// This address must be verified with Amazon SES.
	sender                    string
	apiPrefix                 string
	emailVerificationTemplate string
	passwordResetTemplate     string
}

func NewTokenSender(
	awsConfig aws.Config,
	sender string,
	apiPrefix string,
	emailVerificationTemplate string,
	passwordResetTemplate string,
) *TokenSender {
	return &TokenSender{
		ses:                       ses.NewFromConfig(awsConfig),
		sender:                    sender,
		apiPrefix:                 apiPrefix,
		emailVerificationTemplate: emailVerificationTemplate,
		passwordResetTemplate:     passwordResetTemplate,
	}
}

func (s *TokenSender) SendToken(ctx context.Context, input token.SendInput) error {
	var template string
	var templateParams interface{}

	switch input.Purpose {
	case token.EmailVerification:
		template = s.emailVerificationTemplate
		templateParams = emailVerificationTemplateParams{
			VerificationUrl: s.link(input.BaseURL, "/users/verify-email/", input.Token),
		}
	case token.PasswordReset:
		template = s.passwordResetTemplate
		templateParams = passwordResetTemplateParams{
			PasswordResetUrl: s.link(input.BaseURL, "/login/reset-password/", input.Token),
		}
	default:
		return fmt.Errorf("no email template for purpose %q", input.Purpose)
	}

	templateParamsBytes, err := json.Marshal(templateParams)
	if err != nil {
		return err
	}
	templateData := string(templateParamsBytes)

	email := string(input.Email)
	_, err = s.ses.SendTemplatedEmail(
		ctx,
		&ses.SendTemplatedEmailInput{
			Source: &s.sender,
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{email},
			},
			Template:     &template,
			TemplateData: &templateData,
		},
	)
	return err
}

func (s *TokenSender) link(baseURL string, path string, value token.Value) string {
	return strings.TrimSuffix(baseURL, "/") + s.apiPrefix + path + string(value)
}

type emailVerificationTemplateParams struct {
	VerificationUrl string `json:"verificationUrl"`
}

type passwordResetTemplateParams struct {
	PasswordResetUrl string `json:"passwordResetUrl"`
}
