package main

import (
	"context"
	"fmt"
	"os"
	"herbarium/internal/config"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const (
	verificationSubject  = "Verify your email address"
	verificationHtmlPart = `<p>Hello,</p>
<p>Please confirm your email address by following the link below:</p>
<p><a href="{{verificationUrl}}">{{verificationUrl}}</a></p>
<p>The link will expire in 48 hours. If you did not create an account, ignore this message.</p>`
	verificationTextPart = `Please confirm your email address by following the link: {{verificationUrl}}
The link will expire in 48 hours. If you did not create an account, ignore this message.`

	passwordResetSubject  = "Reset your password"
	passwordResetHtmlPart = `<p>Hello,</p>
<p>A password reset was requested for your account. Follow the link below to set a new password:</p>
<p><a href="{{passwordResetUrl}}">{{passwordResetUrl}}</a></p>
<p>The link will expire in 24 hours. If you did not request a reset, ignore this message.</p>`
	passwordResetTextPart = `A password reset was requested for your account. Follow the link to set a new password: {{passwordResetUrl}}
The link will expire in 24 hours. If you did not request a reset, ignore this message.`
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: aws create-templates|delete-templates")
		os.Exit(2)
	}

	cfg, svc := mustInit()

	switch os.Args[1] {
	case "create-templates":
		createEmailTemplate(svc, cfg.AwsEmailVerificationTemplate, verificationSubject, verificationHtmlPart, verificationTextPart)
		createEmailTemplate(svc, cfg.AwsEmailPasswordResetTemplate, passwordResetSubject, passwordResetHtmlPart, passwordResetTextPart)
	case "delete-templates":
		deleteEmailTemplate(svc, cfg.AwsEmailVerificationTemplate)
		deleteEmailTemplate(svc, cfg.AwsEmailPasswordResetTemplate)
	default:
		fmt.Fprintln(os.Stderr, "usage: aws create-templates|delete-templates")
		os.Exit(2)
	}
}

func mustInit() (*config.Config, *ses.Client) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(cfg.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AwsAccessKey,
				cfg.AwsSecretKey,
				"",
			),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	return cfg, ses.NewFromConfig(awsCfg)
}

func createEmailTemplate(svc *ses.Client, name, subject, htmlPart, textPart string) {
	input := &ses.CreateTemplateInput{
		Template: &types.Template{
			SubjectPart:  &subject,
			HtmlPart:     &htmlPart,
			TextPart:     &textPart,
			TemplateName: &name,
		},
	}
	result, err := svc.CreateTemplate(context.Background(), input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Success:")
	fmt.Println(result)
}

func deleteEmailTemplate(svc *ses.Client, name string) {
	result, err := svc.DeleteTemplate(
		context.Background(),
		&ses.DeleteTemplateInput{TemplateName: &name},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Success:")
	fmt.Println(result)
}
