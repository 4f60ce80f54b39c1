// Package mail delivers sign-in links.
package mail

import (
	"context"
	"fmt"

	"pasta-logger/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rs/zerolog"
)

// Mailer sends a plain-text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// sesAPI is the part of the SES client the mailer uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type sesMailer struct {
	client sesAPI
	sender string
	logger zerolog.Logger
}

// NewSESMailer creates a Mailer backed by Amazon SES.
func NewSESMailer(ctx context.Context, cfg config.MailConfig, logger zerolog.Logger) (Mailer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SESRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return newSESMailer(ses.NewFromConfig(awsCfg), cfg.Sender, logger), nil
}

func newSESMailer(client sesAPI, sender string, logger zerolog.Logger) *sesMailer {
	return &sesMailer{
		client: client,
		sender: sender,
		logger: logger.With().Str("component", "ses-mailer").Logger(),
	}
}

func (m *sesMailer) Send(ctx context.Context, to, subject, body string) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(body),
					Charset: aws.String("UTF-8"),
				},
			},
		},
		Source: aws.String(m.sender),
	}

	out, err := m.client.SendEmail(ctx, input)
	if err != nil {
		m.logger.Error().Err(err).Str("to", to).Msg("failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info().Str("to", to).Str("message_id", aws.ToString(out.MessageId)).Msg("email sent")
	return nil
}

// logMailer writes messages to the log instead of delivering them.
type logMailer struct {
	logger zerolog.Logger
}

// NewLogMailer creates a Mailer for development that only logs messages.
func NewLogMailer(logger zerolog.Logger) Mailer {
	return &logMailer{logger: logger.With().Str("component", "log-mailer").Logger()}
}

func (m *logMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("email not delivered (SES disabled)")
	return nil
}

// New returns the SES mailer when it is enabled and initialises, and the
// log mailer otherwise.
func New(ctx context.Context, cfg config.MailConfig, logger zerolog.Logger) Mailer {
	if !cfg.SESEnabled {
		return NewLogMailer(logger)
	}
	m, err := NewSESMailer(ctx, cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialise SES, magic links will only be logged")
		return NewLogMailer(logger)
	}
	return m
}
