// Package mailer sends the digest through Amazon SES.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/smithy-go"

	apperrors "github.com/sh3r4rd/upload_reports/internal/errors"
	"github.com/sh3r4rd/upload_reports/internal/logger"
	"github.com/sh3r4rd/upload_reports/internal/outcome"
)

const charset = "UTF-8"

// Message is one outgoing email. An empty Text falls back to HTML.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// SESAPI is the part of *ses.Client used by SES.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SES sends digest emails through Amazon SES.
type SES struct {
	client SESAPI
	logg   *logger.Logger
}

// NewSES builds an SES mailer. Both arguments are required.
func NewSES(client SESAPI, logg *logger.Logger) (*SES, error) {
	if client == nil {
		return nil, fmt.Errorf("ses client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &SES{client: client, logg: logg}, nil
}

// Send dispatches msg once and returns the SES message ID.
func (s *SES) Send(ctx context.Context, msg Message) outcome.Result[string] {
	if len(msg.To) == 0 {
		err := apperrors.New(apperrors.CodeEmailSend, "no recipients")
		s.logg.Error(ctx, "failed to send email", err)
		return outcome.Failed[string](err)
	}
	text := msg.Text
	if text == "" {
		text = msg.HTML
	}

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(msg.From),
		Destination: &types.Destination{ToAddresses: msg.To},
		Message: &types.Message{
			Subject: content(msg.Subject),
			Body: &types.Body{
				Text: content(text),
				Html: content(msg.HTML),
			},
		},
	})
	if err != nil {
		wrapped := apperrors.Wrap(apperrors.CodeEmailSend, err, providerMessage(err))
		s.logg.Error(ctx, "failed to send email: "+providerMessage(err), wrapped)
		return outcome.Failed[string](wrapped)
	}

	messageID := aws.ToString(out.MessageId)
	s.logg.Info(s.logg.WithField(ctx, "message_id", messageID), "email sent! Message ID: "+messageID)
	return outcome.Ok(messageID)
}

func content(data string) *types.Content {
	return &types.Content{Charset: aws.String(charset), Data: aws.String(data)}
}

// providerMessage extracts the SES error message, or the error text for
// failures that never reached SES.
func providerMessage(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return apiErr.ErrorMessage()
	}
	return err.Error()
}
