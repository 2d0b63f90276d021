package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rs/zerolog/log"
)

// SESAPI is the part of the SES client the sender uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESSender delivers through Amazon SES. Credentials come from the default AWS chain.
type SESSender struct {
	client SESAPI
	from   string
}

// NewSESSender loads the default AWS config for region.
func NewSESSender(ctx context.Context, region, fromEmail, fromName string) (*SESSender, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSESSenderWithClient(ses.NewFromConfig(cfg), fromEmail, fromName), nil
}

// NewSESSenderWithClient wraps an existing client.
func NewSESSenderWithClient(client SESAPI, fromEmail, fromName string) *SESSender {
	from := fromEmail
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", fromName, fromEmail)
	}
	return &SESSender{client: client, from: from}
}

func (s *SESSender) Send(ctx context.Context, msg *Message) error {
	out, err := s.client.SendEmail(ctx, BuildSESInput(s.from, msg))
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	log.Debug().Str("message_id", aws.ToString(out.MessageId)).Msg("Email sent")
	return nil
}

// BuildSESInput maps a Message onto the SES request.
func BuildSESInput(from string, msg *Message) *ses.SendEmailInput {
	body := &types.Body{}
	if msg.HTMLContent != "" {
		body.Html = &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(msg.HTMLContent)}
	}
	if msg.TextContent != "" {
		body.Text = &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(msg.TextContent)}
	}

	return &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &types.Destination{ToAddresses: []string{msg.To}},
		Message: &types.Message{
			Subject: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(msg.Subject)},
			Body:    body,
		},
	}
}
