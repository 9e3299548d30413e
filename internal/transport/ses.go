// internal/transport/ses.go
package transport

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	apperrors "card-dispatch/internal/common/errors"
	"card-dispatch/internal/common/logger"
	"card-dispatch/internal/guests"
)

// SESService is the slice of the SES client this transport uses.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESTransport delivers email through AWS SES.
type SESTransport struct {
	client    SESService
	fromEmail string
	log       logger.Logger
}

func NewSESTransport(client SESService, fromEmail string, log logger.Logger) *SESTransport {
	return &SESTransport{
		client:    client,
		fromEmail: fromEmail,
		log:       log.WithFields(map[string]interface{}{"transport": "ses"}),
	}
}

// Send delivers one email. Falls back to the plain body when no HTML artifact
// was composed.
func (t *SESTransport) Send(ctx context.Context, msg Message) (string, error) {
	html := msg.HTML
	if html == "" {
		html = msg.Body
	}

	out, err := t.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.Body)},
				Html: &types.Content{Data: aws.String(html)},
			},
		},
		Source: aws.String(t.fromEmail),
	})
	if err != nil {
		t.log.Error("ses send failed", map[string]interface{}{
			"to":    msg.To,
			"error": err,
		})
		return "", apperrors.NewTransportSendFailedError(string(guests.ChannelEmail), err)
	}

	return aws.ToString(out.MessageId), nil
}
