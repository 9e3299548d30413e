// internal/transport/sns.go
package transport

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	apperrors "card-dispatch/internal/common/errors"
	"card-dispatch/internal/common/logger"
)

// SNSService is the slice of the SNS client this transport uses.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSTransport delivers chat and mms messages as SMS through AWS SNS. The
// subject line is dropped; only the composed body travels.
type SNSTransport struct {
	client   SNSService
	senderID string
	log      logger.Logger
}

func NewSNSTransport(client SNSService, senderID string, log logger.Logger) *SNSTransport {
	return &SNSTransport{
		client:   client,
		senderID: senderID,
		log:      log.WithFields(map[string]interface{}{"transport": "sns"}),
	}
}

func (t *SNSTransport) Send(ctx context.Context, msg Message) (string, error) {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(msg.To),
		Message:     aws.String(msg.Body),
	}
	if t.senderID != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(t.senderID),
			},
		}
	}

	out, err := t.client.Publish(ctx, input)
	if err != nil {
		t.log.Error("sns publish failed", map[string]interface{}{
			"to":    msg.To,
			"error": err,
		})
		return "", apperrors.NewTransportSendFailedError(string(msg.Channel), err)
	}

	return aws.ToString(out.MessageId), nil
}
