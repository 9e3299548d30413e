// internal/transport/transport_test.go
package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "card-dispatch/internal/common/errors"
	"card-dispatch/internal/common/logger"
	"card-dispatch/internal/guests"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

// ==========================
// SES Transport Tests
// ==========================

func TestSESTransport_Send(t *testing.T) {
	var captured *ses.SendEmailInput
	mock := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			captured = params
			return &ses.SendEmailOutput{MessageId: aws.String("ses-msg-001")}, nil
		},
	}

	tr := NewSESTransport(mock, "cards@example.com", logger.NewTest(t))
	id, err := tr.Send(context.Background(), Message{
		Channel: guests.ChannelEmail,
		To:      "alice@x.com",
		Subject: "Invitation",
		Body:    "plain text",
		HTML:    "<p>card</p>",
	})

	require.NoError(t, err)
	assert.Equal(t, "ses-msg-001", id)

	require.NotNil(t, captured)
	assert.Equal(t, "cards@example.com", aws.ToString(captured.Source))
	assert.Equal(t, []string{"alice@x.com"}, captured.Destination.ToAddresses)
	assert.Equal(t, "Invitation", aws.ToString(captured.Message.Subject.Data))
	assert.Equal(t, "plain text", aws.ToString(captured.Message.Body.Text.Data))
	assert.Equal(t, "<p>card</p>", aws.ToString(captured.Message.Body.Html.Data))
}

func TestSESTransport_FallsBackToBodyWithoutHTML(t *testing.T) {
	mock := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			assert.Equal(t, "plain only", aws.ToString(params.Message.Body.Html.Data))
			return &ses.SendEmailOutput{MessageId: aws.String("ses-msg-002")}, nil
		},
	}

	tr := NewSESTransport(mock, "cards@example.com", logger.NewTest(t))
	_, err := tr.Send(context.Background(), Message{To: "a@x.com", Subject: "s", Body: "plain only"})
	require.NoError(t, err)
}

func TestSESTransport_SendFailure(t *testing.T) {
	mock := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	tr := NewSESTransport(mock, "cards@example.com", logger.NewTest(t))
	_, err := tr.Send(context.Background(), Message{To: "a@x.com"})
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeTransportSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

// ==========================
// SNS Transport Tests
// ==========================

func TestSNSTransport_Send(t *testing.T) {
	var captured *sns.PublishInput
	mock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{MessageId: aws.String("sns-msg-001")}, nil
		},
	}

	tr := NewSNSTransport(mock, "CARDS", logger.NewTest(t))
	id, err := tr.Send(context.Background(), Message{
		Channel: guests.ChannelMMS,
		To:      "+15551234567",
		Body:    "your card",
	})

	require.NoError(t, err)
	assert.Equal(t, "sns-msg-001", id)

	require.NotNil(t, captured)
	assert.Equal(t, "+15551234567", aws.ToString(captured.PhoneNumber))
	assert.Equal(t, "your card", aws.ToString(captured.Message))
	require.Contains(t, captured.MessageAttributes, "AWS.SNS.SMS.SenderID")
	assert.Equal(t, "CARDS", aws.ToString(captured.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
}

func TestSNSTransport_NoSenderIDAttribute(t *testing.T) {
	mock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			assert.Empty(t, params.MessageAttributes)
			return &sns.PublishOutput{MessageId: aws.String("sns-msg-002")}, nil
		},
	}

	tr := NewSNSTransport(mock, "", logger.NewTest(t))
	_, err := tr.Send(context.Background(), Message{To: "+15551234567", Body: "hi"})
	require.NoError(t, err)
}

func TestSNSTransport_PublishFailure(t *testing.T) {
	mock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("opt-out")
		},
	}

	tr := NewSNSTransport(mock, "", logger.NewTest(t))
	_, err := tr.Send(context.Background(), Message{Channel: guests.ChannelChat, To: "+15551234567"})
	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))
}

// ==========================
// Registry Tests
// ==========================

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.For(guests.ChannelEmail)
	assert.False(t, ok)

	snsTr := NewSNSTransport(&MockSNSService{}, "", logger.NewNop())
	reg.Register(guests.ChannelChat, snsTr)
	reg.Register(guests.ChannelMMS, snsTr)

	got, ok := reg.For(guests.ChannelChat)
	require.True(t, ok)
	assert.Same(t, snsTr, got)
}
