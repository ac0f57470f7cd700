package aws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-cargo-orderform/internal/form"
)

// Publisher wraps an SQS client and the carrier queue URL. It receives
// submitted orders and tells the carriers in the coverage zone about them.
type Publisher struct {
	SQS      SQSAPI
	QueueURL string
	logger   *zap.SugaredLogger
}

// NewPublisher returns a Publisher bound to a queue URL.
func NewPublisher(sqsClient SQSAPI, queueURL string, logger *zap.SugaredLogger) *Publisher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Publisher{
		SQS:      sqsClient,
		QueueURL: queueURL,
		logger:   logger,
	}
}

// OrderSubmitted implements form.Subscriber.
func (p *Publisher) OrderSubmitted(ctx context.Context, ev form.OrderSubmitted) error {
	body, err := json.Marshal(NewCarrierNotification(ev))
	if err != nil {
		return fmt.Errorf("marshal carrier notification: %w", err)
	}

	attrs := map[string]string{
		"submission_id": ev.ID,
		"load_type":     string(ev.Order.LoadType),
	}
	if err := p.send(ctx, string(body), attrs, string(ev.Order.LoadType), ev.ID); err != nil {
		return err
	}
	p.logger.Infow("carrier notification queued", "submission_id", ev.ID, "load_type", ev.Order.LoadType)
	return nil
}

// send sends a message to SQS. messageBody should be a JSON string.
// attributes map[string]string -> sent as MessageAttributes.
func (p *Publisher) send(ctx context.Context, messageBody string, attributes map[string]string, groupID, dedupID string) error {
	input := &sqs.SendMessageInput{
		QueueUrl:    &p.QueueURL,
		MessageBody: &messageBody,
	}
	if len(attributes) > 0 {
		msgAttrs := map[string]sqstypes.MessageAttributeValue{}
		for k, v := range attributes {
			if v == "" {
				continue
			}
			// using string type for all attrs
			msgAttrs[k] = sqstypes.MessageAttributeValue{
				DataType:    sdkaws.String("String"),
				StringValue: sdkaws.String(v),
			}
		}
		input.MessageAttributes = msgAttrs
	}
	if IsFIFOQueue(p.QueueURL) {
		input.MessageGroupId = sdkaws.String(groupID)
		input.MessageDeduplicationId = sdkaws.String(dedupID)
	}

	_, err := p.SQS.SendMessage(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			p.logger.Errorw("sqs rejected carrier notification",
				"code", apiErr.ErrorCode(), "fault", apiErr.ErrorFault().String(), "queue", p.QueueURL)
			return fmt.Errorf("send message (%s): %w", apiErr.ErrorCode(), err)
		}
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// IsFIFOQueue reports whether queueURL names a FIFO queue.
func IsFIFOQueue(queueURL string) bool {
	return strings.HasSuffix(queueURL, ".fifo")
}
