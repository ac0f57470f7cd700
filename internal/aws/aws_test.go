package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-cargo-orderform/internal/form"
	"github.com/imrishuroy/go-cargo-orderform/internal/orders"
)

// --- mock implementations ---

type mockSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (m *mockSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.inputs = append(m.inputs, in)
	if m.err != nil {
		return nil, m.err
	}
	return &sqs.SendMessageOutput{}, nil
}

type mockCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, in)
	if m.err != nil {
		return nil, m.err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func submitted() form.OrderSubmitted {
	return form.OrderSubmitted{
		ID: "sub-42",
		Order: orders.Order{
			LoadType:       orders.LoadGrain,
			Withdrawal:     orders.Address{Street: "Ruta 7 km 12", Locality: "Junín", Province: "Buenos Aires"},
			Delivery:       orders.Address{Street: "Av. Alem 300", Locality: "Rosario", Province: "Santa Fe"},
			WithdrawalDate: "2024-06-15",
			DeliveryDate:   "2024-06-17",
			Photos: []orders.Attachment{
				{Filename: "silo.jpg", MimeType: orders.MimeJPEG, Bytes: []byte{1}},
				{Filename: "acoplado.png", MimeType: orders.MimePNG, Bytes: []byte{2}},
			},
		},
		SubmittedAt: time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC),
	}
}

// --- test cases ---

func TestPublisher_SendsCarrierNotification(t *testing.T) {
	client := &mockSQS{}
	p := NewPublisher(client, "https://sqs.us-east-1.amazonaws.com/123/carriers", nil)

	require.NoError(t, p.OrderSubmitted(context.Background(), submitted()))
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	require.Equal(t, "https://sqs.us-east-1.amazonaws.com/123/carriers", *in.QueueUrl)
	require.Nil(t, in.MessageGroupId)
	require.Equal(t, "sub-42", *in.MessageAttributes["submission_id"].StringValue)
	require.Equal(t, "grain", *in.MessageAttributes["load_type"].StringValue)

	var msg CarrierNotification
	require.NoError(t, json.Unmarshal([]byte(*in.MessageBody), &msg))
	require.Equal(t, "sub-42", msg.SubmissionID)
	require.Equal(t, orders.LoadGrain, msg.LoadType)
	require.Equal(t, "Rosario", msg.Delivery.Locality)
	require.Equal(t, "2024-06-17", msg.DeliveryDate)
	require.Equal(t, 2, msg.PhotoCount)
	require.Equal(t, []string{orders.MimeJPEG, orders.MimePNG}, msg.PhotoTypes)
	require.NotContains(t, *in.MessageBody, "acoplado.png")
}

func TestPublisher_FIFOQueueGetsGroupAndDedup(t *testing.T) {
	client := &mockSQS{}
	p := NewPublisher(client, "https://sqs.us-east-1.amazonaws.com/123/carriers.fifo", nil)

	require.NoError(t, p.OrderSubmitted(context.Background(), submitted()))
	in := client.inputs[0]
	require.Equal(t, "grain", *in.MessageGroupId)
	require.Equal(t, "sub-42", *in.MessageDeduplicationId)
}

func TestPublisher_WrapsAPIError(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "AWS.SimpleQueueService.NonExistentQueue", Message: "no queue"}
	p := NewPublisher(&mockSQS{err: apiErr}, "q", nil)

	err := p.OrderSubmitted(context.Background(), submitted())
	require.ErrorIs(t, err, apiErr)
	require.Contains(t, err.Error(), "NonExistentQueue")

	plain := errors.New("dial tcp: refused")
	p = NewPublisher(&mockSQS{err: plain}, "q", nil)
	require.ErrorIs(t, p.OrderSubmitted(context.Background(), submitted()), plain)
}

func TestMetricsRecorder_PutsCounters(t *testing.T) {
	client := &mockCloudWatch{}
	m := NewMetricsRecorder(client, "CargoOrderForm", nil)

	require.NoError(t, m.OrderSubmitted(context.Background(), submitted()))
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	require.Equal(t, "CargoOrderForm", *in.Namespace)
	require.Len(t, in.MetricData, 2)
	require.Equal(t, MetricOrdersSubmitted, *in.MetricData[0].MetricName)
	require.Equal(t, "grain", *in.MetricData[0].Dimensions[0].Value)
	require.Equal(t, float64(1), *in.MetricData[0].Value)
	require.Equal(t, MetricPhotosAttached, *in.MetricData[1].MetricName)
	require.Equal(t, float64(2), *in.MetricData[1].Value)
}

func TestMetricsRecorder_Error(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "Throttling", Message: "slow down"}
	m := NewMetricsRecorder(&mockCloudWatch{err: apiErr}, "ns", nil)
	err := m.OrderSubmitted(context.Background(), submitted())
	require.ErrorIs(t, err, apiErr)
}
