package aws

import (
	"context"
	"errors"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-cargo-orderform/internal/form"
)

// Metric names published per submission.
const (
	MetricOrdersSubmitted = "OrdersSubmitted"
	MetricPhotosAttached  = "PhotosAttached"
)

// MetricsRecorder publishes submission counters to CloudWatch.
type MetricsRecorder struct {
	CloudWatch CloudWatchAPI
	Namespace  string
	logger     *zap.SugaredLogger
}

func NewMetricsRecorder(client CloudWatchAPI, namespace string, logger *zap.SugaredLogger) *MetricsRecorder {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &MetricsRecorder{CloudWatch: client, Namespace: namespace, logger: logger}
}

// OrderSubmitted implements form.Subscriber.
func (m *MetricsRecorder) OrderSubmitted(ctx context.Context, ev form.OrderSubmitted) error {
	ts := ev.SubmittedAt
	loadType := []cwtypes.Dimension{{
		Name:  sdkaws.String("LoadType"),
		Value: sdkaws.String(string(ev.Order.LoadType)),
	}}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(m.Namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: sdkaws.String(MetricOrdersSubmitted),
				Dimensions: loadType,
				Timestamp:  &ts,
				Unit:       cwtypes.StandardUnitCount,
				Value:      sdkaws.Float64(1),
			},
			{
				MetricName: sdkaws.String(MetricPhotosAttached),
				Timestamp:  &ts,
				Unit:       cwtypes.StandardUnitCount,
				Value:      sdkaws.Float64(float64(len(ev.Order.Photos))),
			},
		},
	}

	if _, err := m.CloudWatch.PutMetricData(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			m.logger.Warnw("cloudwatch rejected metrics", "code", apiErr.ErrorCode(), "namespace", m.Namespace)
			return fmt.Errorf("put metric data (%s): %w", apiErr.ErrorCode(), err)
		}
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
