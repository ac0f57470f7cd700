package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-cargo-orderform/internal/aws"
	"github.com/imrishuroy/go-cargo-orderform/internal/form"
	"github.com/imrishuroy/go-cargo-orderform/internal/idempotency"
	"github.com/imrishuroy/go-cargo-orderform/internal/orders"
)

type recordingDispatcher struct {
	got  []aws.CarrierNotification
	errs []error // consumed per call
}

func (d *recordingDispatcher) Dispatch(_ context.Context, n aws.CarrierNotification) error {
	d.got = append(d.got, n)
	if len(d.errs) > 0 {
		err := d.errs[0]
		d.errs = d.errs[1:]
		return err
	}
	return nil
}

func message(t *testing.T, id, submissionID string) events.SQSMessage {
	t.Helper()
	n := aws.NewCarrierNotification(form.OrderSubmitted{
		ID: submissionID,
		Order: orders.Order{
			LoadType:       orders.LoadDocumentation,
			Withdrawal:     orders.Address{Street: "Colón 10", Locality: "Córdoba", Province: "Córdoba"},
			Delivery:       orders.Address{Street: "Sarmiento 44", Locality: "Villa María", Province: "Córdoba"},
			WithdrawalDate: "2024-06-15",
			DeliveryDate:   "2024-06-15",
		},
		SubmittedAt: time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC),
	})
	body, err := json.Marshal(n)
	require.NoError(t, err)
	return events.SQSMessage{MessageId: id, Body: string(body)}
}

func TestWorkerProcess_Success(t *testing.T) {
	d := &recordingDispatcher{}
	p := NewProcessor(idempotency.NewStore(time.Hour), d, nil)

	resp, err := p.Handle(context.Background(), events.SQSEvent{
		Records: []events.SQSMessage{message(t, "m1", "sub-1")},
	})
	require.NoError(t, err)
	require.Empty(t, resp.BatchItemFailures)
	require.Len(t, d.got, 1)
	require.Equal(t, "sub-1", d.got[0].SubmissionID)
	require.Equal(t, "Villa María", d.got[0].Delivery.Locality)
}

func TestWorkerProcess_DuplicateDeliveryDispatchesOnce(t *testing.T) {
	d := &recordingDispatcher{}
	p := NewProcessor(idempotency.NewStore(time.Hour), d, nil)

	resp, err := p.Handle(context.Background(), events.SQSEvent{
		Records: []events.SQSMessage{message(t, "m1", "sub-1"), message(t, "m2", "sub-1")},
	})
	require.NoError(t, err)
	require.Empty(t, resp.BatchItemFailures)
	require.Len(t, d.got, 1)
}

func TestWorkerProcess_FailuresAreReportedPerMessage(t *testing.T) {
	d := &recordingDispatcher{errs: []error{errors.New("carrier api down")}}
	p := NewProcessor(idempotency.NewStore(time.Hour), d, nil)

	resp, err := p.Handle(context.Background(), events.SQSEvent{
		Records: []events.SQSMessage{
			message(t, "m1", "sub-1"),
			{MessageId: "m2", Body: "not json"},
			{MessageId: "m3", Body: `{"load_type":"grain"}`},
			message(t, "m4", "sub-2"),
		},
	})
	require.NoError(t, err)
	require.Equal(t, []events.SQSBatchItemFailure{
		{ItemIdentifier: "m1"},
		{ItemIdentifier: "m2"},
		{ItemIdentifier: "m3"},
	}, resp.BatchItemFailures)

	// redelivery of the failed submission is dispatched again
	resp, err = p.Handle(context.Background(), events.SQSEvent{
		Records: []events.SQSMessage{message(t, "m1", "sub-1")},
	})
	require.NoError(t, err)
	require.Empty(t, resp.BatchItemFailures)
	require.Len(t, d.got, 3)
}

func TestLogDispatcher(t *testing.T) {
	p := NewProcessor(idempotency.NewStore(time.Hour), nil, nil)
	resp, err := p.Handle(context.Background(), events.SQSEvent{
		Records: []events.SQSMessage{{MessageId: "local-1", Body: defaultLocalBody}},
	})
	require.NoError(t, err)
	require.Empty(t, resp.BatchItemFailures)
}
