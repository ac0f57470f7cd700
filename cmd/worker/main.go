package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/go-cargo-orderform/internal/config"
	"github.com/imrishuroy/go-cargo-orderform/internal/idempotency"
	"github.com/imrishuroy/go-cargo-orderform/internal/logging"
)

const defaultLocalBody = `{"submission_id":"local-sub-1","load_type":"package",` +
	`"withdrawal":{"street":"San Martín 120","locality":"Mendoza","province":"Mendoza"},` +
	`"delivery":{"street":"Belgrano 980","locality":"San Juan","province":"San Juan"},` +
	`"withdrawal_date":"2024-06-15","delivery_date":"2024-06-16","photo_count":0}`

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.Must(cfg.LogDevelopment)
	defer func() { _ = logger.Sync() }()

	p := NewProcessor(idempotency.NewStore(cfg.DedupWindow), nil, logger)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if cfg.RunLocal {
		body := cfg.LocalSQSBody
		if body == "" {
			body = defaultLocalBody
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{MessageId: "local-1", Body: body},
			},
		}
		resp, _ := p.Handle(context.Background(), event)
		if len(resp.BatchItemFailures) > 0 {
			logger.Fatalw("local handler error", "failures", resp.BatchItemFailures)
		}
		return
	}

	lambda.Start(p.Handle)
}
