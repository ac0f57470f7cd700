package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-cargo-orderform/internal/aws"
	"github.com/imrishuroy/go-cargo-orderform/internal/config"
	"github.com/imrishuroy/go-cargo-orderform/internal/form"
	"github.com/imrishuroy/go-cargo-orderform/internal/handlers"
	"github.com/imrishuroy/go-cargo-orderform/internal/idempotency"
	"github.com/imrishuroy/go-cargo-orderform/internal/logging"
	"github.com/imrishuroy/go-cargo-orderform/internal/notify"
	"github.com/imrishuroy/go-cargo-orderform/internal/validation"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterFormRoutes(r, cfg)

	return r
}

// subscribers builds the receivers of submitted orders. The carrier queue
// and metrics are only wired when configured.
func subscribers(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) ([]form.Subscriber, error) {
	subs := []form.Subscriber{notify.NewConfirmation(logger, nil)}
	if cfg.CarrierQueueURL == "" && !cfg.MetricsEnabled {
		logger.Warn("CARRIER_QUEUE_URL not set and metrics disabled; carriers will not be notified")
		return subs, nil
	}

	clients, err := aws.NewAWSClients(ctx, cfg.AWSRegion, cfg.AWSEndpointOverride)
	if err != nil {
		return nil, err
	}
	if cfg.CarrierQueueURL != "" {
		subs = append(subs, aws.NewPublisher(clients.SQS, cfg.CarrierQueueURL, logger))
	} else {
		logger.Warn("CARRIER_QUEUE_URL not set; carriers will not be notified")
	}
	if cfg.MetricsEnabled {
		subs = append(subs, aws.NewMetricsRecorder(clients.CloudWatch, cfg.MetricsNamespace, logger))
	}
	return subs, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.Must(cfg.LogDevelopment)
	defer func() { _ = logger.Sync() }()

	engine, err := validation.NewEngine(validation.DefaultSchema(), validation.WithLocation(cfg.Location()))
	if err != nil {
		logger.Fatalw("failed to build validation engine", "error", err)
	}

	subs, err := subscribers(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatalw("failed to init aws clients", "error", err)
	}

	r := setupRouter(handlers.HandlerConfig{
		Engine:        engine,
		DateLayout:    cfg.DateLayout(),
		Subscribers:   subs,
		Idempotency:   idempotency.NewStore(cfg.DedupWindow),
		MaxPhotoBytes: cfg.MaxPhotoBytes,
		Logger:        logger,
	})

	// if RUN_LOCAL is set, run local HTTP server for development.
	if cfg.RunLocal {
		addr := ":" + cfg.Port
		logger.Infow("running local server", "addr", addr)
		if err := r.Run(addr); err != nil {
			logger.Fatalw("failed to run local server", "error", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
