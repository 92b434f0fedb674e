// Package main 摄取执行器入口（ingest-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"research-rag-api/internal/application/ingest"
	"research-rag-api/internal/config"
	"research-rag-api/internal/domain/entity"
	"research-rag-api/internal/infrastructure/awsauth"
	"research-rag-api/internal/infrastructure/bedrock"
	"research-rag-api/internal/infrastructure/messaging"
	"research-rag-api/internal/infrastructure/opensearch"
	"research-rag-api/internal/infrastructure/persistence/postgres"
	"research-rag-api/internal/infrastructure/persistence/redis"
	"research-rag-api/internal/infrastructure/s3"
	"research-rag-api/internal/infrastructure/ses"
	"research-rag-api/pkg/logger"
	"research-rag-api/pkg/tracer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting ingest-worker", "env", cfg.App.Env)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "ingest-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to init postgres", err)
	}
	defer func() { _ = pgClient.Close() }()

	if err := pgClient.AutoMigrate(&entity.SummaryRecord{}); err != nil {
		logger.Fatal(ctx, "failed to migrate database", err)
	}

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", err)
	}
	defer func() { _ = redisClient.Close() }()

	credentials := awsauth.NewStaticProvider(
		cfg.AWS.AccessKeyID,
		cfg.AWS.SecretAccessKey,
		cfg.AWS.SessionToken,
	)
	searchClient := opensearch.NewClient(&cfg.Search,
		awsauth.NewSigner(credentials, cfg.AWS.Region, cfg.Search.Service))
	inferenceClient := bedrock.NewClient(&cfg.Inference,
		awsauth.NewSigner(credentials, cfg.AWS.Region, "bedrock"))
	storageClient := s3.NewClient(&cfg.Storage.S3,
		awsauth.NewSigner(credentials, cfg.Storage.S3.Region, "s3"))

	var notifier ingest.Notifier
	if cfg.Mail.Enabled {
		notifier = ses.NewMailer(&cfg.Mail,
			awsauth.NewSigner(credentials, cfg.AWS.Region, "ses"))
	}

	pipeline := ingest.NewPipeline(
		storageClient,
		ingest.NewSummarizer(inferenceClient, cfg.Pipeline.MaxChunkChars, cfg.Inference.SummaryTokens),
		inferenceClient,
		searchClient,
		postgres.NewSummaryRepository(pgClient),
		notifier,
	)

	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamPaperIngest,
		Group:        messaging.ConsumerGroupIngestWorker,
		ConsumerName: hostnameConsumerName(),
		Handler:      ingest.NewUploadHandler(pipeline),
		BlockTimeout: cfg.Messaging.RedisStream.BlockTimeout,
		RetryLimit:   cfg.Messaging.RedisStream.RetryLimit,
	})

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(runCtx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		consumer.MonitorDLQ(gCtx, 100)
		return nil
	})

	<-runCtx.Done()
	log.Info("shutting down worker...")
	consumer.Stop()
	_ = g.Wait()
	log.Info("worker exited")
}

// hostnameConsumerName 以主机名区分同组内的消费者实例
func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "ingest-worker"
	}
	return "ingest-worker-" + host
}
