// Package main API 网关服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"research-rag-api/internal/application/paper"
	"research-rag-api/internal/application/rag"
	"research-rag-api/internal/config"
	"research-rag-api/internal/domain/entity"
	"research-rag-api/internal/infrastructure/arxiv"
	"research-rag-api/internal/infrastructure/awsauth"
	"research-rag-api/internal/infrastructure/bedrock"
	"research-rag-api/internal/infrastructure/messaging"
	"research-rag-api/internal/infrastructure/opensearch"
	"research-rag-api/internal/infrastructure/pdf"
	"research-rag-api/internal/infrastructure/polly"
	"research-rag-api/internal/infrastructure/persistence/postgres"
	"research-rag-api/internal/infrastructure/persistence/redis"
	"research-rag-api/internal/infrastructure/s3"
	"research-rag-api/internal/interfaces/http/handler"
	"research-rag-api/internal/interfaces/http/router"
	"research-rag-api/pkg/logger"
	"research-rag-api/pkg/tracer"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting api-gateway",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	// 初始化追踪
	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// 持久化
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

	// 出站签名客户端
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
	speechClient := polly.NewClient(&cfg.Speech,
		awsauth.NewSigner(credentials, cfg.AWS.Region, "polly"))

	// 应用服务
	summaryRepo := postgres.NewSummaryRepository(pgClient)
	producer := messaging.NewProducer(redisClient.Redis(), int64(cfg.Messaging.RedisStream.MaxLen))
	paperService := paper.NewService(
		storageClient,
		pdf.NewExtractor(),
		producer,
		summaryRepo,
		speechClient,
		arxiv.NewClient(&cfg.Trending),
	)
	ragEngine := rag.NewEngine(
		inferenceClient,
		searchClient,
		inferenceClient,
		cfg.Pipeline.TopK,
		cfg.Pipeline.MinScore,
		cfg.Inference.AnswerTokens,
	)

	// HTTP 路由
	r := router.New(cfg, router.Handlers{
		Health: handler.NewHealthHandler(pgClient, redisClient),
		Paper:  handler.NewPaperHandler(paperService, ragEngine),
		Ask:    handler.NewAskHandler(ragEngine),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
