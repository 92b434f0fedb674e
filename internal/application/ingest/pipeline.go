package ingest

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"research-rag-api/internal/domain/entity"
	"research-rag-api/internal/domain/repository"
	"research-rag-api/internal/infrastructure/opensearch"
	apperrors "research-rag-api/pkg/errors"
	"research-rag-api/pkg/logger"
	"research-rag-api/pkg/metrics"
)

// Pipeline 摄取流水线：对一篇论文执行
// 取件 -> 摘要 -> 落库 -> 向量化 -> 写搜索索引 -> 邮件通知。
// 通知失败只记录日志，不影响流水线结果。
type Pipeline struct {
	store      ObjectStore
	summarizer *Summarizer
	embedder   Embedder
	indexer    PaperIndexer
	records    repository.SummaryRepository
	notifier   Notifier
}

// NewPipeline 创建摄取流水线。notifier 可为 nil，表示不发通知。
func NewPipeline(
	store ObjectStore,
	summarizer *Summarizer,
	embedder Embedder,
	indexer PaperIndexer,
	records repository.SummaryRepository,
	notifier Notifier,
) *Pipeline {
	return &Pipeline{
		store:      store,
		summarizer: summarizer,
		embedder:   embedder,
		indexer:    indexer,
		records:    records,
		notifier:   notifier,
	}
}

// Run 处理一篇论文，返回写入的摘要记录
func (p *Pipeline) Run(ctx context.Context, fileKey, notifyEmail string) (*entity.SummaryRecord, error) {
	ctx, span := tracer.Start(ctx, "Pipeline.Run")
	defer span.End()
	span.SetAttributes(attribute.String("file_key", fileKey))

	start := time.Now()
	record, err := p.run(ctx, fileKey, notifyEmail)
	metrics.IngestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		metrics.PapersIngestedTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.PapersIngestedTotal.WithLabelValues("success").Inc()
	return record, nil
}

func (p *Pipeline) run(ctx context.Context, fileKey, notifyEmail string) (*entity.SummaryRecord, error) {
	log := logger.FromContext(ctx)

	// 1) 取正文
	data, err := p.store.GetObject(ctx, fileKey)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "failed to fetch paper text")
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, apperrors.Wrap(ErrEmptyInput, apperrors.CodeInvalidParam, "paper text is empty")
	}

	// 2) 摘要
	summary, err := p.summarizer.Summarize(ctx, text)
	if err != nil {
		return nil, err
	}

	// 3) 落库
	record := entity.NewSummaryRecord(fileKey, summary)
	if err := p.records.Create(ctx, record); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to persist summary record")
	}

	// 4) 摘要向量化
	embedding, err := p.embedder.Embed(ctx, summary)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEmbeddingFailed, "failed to embed summary")
	}

	// 5) 写搜索索引
	indexed := &opensearch.IndexedPaper{
		PaperID:   record.ID,
		Summary:   summary,
		SourceURL: p.store.ObjectURL(fileKey),
		Embedding: embedding,
	}
	if err := p.indexer.IndexPaper(ctx, indexed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSearchEngineError, "failed to index summary")
	}

	// 6) 邮件通知，失败不回滚
	if p.notifier != nil && notifyEmail != "" {
		if err := p.notifier.SendSummaryNotification(ctx, notifyEmail, fileKey, summary); err != nil {
			log.Warn("summary notification failed",
				"error", err,
				"file_key", fileKey,
				"email", notifyEmail,
			)
		}
	}

	log.Info("paper ingested",
		"file_key", fileKey,
		"record_id", record.ID,
		"summary_chars", len([]rune(summary)),
	)
	return record, nil
}
