package rag

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"research-rag-api/internal/infrastructure/opensearch"
	apperrors "research-rag-api/pkg/errors"
	"research-rag-api/pkg/logger"
	"research-rag-api/pkg/metrics"
)

var tracer = otel.Tracer("rag")

// Result 问答结果：生成的回答加支撑它的命中摘要
type Result struct {
	Answer  string
	Sources []opensearch.SearchHit
}

// Engine 检索增强问答引擎
type Engine struct {
	embedder     Embedder
	searcher     VectorSearcher
	generator    TextGenerator
	topK         int
	minScore     float64
	answerTokens int
}

// NewEngine 创建问答引擎
func NewEngine(embedder Embedder, searcher VectorSearcher, generator TextGenerator, topK int, minScore float64, answerTokens int) *Engine {
	if topK <= 0 {
		topK = 5
	}
	if minScore <= 0 {
		minScore = 0.75
	}
	if answerTokens <= 0 {
		answerTokens = 500
	}
	return &Engine{
		embedder:     embedder,
		searcher:     searcher,
		generator:    generator,
		topK:         topK,
		minScore:     minScore,
		answerTokens: answerTokens,
	}
}

// Answer 回答一个问题：向量化 -> 召回 -> 阈值过滤 -> 生成
func (e *Engine) Answer(ctx context.Context, question string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "Engine.Answer")
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.Wrap(ErrEmptyQuestion, apperrors.CodeInvalidParam, "question is required")
	}

	vector, err := e.embedder.Embed(ctx, question)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeEmbeddingFailed, "failed to embed question")
	}

	hits, err := e.searcher.KNNSearch(ctx, vector, e.topK)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeRetrievalFailed, "vector search failed")
	}

	relevant := filterByScore(hits, e.minScore)
	span.SetAttributes(
		attribute.Int("hits.total", len(hits)),
		attribute.Int("hits.relevant", len(relevant)),
	)
	metrics.SearchHitsReturned.Observe(float64(len(relevant)))

	prompt := BuildPrompt(question, relevant)
	answer, err := e.generator.Generate(ctx, prompt, e.answerTokens)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "failed to generate answer")
	}

	logger.FromContext(ctx).Info("question answered",
		"hits_total", len(hits),
		"hits_relevant", len(relevant),
	)
	return &Result{
		Answer:  answer,
		Sources: relevant,
	}, nil
}

// Search 只做召回不做生成：向量化 -> 召回 -> 阈值过滤
func (e *Engine) Search(ctx context.Context, query string) ([]opensearch.SearchHit, error) {
	ctx, span := tracer.Start(ctx, "Engine.Search")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Wrap(ErrEmptyQuestion, apperrors.CodeInvalidParam, "query is required")
	}

	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeEmbeddingFailed, "failed to embed query")
	}

	hits, err := e.searcher.KNNSearch(ctx, vector, e.topK)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeRetrievalFailed, "vector search failed")
	}

	relevant := filterByScore(hits, e.minScore)
	metrics.SearchHitsReturned.Observe(float64(len(relevant)))
	span.SetAttributes(
		attribute.Int("hits.total", len(hits)),
		attribute.Int("hits.relevant", len(relevant)),
	)
	return relevant, nil
}

// filterByScore 保留得分不低于阈值的命中，维持召回顺序
func filterByScore(hits []opensearch.SearchHit, minScore float64) []opensearch.SearchHit {
	out := make([]opensearch.SearchHit, 0, len(hits))
	for _, hit := range hits {
		if hit.Score >= minScore {
			out = append(out, hit)
		}
	}
	return out
}
