// Package rag 实现检索增强问答：向量召回命中的论文摘要并据此生成回答
package rag

import (
	"context"

	"research-rag-api/internal/infrastructure/opensearch"
)

// TextGenerator 定义应用层对文本生成模型的最小依赖（port）
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Embedder 定义应用层对向量化模型的最小依赖（port）
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher 定义应用层对向量检索的最小依赖（port）
type VectorSearcher interface {
	KNNSearch(ctx context.Context, vector []float32, k int) ([]opensearch.SearchHit, error)
}
