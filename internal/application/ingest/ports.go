// Package ingest 实现论文摄取流水线：取件、分块摘要、向量化、入库、通知
package ingest

import (
	"context"

	"research-rag-api/internal/infrastructure/opensearch"
)

// TextGenerator 定义应用层对文本生成模型的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Bedrock）。
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Embedder 定义应用层对向量化模型的最小依赖（port）
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// PaperIndexer 定义应用层对搜索索引写入的最小依赖（port）
type PaperIndexer interface {
	IndexPaper(ctx context.Context, paper *opensearch.IndexedPaper) error
}

// ObjectStore 定义应用层对对象存储的最小依赖（port）
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	ObjectURL(key string) string
}

// Notifier 定义处理完成后的通知能力（port）。
// 通知失败不应影响流水线结果。
type Notifier interface {
	SendSummaryNotification(ctx context.Context, toAddress, sourceKey, summary string) error
}
