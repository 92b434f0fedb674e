// Package opensearch 提供向量搜索引擎的 HTTP 客户端
package opensearch

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse 表示引擎响应缺少预期字段
var ErrMalformedResponse = errors.New("malformed search engine response")

// RequestError 引擎返回非 2xx 时的错误，携带状态码与响应体
type RequestError struct {
	StatusCode int
	Body       string
}

// Error 实现 error 接口
func (e *RequestError) Error() string {
	return fmt.Sprintf("search engine returned status %d: %s", e.StatusCode, e.Body)
}

// IndexedPaper 搜索引擎中的存储单元，与摘要记录一一对应。
// 以 PaperID 为键幂等覆盖。
type IndexedPaper struct {
	PaperID   string    `json:"paper_id"`
	Summary   string    `json:"summary"`
	SourceURL string    `json:"s3_url"`
	Embedding []float32 `json:"embedding"`
}

// SearchHit k-NN 查询的单条结果，Score 为引擎归一化后的相似度
type SearchHit struct {
	PaperID   string
	Summary   string
	SourceURL string
	Score     float64
}

// 引擎响应的原始结构
type searchResponse struct {
	Hits *struct {
		Hits []rawHit `json:"hits"`
	} `json:"hits"`
}

type rawHit struct {
	Score  *float64 `json:"_score"`
	Source *struct {
		PaperID   string `json:"paper_id"`
		Summary   string `json:"summary"`
		SourceURL string `json:"s3_url"`
	} `json:"_source"`
}
