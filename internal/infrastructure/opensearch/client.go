package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"research-rag-api/internal/config"
	"research-rag-api/internal/infrastructure/awsauth"
	"research-rag-api/pkg/metrics"
)

var tracer = otel.Tracer("opensearch")

// Client 向量搜索引擎客户端。
// 所有请求经 awsauth.Signer 签名；不做客户端重试，由调用方决定。
type Client struct {
	host       string
	index      string
	signer     *awsauth.Signer
	httpClient *http.Client
	now        func() time.Time
}

// NewClient 创建搜索引擎客户端
func NewClient(cfg *config.SearchConfig, signer *awsauth.Signer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		host:       strings.TrimRight(cfg.Host, "/"),
		index:      cfg.Index,
		signer:     signer,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// IndexPaper 将文档写入索引。以 paper_id 为键，重复写入覆盖旧文档。
func (c *Client) IndexPaper(ctx context.Context, paper *IndexedPaper) error {
	ctx, span := tracer.Start(ctx, "opensearch.IndexPaper",
		trace.WithAttributes(attribute.String("paper_id", paper.PaperID)))
	defer span.End()

	url := fmt.Sprintf("%s/%s/_doc/%s", c.host, c.index, paper.PaperID)
	if _, err := c.do(ctx, http.MethodPut, url, paper); err != nil {
		span.RecordError(err)
		metrics.SearchRequestsTotal.WithLabelValues("index", "error").Inc()
		return err
	}
	metrics.SearchRequestsTotal.WithLabelValues("index", "ok").Inc()
	return nil
}

// KNNSearch 执行 k 近邻查询，按引擎原生排序（相似度降序）返回，
// 不做阈值过滤，过滤由调用方负责。
func (c *Client) KNNSearch(ctx context.Context, vector []float32, k int) ([]SearchHit, error) {
	ctx, span := tracer.Start(ctx, "opensearch.KNNSearch",
		trace.WithAttributes(attribute.Int("k", k)))
	defer span.End()

	query := map[string]any{
		"size": k,
		"query": map[string]any{
			"knn": map[string]any{
				"embedding": map[string]any{
					"vector": vector,
					"k":      k,
				},
			},
		},
	}

	url := fmt.Sprintf("%s/%s/_search", c.host, c.index)
	respBody, err := c.do(ctx, http.MethodPost, url, query)
	if err != nil {
		span.RecordError(err)
		metrics.SearchRequestsTotal.WithLabelValues("query", "error").Inc()
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("query", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if parsed.Hits == nil {
		metrics.SearchRequestsTotal.WithLabelValues("query", "error").Inc()
		return nil, fmt.Errorf("%w: missing hits", ErrMalformedResponse)
	}

	hits := make([]SearchHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		if h.Score == nil || h.Source == nil {
			return nil, fmt.Errorf("%w: hit missing _score or _source", ErrMalformedResponse)
		}
		hits = append(hits, SearchHit{
			PaperID:   h.Source.PaperID,
			Summary:   h.Source.Summary,
			SourceURL: h.Source.SourceURL,
			Score:     *h.Score,
		})
	}

	metrics.SearchRequestsTotal.WithLabelValues("query", "ok").Inc()
	return hits, nil
}

// do 序列化 body、签名并发送请求。签名覆盖发送的字节本身。
func (c *Client) do(ctx context.Context, method, url string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.signer.Sign(req, payload, c.now()); err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search engine request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search engine response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}
