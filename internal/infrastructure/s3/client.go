// Package s3 提供对象存储客户端
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"research-rag-api/internal/config"
	"research-rag-api/internal/infrastructure/awsauth"
)

var tracer = otel.Tracer("s3")

// Client 对象存储客户端。原始文档的来源与提取文本的去向。
type Client struct {
	bucket     string
	region     string
	signer     *awsauth.Signer
	httpClient *http.Client
	now        func() time.Time
}

// NewClient 创建对象存储客户端
func NewClient(cfg *config.S3Config, signer *awsauth.Signer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		signer:     signer,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Bucket 返回配置的桶名
func (c *Client) Bucket() string {
	return c.bucket
}

// ObjectURL 返回对象的公开定位 URL
func (c *Client) ObjectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}

// GetObject 读取对象内容
func (c *Client) GetObject(ctx context.Context, key string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "s3.GetObject",
		trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	body, err := c.do(ctx, http.MethodGet, key, nil, "")
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return body, nil
}

// PutObject 写入对象内容
func (c *Client) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	ctx, span := tracer.Start(ctx, "s3.PutObject",
		trace.WithAttributes(
			attribute.String("key", key),
			attribute.Int("size", len(data)),
		))
	defer span.End()

	if _, err := c.do(ctx, http.MethodPut, key, data, contentType); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, key string, data []byte, contentType string) ([]byte, error) {
	objectURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		c.bucket, c.region, (&url.URL{Path: key}).EscapedPath())

	req, err := http.NewRequestWithContext(ctx, method, objectURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create storage request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if err := c.signer.Sign(req, data, c.now()); err != nil {
		return nil, fmt.Errorf("sign storage request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read storage response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("storage returned status %d for %s %s: %s",
			resp.StatusCode, method, key, string(body))
	}
	return body, nil
}
