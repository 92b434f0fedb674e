// Package bedrock 提供推理端点客户端（文本生成与向量化）
package bedrock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"research-rag-api/internal/config"
	"research-rag-api/internal/infrastructure/awsauth"
	"research-rag-api/pkg/metrics"
)

var tracer = otel.Tracer("bedrock")

// Client 推理端点客户端。一次调用对应一次模型推理，不缓存不批处理。
type Client struct {
	endpoint     string
	genModelID   string
	embedModelID string
	temperature  float64
	topP         float64
	topK         int
	signer       *awsauth.Signer
	httpClient   *http.Client
	now          func() time.Time
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	TopK        int     `json:"top_k,omitempty"`
}

type generateResponse struct {
	Outputs []struct {
		Text string `json:"text"`
	} `json:"outputs"`
}

type embedRequest struct {
	InputText string `json:"inputText"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewClient 创建推理端点客户端
func NewClient(cfg *config.InferenceConfig, signer *awsauth.Signer) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		genModelID:   cfg.GenModelID,
		embedModelID: cfg.EmbedModelID,
		temperature:  cfg.Temperature,
		topP:         cfg.TopP,
		topK:         cfg.TopK,
		signer:       signer,
		httpClient:   &http.Client{Timeout: timeout},
		now:          time.Now,
	}
}

// Generate 调用生成模型，返回首个输出文本（去除首尾空白）
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, span := tracer.Start(ctx, "bedrock.Generate",
		trace.WithAttributes(
			attribute.String("model_id", c.genModelID),
			attribute.Int("prompt_chars", len(prompt)),
		))
	defer span.End()

	start := time.Now()
	body, err := c.invoke(ctx, c.genModelID, &generateRequest{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
		TopK:        c.topK,
	})
	metrics.ModelInvocationDuration.WithLabelValues("generate").Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		metrics.ModelInvocationsTotal.WithLabelValues("generate", "error").Inc()
		return "", err
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		metrics.ModelInvocationsTotal.WithLabelValues("generate", "error").Inc()
		return "", fmt.Errorf("decode generation response: %w", err)
	}
	if len(resp.Outputs) == 0 {
		metrics.ModelInvocationsTotal.WithLabelValues("generate", "error").Inc()
		return "", fmt.Errorf("generation response has no outputs")
	}

	metrics.ModelInvocationsTotal.WithLabelValues("generate", "ok").Inc()
	return strings.TrimSpace(resp.Outputs[0].Text), nil
}

// Embed 调用向量化模型。向量维度由模型决定，
// 索引与查询两侧必须使用同一模型才能保证可比。
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := tracer.Start(ctx, "bedrock.Embed",
		trace.WithAttributes(attribute.String("model_id", c.embedModelID)))
	defer span.End()

	start := time.Now()
	body, err := c.invoke(ctx, c.embedModelID, &embedRequest{InputText: text})
	metrics.ModelInvocationDuration.WithLabelValues("embed").Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		metrics.ModelInvocationsTotal.WithLabelValues("embed", "error").Inc()
		return nil, err
	}

	var resp embedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		metrics.ModelInvocationsTotal.WithLabelValues("embed", "error").Inc()
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(resp.Embedding) == 0 {
		metrics.ModelInvocationsTotal.WithLabelValues("embed", "error").Inc()
		return nil, fmt.Errorf("embedding response is empty")
	}

	metrics.ModelInvocationsTotal.WithLabelValues("embed", "ok").Inc()
	return resp.Embedding, nil
}

// invoke 签名并调用 /model/{id}/invoke
func (c *Client) invoke(ctx context.Context, modelID string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal invoke request: %w", err)
	}

	invokeURL := fmt.Sprintf("%s/model/%s/invoke", c.endpoint, url.PathEscape(modelID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, invokeURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create invoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if err := c.signer.Sign(req, data, c.now()); err != nil {
		return nil, fmt.Errorf("sign invoke request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invoke model %s: %w", modelID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read invoke response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("model %s returned status %d: %s", modelID, resp.StatusCode, string(body))
	}
	return body, nil
}
