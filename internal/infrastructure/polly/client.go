// Package polly 提供语音合成客户端
package polly

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
)

var tracer = otel.Tracer("polly")

// 合成端点单次请求的文本长度上限
const maxTextChars = 3000

// Client 语音合成客户端。超长文本按固定窗口切分后逐段合成，
// MP3 分段直接拼接（帧自同步，拼接可播放）。
type Client struct {
	endpoint   string
	voiceID    string
	engine     string
	signer     *awsauth.Signer
	httpClient *http.Client
	now        func() time.Time
}

type synthesizeRequest struct {
	Text         string `json:"Text"`
	OutputFormat string `json:"OutputFormat"`
	VoiceID      string `json:"VoiceId"`
	Engine       string `json:"Engine"`
}

// NewClient 创建语音合成客户端
func NewClient(cfg *config.SpeechConfig, signer *awsauth.Signer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		voiceID:    cfg.VoiceID,
		engine:     cfg.Engine,
		signer:     signer,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Synthesize 将文本转换为 MP3 音频
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "polly.Synthesize",
		trace.WithAttributes(attribute.Int("text_chars", len(text))))
	defer span.End()

	var audio bytes.Buffer
	for _, window := range splitWindows(text, maxTextChars) {
		chunk, err := c.synthesizeOne(ctx, window)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		audio.Write(chunk)
	}
	return audio.Bytes(), nil
}

func (c *Client) synthesizeOne(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(&synthesizeRequest{
		Text:         text,
		OutputFormat: "mp3",
		VoiceID:      c.voiceID,
		Engine:       c.engine,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal speech request: %w", err)
	}

	url := c.endpoint + "/v1/speech"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.signer.Sign(req, payload, c.now()); err != nil {
		return nil, fmt.Errorf("sign speech request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("speech service returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// splitWindows 按固定 rune 窗口切分文本，不关心句子边界
func splitWindows(text string, size int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	windows := make([]string, 0, (len(runes)/size)+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		windows = append(windows, string(runes[start:end]))
	}
	return windows
}
