// Package ses 提供邮件通知客户端
package ses

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

var tracer = otel.Tracer("ses")

// Mailer 摘要完成通知的邮件发送器
type Mailer struct {
	endpoint   string
	sender     string
	signer     *awsauth.Signer
	httpClient *http.Client
	now        func() time.Time
}

type sendEmailRequest struct {
	FromEmailAddress string      `json:"FromEmailAddress"`
	Destination      destination `json:"Destination"`
	Content          content     `json:"Content"`
}

type destination struct {
	ToAddresses []string `json:"ToAddresses"`
}

type content struct {
	Simple simpleMessage `json:"Simple"`
}

type simpleMessage struct {
	Subject textData `json:"Subject"`
	Body    bodyData `json:"Body"`
}

type textData struct {
	Data string `json:"Data"`
}

type bodyData struct {
	Text textData `json:"Text"`
}

// NewMailer 创建邮件发送器
func NewMailer(cfg *config.MailConfig, signer *awsauth.Signer) *Mailer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Mailer{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		sender:     cfg.Sender,
		signer:     signer,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// SendSummaryNotification 发送"摘要已生成"通知邮件
func (m *Mailer) SendSummaryNotification(ctx context.Context, toAddress, sourceKey, summary string) error {
	ctx, span := tracer.Start(ctx, "ses.SendSummaryNotification",
		trace.WithAttributes(attribute.String("source_key", sourceKey)))
	defer span.End()

	payload, err := json.Marshal(&sendEmailRequest{
		FromEmailAddress: m.sender,
		Destination:      destination{ToAddresses: []string{toAddress}},
		Content: content{Simple: simpleMessage{
			Subject: textData{Data: "Your Research Summary"},
			Body: bodyData{Text: textData{
				Data: fmt.Sprintf("Here is the summary for the document stored at: %s\n\n%s", sourceKey, summary),
			}},
		}},
	})
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	url := m.endpoint + "/v2/email/outbound-emails"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := m.signer.Sign(req, payload, m.now()); err != nil {
		span.RecordError(err)
		return fmt.Errorf("sign mail request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail service returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
