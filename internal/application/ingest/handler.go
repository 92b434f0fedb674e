package ingest

import (
	"context"
	"fmt"
	"strings"

	"research-rag-api/internal/infrastructure/messaging"
	"research-rag-api/pkg/logger"
)

// NewUploadHandler 返回消费上传消息的处理器。
// 非上传类型的消息跳过；消息载荷解析失败视为不可重试，
// 直接报错让消费侧走死信流程。
func NewUploadHandler(pipeline *Pipeline) messaging.MessageHandler {
	return func(ctx context.Context, msg *messaging.Message) error {
		if msg.Type != messaging.MessageTypePaperUploaded {
			logger.FromContext(ctx).Warn("skipping message of unexpected type", "type", msg.Type)
			return nil
		}

		var payload messaging.PaperUploadedMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("unmarshal upload payload: %w", err)
		}
		if strings.TrimSpace(payload.FileName) == "" {
			return fmt.Errorf("upload payload missing file name")
		}

		_, err := pipeline.Run(ctx, payload.FileName, payload.Email)
		return err
	}
}
