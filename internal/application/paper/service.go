// Package paper 实现论文的上传、查询与衍生内容（热门列表、语音摘要）
package paper

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"research-rag-api/internal/domain/entity"
	"research-rag-api/internal/domain/repository"
	"research-rag-api/internal/infrastructure/arxiv"
	"research-rag-api/internal/infrastructure/messaging"
	apperrors "research-rag-api/pkg/errors"
	"research-rag-api/pkg/logger"
)

var tracer = otel.Tracer("paper")

// MaxUploadBytes 解码后 PDF 的体积上限
const MaxUploadBytes = 10 << 20

var pdfMagic = []byte("%PDF")

// unsafeFileChars 文件名里除字母数字、点、横线、下划线外的一切字符
var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ObjectStore 定义上传侧对对象存储的最小依赖（port）
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	Bucket() string
}

// TextExtractor 定义对 PDF 正文提取的最小依赖（port）
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// IngestPublisher 定义对摄取消息发布的最小依赖（port）
type IngestPublisher interface {
	PublishPaperUploaded(ctx context.Context, upload *messaging.PaperUploadedMessage) (string, error)
}

// SpeechSynthesizer 定义对语音合成的最小依赖（port）
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// TrendingSource 定义对热门论文源的最小依赖（port）
type TrendingSource interface {
	Trending(ctx context.Context) ([]arxiv.Paper, error)
}

// UploadInput 上传请求载荷
type UploadInput struct {
	FileName    string
	ContentB64  string
	NotifyEmail string
}

// UploadResult 上传结果
type UploadResult struct {
	FileKey      string
	OriginalName string
	Bucket       string
	UploadedAt   time.Time
}

// Service 论文应用服务
type Service struct {
	store     ObjectStore
	extractor TextExtractor
	publisher IngestPublisher
	records   repository.SummaryRepository
	speech    SpeechSynthesizer
	trending  TrendingSource
	now       func() time.Time
}

// NewService 创建论文应用服务
func NewService(
	store ObjectStore,
	extractor TextExtractor,
	publisher IngestPublisher,
	records repository.SummaryRepository,
	speech SpeechSynthesizer,
	trending TrendingSource,
) *Service {
	return &Service{
		store:     store,
		extractor: extractor,
		publisher: publisher,
		records:   records,
		speech:    speech,
		trending:  trending,
		now:       time.Now,
	}
}

// Upload 接收 base64 编码的 PDF：校验、提取正文、存储并发布摄取消息。
// 只接受 PDF，解码后不超过 MaxUploadBytes。
func (s *Service) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	ctx, span := tracer.Start(ctx, "Service.Upload")
	defer span.End()

	if strings.TrimSpace(in.FileName) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "file name is required")
	}
	if strings.TrimSpace(in.ContentB64) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "file content is required")
	}

	data, err := base64.StdEncoding.DecodeString(in.ContentB64)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidParam, "file content is not valid base64")
	}
	if len(data) > MaxUploadBytes {
		return nil, apperrors.New(apperrors.CodePayloadTooLarge,
			fmt.Sprintf("file exceeds %d bytes", MaxUploadBytes))
	}
	if len(data) < len(pdfMagic) || string(data[:len(pdfMagic)]) != string(pdfMagic) {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "only PDF files are accepted")
	}

	text, err := s.extractor.ExtractText(ctx, data)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeTextExtractFailed, "failed to extract text from PDF")
	}

	uploadedAt := s.now().UTC()
	fileKey := buildFileKey(in.FileName, uploadedAt)
	span.SetAttributes(attribute.String("file_key", fileKey))

	if err := s.store.PutObject(ctx, fileKey, []byte(text), "text/plain; charset=utf-8"); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "failed to store extracted text")
	}

	msg := &messaging.PaperUploadedMessage{
		Event:        "FileUploaded",
		Bucket:       s.store.Bucket(),
		FileName:     fileKey,
		OriginalName: in.FileName,
		Email:        strings.TrimSpace(in.NotifyEmail),
		Timestamp:    uploadedAt.Format(time.RFC3339),
	}
	if _, err := s.publisher.PublishPaperUploaded(ctx, msg); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeQueueError, "failed to enqueue ingest job")
	}

	logger.FromContext(ctx).Info("paper uploaded",
		"file_key", fileKey,
		"original_name", in.FileName,
		"size", len(data),
	)
	return &UploadResult{
		FileKey:      fileKey,
		OriginalName: in.FileName,
		Bucket:       s.store.Bucket(),
		UploadedAt:   uploadedAt,
	}, nil
}

// List 返回全部摘要记录，新记录在前
func (s *Service) List(ctx context.Context) ([]*entity.SummaryRecord, error) {
	ctx, span := tracer.Start(ctx, "Service.List")
	defer span.End()

	records, err := s.records.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list summaries")
	}
	return records, nil
}

// Get 按 ID 返回摘要记录，不存在时返回 NotFound
func (s *Service) Get(ctx context.Context, id string) (*entity.SummaryRecord, error) {
	ctx, span := tracer.Start(ctx, "Service.Get")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "id is required")
	}
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load summary")
	}
	if record == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "summary not found")
	}
	return record, nil
}

// Audio 把摘要合成为 mp3 音频
func (s *Service) Audio(ctx context.Context, id string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Service.Audio")
	defer span.End()

	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	audio, err := s.speech.Synthesize(ctx, record.Summary)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeSpeechError, "failed to synthesize summary")
	}
	return audio, nil
}

// Trending 返回热门论文列表
func (s *Service) Trending(ctx context.Context) ([]arxiv.Paper, error) {
	ctx, span := tracer.Start(ctx, "Service.Trending")
	defer span.End()

	papers, err := s.trending.Trending(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeRetrievalFailed, "failed to fetch trending papers")
	}
	return papers, nil
}

// buildFileKey 生成时间戳前缀的安全对象键，扩展名固定为 .txt
func buildFileKey(originalName string, uploadedAt time.Time) string {
	base := originalName
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	base = unsafeFileChars.ReplaceAllString(base, "_")
	if base == "" {
		base = "paper"
	}
	return fmt.Sprintf("%s-%s.txt", uploadedAt.Format("20060102150405"), base)
}
