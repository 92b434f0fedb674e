package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"research-rag-api/internal/domain/entity"
	"research-rag-api/internal/domain/repository"
)

// SummaryRepository 摘要记录仓储的 PostgreSQL 实现
type SummaryRepository struct {
	client *Client
}

// NewSummaryRepository 创建摘要记录仓储
func NewSummaryRepository(client *Client) repository.SummaryRepository {
	return &SummaryRepository{client: client}
}

// Create 保存一条摘要记录
func (r *SummaryRepository) Create(ctx context.Context, record *entity.SummaryRecord) error {
	ctx, span := tracer.Start(ctx, "SummaryRepository.Create")
	defer span.End()
	span.SetAttributes(attribute.String("record.id", record.ID))

	if err := r.client.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create summary record: %w", err)
	}
	return nil
}

// GetByID 按主键查询摘要记录，不存在时返回 nil
func (r *SummaryRepository) GetByID(ctx context.Context, id string) (*entity.SummaryRecord, error) {
	ctx, span := tracer.Start(ctx, "SummaryRepository.GetByID")
	defer span.End()
	span.SetAttributes(attribute.String("record.id", id))

	var record entity.SummaryRecord
	err := r.client.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get summary record: %w", err)
	}
	return &record, nil
}

// List 按创建时间倒序查询全部摘要记录
func (r *SummaryRepository) List(ctx context.Context) ([]*entity.SummaryRecord, error) {
	ctx, span := tracer.Start(ctx, "SummaryRepository.List")
	defer span.End()

	var records []*entity.SummaryRecord
	err := r.client.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list summary records: %w", err)
	}
	return records, nil
}
