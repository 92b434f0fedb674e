// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"research-rag-api/internal/domain/entity"
)

// SummaryRepository 摘要记录仓储接口
type SummaryRepository interface {
	// Create 写入摘要记录（记录不可变，无更新语义；
	// 重复摄取同一来源会产生重复记录，由调用方保证至多一次触发）
	Create(ctx context.Context, record *entity.SummaryRecord) error

	// GetByID 根据 ID 获取摘要记录
	GetByID(ctx context.Context, id string) (*entity.SummaryRecord, error)

	// List 获取全部摘要记录（按创建时间倒序）
	List(ctx context.Context) ([]*entity.SummaryRecord, error)
}
