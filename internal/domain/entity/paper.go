// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// SummaryRecord 摘要记录：一篇论文产出一条，写入后不可变。
// 同时是记录存储与搜索索引的写入单元。
type SummaryRecord struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	SourceKey string    `json:"s3_key" gorm:"column:s3_key;type:varchar(1024);not null"`
	Summary   string    `json:"summary" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (SummaryRecord) TableName() string {
	return "research_summaries"
}

// NewSummaryRecord 创建摘要记录
func NewSummaryRecord(sourceKey, summary string) *SummaryRecord {
	return &SummaryRecord{
		ID:        uuid.NewString(),
		SourceKey: sourceKey,
		Summary:   summary,
		CreatedAt: time.Now(),
	}
}
