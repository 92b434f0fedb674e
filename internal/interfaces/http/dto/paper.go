package dto

import (
	"time"

	"research-rag-api/internal/domain/entity"
	"research-rag-api/internal/infrastructure/arxiv"
	"research-rag-api/internal/infrastructure/opensearch"
)

// UploadPaperRequest 论文上传请求
type UploadPaperRequest struct {
	FileName string `json:"file_name" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// UploadPaperResponse 论文上传响应
type UploadPaperResponse struct {
	FileKey      string    `json:"file_key"`
	OriginalName string    `json:"original_name"`
	Bucket       string    `json:"bucket"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// SummaryResponse 摘要记录
type SummaryResponse struct {
	ID        string    `json:"id"`
	SourceKey string    `json:"s3_key"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// FromSummaryRecord 实体转响应
func FromSummaryRecord(record *entity.SummaryRecord) SummaryResponse {
	return SummaryResponse{
		ID:        record.ID,
		SourceKey: record.SourceKey,
		Summary:   record.Summary,
		CreatedAt: record.CreatedAt,
	}
}

// SearchHitResponse 检索命中
type SearchHitResponse struct {
	PaperID   string  `json:"paper_id"`
	Summary   string  `json:"summary"`
	SourceURL string  `json:"s3_url"`
	Score     float64 `json:"score"`
}

// FromSearchHits 命中列表转响应
func FromSearchHits(hits []opensearch.SearchHit) []SearchHitResponse {
	out := make([]SearchHitResponse, 0, len(hits))
	for _, hit := range hits {
		out = append(out, SearchHitResponse{
			PaperID:   hit.PaperID,
			Summary:   hit.Summary,
			SourceURL: hit.SourceURL,
			Score:     hit.Score,
		})
	}
	return out
}

// TrendingPaperResponse 热门论文
type TrendingPaperResponse struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Summary  string   `json:"summary"`
	PaperURL string   `json:"paper_url"`
}

// FromTrendingPapers 热门论文列表转响应
func FromTrendingPapers(papers []arxiv.Paper) []TrendingPaperResponse {
	out := make([]TrendingPaperResponse, 0, len(papers))
	for _, p := range papers {
		out = append(out, TrendingPaperResponse{
			Title:    p.Title,
			Authors:  p.Authors,
			Summary:  p.Summary,
			PaperURL: p.PaperURL,
		})
	}
	return out
}
