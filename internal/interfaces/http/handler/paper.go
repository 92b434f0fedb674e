package handler

import (
	"github.com/gin-gonic/gin"

	"research-rag-api/internal/application/paper"
	"research-rag-api/internal/application/rag"
	"research-rag-api/internal/interfaces/http/dto"
)

// PaperHandler 论文处理器
type PaperHandler struct {
	papers *paper.Service
	engine *rag.Engine
}

// NewPaperHandler 创建论文处理器
func NewPaperHandler(papers *paper.Service, engine *rag.Engine) *PaperHandler {
	return &PaperHandler{
		papers: papers,
		engine: engine,
	}
}

// Upload 上传论文
// @Summary 上传论文
// @Description 接收 base64 编码的 PDF，提取正文后异步摄取
// @Tags Paper
// @Accept json
// @Produce json
// @Param body body dto.UploadPaperRequest true "上传请求"
// @Success 202 {object} dto.Response[dto.UploadPaperResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Router /v1/papers [post]
func (h *PaperHandler) Upload(c *gin.Context) {
	var req dto.UploadPaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.papers.Upload(c.Request.Context(), paper.UploadInput{
		FileName:    req.FileName,
		ContentB64:  req.Content,
		NotifyEmail: req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Accepted(c, dto.UploadPaperResponse{
		FileKey:      result.FileKey,
		OriginalName: result.OriginalName,
		Bucket:       result.Bucket,
		UploadedAt:   result.UploadedAt,
	})
}

// List 摘要列表
// @Summary 摘要列表
// @Tags Paper
// @Produce json
// @Success 200 {object} dto.Response[[]dto.SummaryResponse]
// @Router /v1/papers [get]
func (h *PaperHandler) List(c *gin.Context) {
	records, err := h.papers.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.SummaryResponse, 0, len(records))
	for _, record := range records {
		out = append(out, dto.FromSummaryRecord(record))
	}
	dto.Success(c, out)
}

// Get 查询单条摘要
// @Summary 查询单条摘要
// @Tags Paper
// @Produce json
// @Param id path string true "摘要记录 ID"
// @Success 200 {object} dto.Response[dto.SummaryResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/papers/{id} [get]
func (h *PaperHandler) Get(c *gin.Context) {
	record, err := h.papers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.FromSummaryRecord(record))
}

// Search 语义检索
// @Summary 语义检索
// @Description 向量召回并按相关度阈值过滤
// @Tags Paper
// @Produce json
// @Param q query string true "检索词"
// @Success 200 {object} dto.Response[[]dto.SearchHitResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/papers/search [get]
func (h *PaperHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		dto.BadRequest(c, "query parameter q is required")
		return
	}

	hits, err := h.engine.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.FromSearchHits(hits))
}

// Trending 热门论文
// @Summary 热门论文
// @Tags Paper
// @Produce json
// @Success 200 {object} dto.Response[[]dto.TrendingPaperResponse]
// @Router /v1/papers/trending [get]
func (h *PaperHandler) Trending(c *gin.Context) {
	papers, err := h.papers.Trending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.FromTrendingPapers(papers))
}

// Audio 摘要音频
// @Summary 摘要音频
// @Description 把指定摘要合成为 mp3 返回
// @Tags Paper
// @Produce audio/mpeg
// @Param id path string true "摘要记录 ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/papers/{id}/audio [get]
func (h *PaperHandler) Audio(c *gin.Context) {
	audio, err := h.papers.Audio(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(200, "audio/mpeg", audio)
}
