package handler

import (
	"github.com/gin-gonic/gin"

	"research-rag-api/internal/application/rag"
	"research-rag-api/internal/interfaces/http/dto"
)

// AskHandler 问答处理器
type AskHandler struct {
	engine *rag.Engine
}

// NewAskHandler 创建问答处理器
func NewAskHandler(engine *rag.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// Ask 基于已摄取论文回答问题
// @Summary 论文问答
// @Description 向量召回相关摘要并据此生成回答
// @Tags Ask
// @Accept json
// @Produce json
// @Param body body dto.AskRequest true "问答请求"
// @Success 200 {object} dto.Response[dto.AskResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/ask [post]
func (h *AskHandler) Ask(c *gin.Context) {
	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.engine.Answer(c.Request.Context(), req.Question)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, dto.AskResponse{
		Answer:  result.Answer,
		Sources: dto.FromSearchHits(result.Sources),
	})
}
