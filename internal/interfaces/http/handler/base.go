// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"research-rag-api/internal/interfaces/http/dto"
	apperrors "research-rag-api/pkg/errors"
	"research-rag-api/pkg/logger"
)

// respondError 按错误类型映射 HTTP 状态码并返回统一错误结构。
// 非 AppError 一律按 500 处理，不向外泄露内部细节。
func respondError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus >= 500 {
		logger.Error(c.Request.Context(), "request failed", err,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		dto.Error(c, appErr.HTTPStatus, appErr.Message)
		return
	}
	dto.Error(c, appErr.HTTPStatus, appErr.Message)
}
