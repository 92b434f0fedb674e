package dto

// AskRequest 问答请求
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// AskResponse 问答响应
type AskResponse struct {
	Answer  string              `json:"answer"`
	Sources []SearchHitResponse `json:"sources"`
}
