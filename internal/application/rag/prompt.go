package rag

import (
	"fmt"
	"strings"

	"research-rag-api/internal/infrastructure/opensearch"
)

// BuildPrompt 把召回的摘要和问题拼装成接地 prompt。
// 摘要按召回顺序编号；没有命中时仍然生成 prompt，让模型
// 在空上下文下作答而不是直接报错。
func BuildPrompt(question string, hits []opensearch.SearchHit) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant. Based on the following research paper summaries, answer the user's question in bullet points, one per line.\n")
	b.WriteString("Start each point with \"-\".\n\n")
	b.WriteString("Papers:\n")
	for i, hit := range hits {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(hit.Summary))
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\nAnswer:")
	return b.String()
}
