package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"research-rag-api/internal/infrastructure/opensearch"
)

func TestBuildPrompt(t *testing.T) {
	hits := []opensearch.SearchHit{
		{Summary: "Transformers dominate sequence modeling."},
		{Summary: "Retrieval improves factuality."},
	}

	prompt := BuildPrompt("What improves factuality?", hits)

	assert.True(t, strings.HasPrefix(prompt, "You are a helpful assistant."))
	assert.Contains(t, prompt, "in bullet points, one per line.\nStart each point with \"-\".")
	assert.Contains(t, prompt, "Papers:\n1. Transformers dominate sequence modeling.\n2. Retrieval improves factuality.\n")
	assert.Contains(t, prompt, "Question: What improves factuality?")
	assert.True(t, strings.HasSuffix(prompt, "Answer:"))

	// 摘要顺序决定编号
	first := strings.Index(prompt, "1. Transformers")
	second := strings.Index(prompt, "2. Retrieval")
	assert.Less(t, first, second)
}

func TestBuildPromptNoHits(t *testing.T) {
	prompt := BuildPrompt("Anything known?", nil)

	assert.Contains(t, prompt, "Papers:\n")
	assert.Contains(t, prompt, "Question: Anything known?")
	assert.NotContains(t, prompt, "1.")
}
