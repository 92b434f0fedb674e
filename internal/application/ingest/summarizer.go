package ingest

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	apperrors "research-rag-api/pkg/errors"
	"research-rag-api/pkg/metrics"
)

var tracer = otel.Tracer("ingest")

// Summarizer 基于 map-reduce 的长文摘要器。
// map 阶段对每个分块独立摘要，reduce 阶段把分块摘要合并再摘要；
// 合并输入超过分块上限时按组归并后递归，保证每次模型调用的输入有界。
type Summarizer struct {
	generator     TextGenerator
	maxChunkChars int
	summaryTokens int
}

// NewSummarizer 创建摘要器
func NewSummarizer(generator TextGenerator, maxChunkChars, summaryTokens int) *Summarizer {
	if maxChunkChars <= 0 {
		maxChunkChars = 3000
	}
	if summaryTokens <= 0 {
		summaryTokens = 1000
	}
	return &Summarizer{
		generator:     generator,
		maxChunkChars: maxChunkChars,
		summaryTokens: summaryTokens,
	}
}

// Summarize 对完整正文产出一段最终摘要
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	ctx, span := tracer.Start(ctx, "Summarizer.Summarize")
	defer span.End()

	chunks := SplitIntoChunks(text, s.maxChunkChars)
	if len(chunks) == 0 {
		return "", apperrors.Wrap(ErrEmptyInput, apperrors.CodeInvalidParam, "nothing to summarize")
	}

	span.SetAttributes(attribute.Int("chunks", len(chunks)))
	metrics.ChunksPerPaper.Observe(float64(len(chunks)))

	summaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		summary, err := s.summarizeOne(ctx, chunk)
		if err != nil {
			span.RecordError(err)
			return "", apperrors.Wrap(err, apperrors.CodeSummarizationFailed,
				fmt.Sprintf("chunk %d/%d", i+1, len(chunks)))
		}
		summaries = append(summaries, summary)
	}

	// reduce 阶段：合并输入过长时分组归并，递归直到只剩一段
	for len(summaries) > 1 {
		groups := groupByLength(summaries, s.maxChunkChars)
		// 每条摘要都单独成组时分组不再收敛（模型输出可能一直超过分块上限），
		// 退回到对全部摘要做一次整体归并，保证循环终止
		if len(groups) == len(summaries) {
			summary, err := s.summarizeOne(ctx, strings.Join(summaries, " "))
			if err != nil {
				span.RecordError(err)
				return "", apperrors.Wrap(err, apperrors.CodeSummarizationFailed, "final reduce")
			}
			return summary, nil
		}
		reduced := make([]string, 0, len(groups))
		for _, group := range groups {
			summary, err := s.summarizeOne(ctx, strings.Join(group, " "))
			if err != nil {
				span.RecordError(err)
				return "", apperrors.Wrap(err, apperrors.CodeSummarizationFailed, "reduce pass")
			}
			reduced = append(reduced, summary)
		}
		summaries = reduced
	}

	return summaries[0], nil
}

func (s *Summarizer) summarizeOne(ctx context.Context, text string) (string, error) {
	prompt := "Summarize the following:\n" + text
	return s.generator.Generate(ctx, prompt, s.summaryTokens)
}

// groupByLength 按拼接后长度不超过 maxChars 把摘要切成若干组。
// 单条超长的摘要独占一组。
func groupByLength(summaries []string, maxChars int) [][]string {
	groups := make([][]string, 0, 1)
	var current []string
	currentLen := 0

	for _, summary := range summaries {
		n := len([]rune(summary))
		// 预估拼接长度，含分隔空格
		joined := currentLen + n
		if len(current) > 0 {
			joined++
		}
		if len(current) > 0 && joined > maxChars {
			groups = append(groups, current)
			current = nil
			currentLen = 0
			joined = n
		}
		current = append(current, summary)
		currentLen = joined
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}
