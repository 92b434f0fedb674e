package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-rag-api/internal/infrastructure/opensearch"
	apperrors "research-rag-api/pkg/errors"
)

type fakeEmbedder struct {
	inputs []string
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, text)
	return f.vector, nil
}

type fakeSearcher struct {
	gotVector []float32
	gotK      int
	hits      []opensearch.SearchHit
	err       error
}

func (f *fakeSearcher) KNNSearch(_ context.Context, vector []float32, k int) ([]opensearch.SearchHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotVector = vector
	f.gotK = k
	return f.hits, nil
}

type fakeGenerator struct {
	prompts []string
	answer  string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.prompts = append(f.prompts, prompt)
	return f.answer, nil
}

func hitsWithScores(scores ...float64) []opensearch.SearchHit {
	hits := make([]opensearch.SearchHit, 0, len(scores))
	for i, score := range scores {
		hits = append(hits, opensearch.SearchHit{
			PaperID: fmt.Sprintf("paper-%d", i),
			Summary: fmt.Sprintf("Summary %d.", i),
			Score:   score,
		})
	}
	return hits
}

func TestAnswer(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.5, 0.5}}
	searcher := &fakeSearcher{hits: hitsWithScores(0.91, 0.80, 0.74, 0.60, 0.30)}
	generator := &fakeGenerator{answer: "Retrieval helps."}

	e := NewEngine(embedder, searcher, generator, 5, 0.75, 500)

	result, err := e.Answer(context.Background(), "Does retrieval help?")
	require.NoError(t, err)

	// 问题本身被向量化，召回使用 top-k
	require.Len(t, embedder.inputs, 1)
	assert.Equal(t, "Does retrieval help?", embedder.inputs[0])
	assert.Equal(t, []float32{0.5, 0.5}, searcher.gotVector)
	assert.Equal(t, 5, searcher.gotK)

	// 阈值过滤后只剩前两条，顺序保持
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "paper-0", result.Sources[0].PaperID)
	assert.Equal(t, "paper-1", result.Sources[1].PaperID)

	// prompt 只包含过滤后的摘要
	require.Len(t, generator.prompts, 1)
	assert.Contains(t, generator.prompts[0], "1. Summary 0.")
	assert.Contains(t, generator.prompts[0], "2. Summary 1.")
	assert.NotContains(t, generator.prompts[0], "Summary 2.")

	assert.Equal(t, "Retrieval helps.", result.Answer)
}

func TestAnswerBoundaryScoreSurvives(t *testing.T) {
	searcher := &fakeSearcher{hits: hitsWithScores(0.75)}
	generator := &fakeGenerator{answer: "ok"}

	e := NewEngine(&fakeEmbedder{vector: []float32{1}}, searcher, generator, 5, 0.75, 500)

	result, err := e.Answer(context.Background(), "q?")
	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
}

func TestAnswerNoRelevantHitsStillGenerates(t *testing.T) {
	searcher := &fakeSearcher{hits: hitsWithScores(0.50, 0.40)}
	generator := &fakeGenerator{answer: "I do not have enough information."}

	e := NewEngine(&fakeEmbedder{vector: []float32{1}}, searcher, generator, 5, 0.75, 500)

	result, err := e.Answer(context.Background(), "Obscure question?")
	require.NoError(t, err)
	assert.Empty(t, result.Sources)

	require.Len(t, generator.prompts, 1)
	assert.Contains(t, generator.prompts[0], "Papers:\n")
	assert.NotContains(t, generator.prompts[0], "Summary 0.")
	assert.Equal(t, "I do not have enough information.", result.Answer)
}

func TestAnswerEmptyQuestion(t *testing.T) {
	e := NewEngine(&fakeEmbedder{}, &fakeSearcher{}, &fakeGenerator{}, 5, 0.75, 500)

	for _, question := range []string{"", "   ", "\n\t"} {
		_, err := e.Answer(context.Background(), question)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	}
}

func TestAnswerEmbedFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("model down")}
	e := NewEngine(embedder, &fakeSearcher{}, &fakeGenerator{}, 5, 0.75, 500)

	_, err := e.Answer(context.Background(), "q?")
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeEmbeddingFailed, appErr.Code)
}

func TestAnswerSearchFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("cluster red")}
	e := NewEngine(&fakeEmbedder{vector: []float32{1}}, searcher, &fakeGenerator{}, 5, 0.75, 500)

	_, err := e.Answer(context.Background(), "q?")
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeRetrievalFailed, appErr.Code)
}

func TestSearchReturnsFilteredHitsWithoutGeneration(t *testing.T) {
	searcher := &fakeSearcher{hits: hitsWithScores(0.9, 0.1)}
	generator := &fakeGenerator{answer: "unused"}

	e := NewEngine(&fakeEmbedder{vector: []float32{1}}, searcher, generator, 5, 0.75, 500)

	hits, err := e.Search(context.Background(), "vector databases")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "paper-0", hits[0].PaperID)

	// 纯检索不触发生成
	assert.Empty(t, generator.prompts)
}

func TestFilterByScoreProperty(t *testing.T) {
	hits := hitsWithScores(0.99, 0.75, 0.7499, 0.2, 0.8)

	out := filterByScore(hits, 0.75)

	// 留下的都不低于阈值，且保持原有相对顺序
	require.Len(t, out, 3)
	ids := make([]string, 0, len(out))
	for _, h := range out {
		assert.GreaterOrEqual(t, h.Score, 0.75)
		ids = append(ids, h.PaperID)
	}
	assert.Equal(t, "paper-0 paper-1 paper-4", strings.Join(ids, " "))
}
