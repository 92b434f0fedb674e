package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator 按调用顺序返回固定摘要并记录全部 prompt
type fakeGenerator struct {
	prompts   []string
	maxTokens []int
	err       error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, maxTokens int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.prompts = append(f.prompts, prompt)
	f.maxTokens = append(f.maxTokens, maxTokens)
	return fmt.Sprintf("summary-%d", len(f.prompts)-1), nil
}

func TestSummarizeMapReduce(t *testing.T) {
	gen := &fakeGenerator{}
	s := NewSummarizer(gen, 20, 1000)

	// 2 句，每句 20 字符，恰好各成一块
	sentence := strings.Repeat("x", 19) + "."
	text := strings.Repeat(sentence, 2)

	result, err := s.Summarize(context.Background(), text)
	require.NoError(t, err)

	// 2 次 map 加 1 次 reduce
	require.Len(t, gen.prompts, 3)
	for i := 0; i < 2; i++ {
		assert.Equal(t, "Summarize the following:\n"+sentence, gen.prompts[i])
	}
	assert.Equal(t, "Summarize the following:\nsummary-0 summary-1", gen.prompts[2])
	assert.Equal(t, "summary-2", result)

	for _, tokens := range gen.maxTokens {
		assert.Equal(t, 1000, tokens)
	}
}

func TestSummarizeSingleChunkSkipsReduce(t *testing.T) {
	gen := &fakeGenerator{}
	s := NewSummarizer(gen, 3000, 1000)

	result, err := s.Summarize(context.Background(), "One short paper.")
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.Equal(t, "Summarize the following:\nOne short paper.", gen.prompts[0])
	assert.Equal(t, "summary-0", result)
}

func TestSummarizeEmptyInput(t *testing.T) {
	gen := &fakeGenerator{}
	s := NewSummarizer(gen, 3000, 1000)

	_, err := s.Summarize(context.Background(), "   \n ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, gen.prompts)
}

func TestSummarizeGeneratorFailure(t *testing.T) {
	upstream := errors.New("model unavailable")
	gen := &fakeGenerator{err: upstream}
	s := NewSummarizer(gen, 3000, 1000)

	_, err := s.Summarize(context.Background(), "Some text.")
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
}

func TestSummarizeReduceIsRecursiveWhenJoinedTooLong(t *testing.T) {
	gen := &fakeGenerator{}
	// 分块摘要拼接后超过 20 字符时需要再归并一轮
	s := NewSummarizer(gen, 20, 1000)

	sentence := strings.Repeat("y", 19) + "."
	text := strings.Repeat(sentence, 5)

	result, err := s.Summarize(context.Background(), text)
	require.NoError(t, err)

	// 5 次 map，之后每次 reduce 输入都不超过分块上限
	require.Greater(t, len(gen.prompts), 5)
	for _, prompt := range gen.prompts[5:] {
		body := strings.TrimPrefix(prompt, "Summarize the following:\n")
		assert.LessOrEqual(t, len([]rune(body)), 20)
	}
	assert.Equal(t, fmt.Sprintf("summary-%d", len(gen.prompts)-1), result)
}

// oversizedGenerator 每次都返回超过分块上限的摘要
type oversizedGenerator struct {
	prompts []string
}

func (f *oversizedGenerator) Generate(_ context.Context, prompt string, _ int) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return oversizedSummary(len(f.prompts) - 1), nil
}

func oversizedSummary(i int) string {
	return strings.Repeat("s", 25) + fmt.Sprintf("%05d", i)
}

func TestSummarizeTerminatesWhenSummariesExceedBound(t *testing.T) {
	gen := &oversizedGenerator{}
	s := NewSummarizer(gen, 20, 1000)

	sentence := strings.Repeat("x", 19) + "."
	text := strings.Repeat(sentence, 2)

	result, err := s.Summarize(context.Background(), text)
	require.NoError(t, err)

	// 摘要全部超长时分组不会收敛，退回一次整体归并后结束：
	// 2 次 map 加 1 次最终 reduce
	require.Len(t, gen.prompts, 3)
	assert.Equal(t, "Summarize the following:\n"+oversizedSummary(0)+" "+oversizedSummary(1), gen.prompts[2])
	assert.Equal(t, oversizedSummary(2), result)
}

func TestGroupByLength(t *testing.T) {
	groups := groupByLength([]string{"aaaa", "bbbb", "cccc"}, 9)
	// "aaaa bbbb" 恰好 9 字符成一组，"cccc" 单独一组
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"aaaa", "bbbb"}, groups[0])
	assert.Equal(t, []string{"cccc"}, groups[1])

	// 单条超长独占一组
	groups = groupByLength([]string{strings.Repeat("z", 30), "ok"}, 10)
	require.Len(t, groups, 2)
}
