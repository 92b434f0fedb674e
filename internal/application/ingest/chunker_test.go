package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIntoChunksEmptyInput(t *testing.T) {
	assert.Nil(t, SplitIntoChunks("", 3000))
	assert.Nil(t, SplitIntoChunks("   \n\t  ", 3000))
}

func TestSplitIntoChunksShortText(t *testing.T) {
	chunks := SplitIntoChunks("A short abstract.", 3000)
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short abstract.", chunks[0])
}

func TestSplitIntoChunksSentenceBoundaries(t *testing.T) {
	// 14 句，每句 500 字符，共 7000 字符
	sentence := strings.Repeat("a", 499) + "."
	text := strings.Repeat(sentence, 14)

	chunks := SplitIntoChunks(text, 3000)
	require.Len(t, chunks, 3)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 3000, "chunk %d too long", i)
		assert.True(t, strings.HasSuffix(chunk, "."), "chunk %d must end at a sentence boundary", i)
	}

	// 内容无损：拼回后等于原文
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitIntoChunksNoPeriodHardCut(t *testing.T) {
	text := strings.Repeat("b", 7000)

	chunks := SplitIntoChunks(text, 3000)
	require.Len(t, chunks, 3)
	assert.Equal(t, 3000, len(chunks[0]))
	assert.Equal(t, 3000, len(chunks[1]))
	assert.Equal(t, 1000, len(chunks[2]))
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitIntoChunksExactFit(t *testing.T) {
	text := strings.Repeat("c", 2999) + "."
	chunks := SplitIntoChunks(text, 3000)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitIntoChunksPeriodAtWindowEdge(t *testing.T) {
	// 句号恰好落在窗口最后一位也要计入当前块
	text := strings.Repeat("d", 9) + "." + strings.Repeat("e", 5)
	chunks := SplitIntoChunks(text, 10)
	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("d", 9)+".", chunks[0])
	assert.Equal(t, strings.Repeat("e", 5), chunks[1])
}

func TestSplitIntoChunksSkipsWhitespaceAfterCut(t *testing.T) {
	// 句号后的空白不占用下一个窗口的预算
	text := "aaaa." + strings.Repeat(" ", 6) + "bbbb."
	chunks := SplitIntoChunks(text, 5)
	require.Len(t, chunks, 2)
	assert.Equal(t, "aaaa.", chunks[0])
	assert.Equal(t, "bbbb.", chunks[1])
}

func TestSplitIntoChunksCountMonotonic(t *testing.T) {
	// 窗口变大时块数不增，空白与连续句号混排也一样
	text := "a. aab b a.ab.babab.      ba  a.. . a.a b bba  ..ab aabba"
	prev := len(SplitIntoChunks(text, 1))
	for maxChars := 2; maxChars <= 64; maxChars++ {
		n := len(SplitIntoChunks(text, maxChars))
		assert.LessOrEqual(t, n, prev, "maxChars=%d", maxChars)
		prev = n
	}
}

func TestSplitIntoChunksTrimsWhitespace(t *testing.T) {
	text := "First sentence. Second sentence. Third one here."
	chunks := SplitIntoChunks(text, 20)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.Equal(t, strings.TrimSpace(chunk), chunk)
		assert.NotEmpty(t, chunk)
	}
}
