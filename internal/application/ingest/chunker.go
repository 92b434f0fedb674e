package ingest

import (
	"strings"
	"unicode"
)

// SplitIntoChunks 将正文按句号边界切分为不超过 maxChars 个字符的块。
// 每块尽量在窗口内最后一个句号处截断（句号计入当前块）；
// 窗口内没有句号时按 maxChars 硬切，避免死循环。
// 所有块去除首尾空白，空块丢弃。
func SplitIntoChunks(text string, maxChars int) []string {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return nil
	}
	if maxChars <= 0 {
		return []string{raw}
	}

	runes := []rune(raw)
	out := make([]string, 0, (len(runes)/maxChars)+1)

	for len(runes) > 0 {
		if len(runes) <= maxChars {
			chunk := strings.TrimSpace(string(runes))
			if chunk != "" {
				out = append(out, chunk)
			}
			break
		}

		cut := lastPeriodWithin(runes, maxChars)
		if cut < 0 {
			cut = maxChars - 1
		}

		chunk := strings.TrimSpace(string(runes[:cut+1]))
		if chunk != "" {
			out = append(out, chunk)
		}
		runes = trimLeadingSpace(runes[cut+1:])
	}
	return out
}

// trimLeadingSpace 去掉剩余正文的前导空白，避免空白占用下一个窗口
func trimLeadingSpace(runes []rune) []rune {
	i := 0
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return runes[i:]
}

// lastPeriodWithin 返回前 limit 个字符中最后一个句号的下标，找不到返回 -1
func lastPeriodWithin(runes []rune, limit int) int {
	for i := limit - 1; i >= 0; i-- {
		if runes[i] == '.' {
			return i
		}
	}
	return -1
}
