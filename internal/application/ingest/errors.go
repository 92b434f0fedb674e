package ingest

import "errors"

var (
	// ErrEmptyInput 表示正文为空或仅含空白，无法产出摘要
	ErrEmptyInput = errors.New("input text is empty")
)
