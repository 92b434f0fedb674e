package rag

import "errors"

var (
	// ErrEmptyQuestion 表示问题为空或仅含空白
	ErrEmptyQuestion = errors.New("question is empty")
)
