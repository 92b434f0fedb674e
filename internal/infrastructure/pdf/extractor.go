// Package pdf 提供 PDF 文本提取
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("pdf")

// Extractor 基于 pdfcpu 的文本提取器。
// pdfcpu 的内容提取走文件系统，这里用临时目录中转。
type Extractor struct {
	tempDir string
}

// NewExtractor 创建文本提取器
func NewExtractor() *Extractor {
	tempDir := filepath.Join(os.TempDir(), "research-rag-pdf")
	_ = os.MkdirAll(tempDir, 0o755)
	return &Extractor{tempDir: tempDir}
}

// ExtractText 从 PDF 字节中提取全部文本，页间以换行分隔
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	_, span := tracer.Start(ctx, "pdf.ExtractText",
		trace.WithAttributes(attribute.Int("size", len(data))))
	defer span.End()

	tempFile, err := os.CreateTemp(e.tempDir, "extract_*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp pdf: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return "", fmt.Errorf("write temp pdf: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return "", fmt.Errorf("close temp pdf: %w", err)
	}

	outDir, err := os.MkdirTemp(e.tempDir, "pages_")
	if err != nil {
		return "", fmt.Errorf("create extraction dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempPath, outDir, nil, conf); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("extract pdf content: %w", err)
	}

	text, err := collectPageText(outDir)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text could be extracted from the pdf")
	}
	return text, nil
}

// collectPageText 按页号顺序拼接提取出的内容文件
func collectPageText(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read extraction dir: %w", err)
	}

	type page struct {
		num  int
		text string
	}
	pages := make([]page, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		num, ok := pageNumber(entry.Name())
		if !ok {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		pages = append(pages, page{num: num, text: string(content)})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].num < pages[j].num })

	var builder strings.Builder
	for _, p := range pages {
		builder.WriteString(p.text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// pageNumber 从提取文件名中解析页号
func pageNumber(name string) (int, bool) {
	var num int
	if _, err := fmt.Sscanf(name, "Content_page_%d", &num); err == nil {
		return num, true
	}
	if _, err := fmt.Sscanf(name, "page_%d", &num); err == nil {
		return num, true
	}
	return 0, false
}
