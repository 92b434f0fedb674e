package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-rag-api/internal/application/rag"
	"research-rag-api/internal/infrastructure/opensearch"
)

type stubEmbedder struct{ vector []float32 }

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return s.vector, nil
}

type stubSearcher struct{ hits []opensearch.SearchHit }

func (s *stubSearcher) KNNSearch(context.Context, []float32, int) ([]opensearch.SearchHit, error) {
	return s.hits, nil
}

type stubGenerator struct{ answer string }

func (s *stubGenerator) Generate(context.Context, string, int) (string, error) {
	return s.answer, nil
}

func newAskRouter(engine *rag.Engine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/v1/ask", NewAskHandler(engine).Ask)
	return r
}

func defaultEngine() *rag.Engine {
	return rag.NewEngine(
		&stubEmbedder{vector: []float32{1}},
		&stubSearcher{hits: []opensearch.SearchHit{
			{PaperID: "p1", Summary: "Relevant.", SourceURL: "https://b.s3.us-east-1.amazonaws.com/k.txt", Score: 0.9},
			{PaperID: "p2", Summary: "Irrelevant.", Score: 0.1},
		}},
		&stubGenerator{answer: "Grounded answer."},
		5, 0.75, 500,
	)
}

func TestAskEndpoint(t *testing.T) {
	r := newAskRouter(defaultEngine())

	req := httptest.NewRequest(http.MethodPost, "/v1/ask",
		strings.NewReader(`{"question":"What is relevant?"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Answer  string `json:"answer"`
			Sources []struct {
				PaperID string  `json:"paper_id"`
				Score   float64 `json:"score"`
			} `json:"sources"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, "Grounded answer.", resp.Data.Answer)
	require.Len(t, resp.Data.Sources, 1)
	assert.Equal(t, "p1", resp.Data.Sources[0].PaperID)
}

func TestAskEndpointValidation(t *testing.T) {
	r := newAskRouter(defaultEngine())

	tests := []struct {
		name string
		body string
	}{
		{"missing question", `{}`},
		{"malformed json", `{question`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAskEndpointBlankQuestion(t *testing.T) {
	r := newAskRouter(defaultEngine())

	req := httptest.NewRequest(http.MethodPost, "/v1/ask",
		strings.NewReader(`{"question":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
