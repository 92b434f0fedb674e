package opensearch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-rag-api/internal/config"
	"research-rag-api/internal/infrastructure/awsauth"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	signer := awsauth.NewSigner(awsauth.NewStaticProvider("AKIDEXAMPLE", "secret", ""), "us-east-1", "es")
	c := NewClient(&config.SearchConfig{
		Host:    srv.URL,
		Index:   "research-papers",
		Timeout: 5 * time.Second,
	}, signer)
	c.now = func() time.Time { return time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestIndexPaper(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotAuth   string
		gotBody   map[string]any
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	err := client.IndexPaper(context.Background(), &IndexedPaper{
		PaperID:   "paper-1",
		Summary:   "a summary",
		SourceURL: "https://bucket.s3.amazonaws.com/key.txt",
		Embedding: []float32{0.1, 0.2},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/research-papers/_doc/paper-1", gotPath)
	assert.Contains(t, gotAuth, "AWS4-HMAC-SHA256")
	assert.Equal(t, "paper-1", gotBody["paper_id"])
	assert.Equal(t, "a summary", gotBody["summary"])
	assert.Equal(t, "https://bucket.s3.amazonaws.com/key.txt", gotBody["s3_url"])
}

func TestKNNSearch(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte(`{
			"hits": {"hits": [
				{"_score": 0.91, "_source": {"paper_id": "p1", "summary": "s1", "s3_url": "u1"}},
				{"_score": 0.80, "_source": {"paper_id": "p2", "summary": "s2", "s3_url": "u2"}}
			]}
		}`))
	})

	hits, err := client.KNNSearch(context.Background(), []float32{0.5, 0.5}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	// 引擎原生排序原样保留
	assert.Equal(t, SearchHit{PaperID: "p1", Summary: "s1", SourceURL: "u1", Score: 0.91}, hits[0])
	assert.Equal(t, SearchHit{PaperID: "p2", Summary: "s2", SourceURL: "u2", Score: 0.80}, hits[1])

	assert.EqualValues(t, 5, gotBody["size"])
	knn := gotBody["query"].(map[string]any)["knn"].(map[string]any)["embedding"].(map[string]any)
	assert.EqualValues(t, 5, knn["k"])
}

func TestKNNSearchHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("shards unavailable"))
	})

	_, err := client.KNNSearch(context.Background(), []float32{1}, 5)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusServiceUnavailable, reqErr.StatusCode)
	assert.Equal(t, "shards unavailable", reqErr.Body)
}

func TestKNNSearchMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "not-json"},
		{"missing hits", `{"took": 3}`},
		{"hit missing score", `{"hits": {"hits": [{"_source": {"paper_id": "p1"}}]}}`},
		{"hit missing source", `{"hits": {"hits": [{"_score": 0.9}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.KNNSearch(context.Background(), []float32{1}, 5)
			assert.True(t, errors.Is(err, ErrMalformedResponse))
		})
	}
}

func TestIndexPaperSigningFailureDoesNotSend(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(srv.Close)

	signer := awsauth.NewSigner(awsauth.NewStaticProvider("", "", ""), "us-east-1", "es")
	client := NewClient(&config.SearchConfig{Host: srv.URL, Index: "idx"}, signer)

	err := client.IndexPaper(context.Background(), &IndexedPaper{PaperID: "p"})
	assert.ErrorIs(t, err, awsauth.ErrMissingCredentials)
	assert.False(t, called)
}
