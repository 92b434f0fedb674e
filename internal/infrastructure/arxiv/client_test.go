package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-rag-api/internal/config"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762</id>
    <title> Attention Is All You Need </title>
    <summary>
      The dominant sequence transduction models are based on recurrent networks.
    </summary>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/1412.6980</id>
    <title>Adam: A Method for Stochastic Optimization</title>
    <summary>We introduce Adam.</summary>
    <author><name>Diederik P. Kingma</name></author>
  </entry>
</feed>`

func TestParseFeed(t *testing.T) {
	papers, err := parseFeed([]byte(sampleFeed))
	require.NoError(t, err)
	require.Len(t, papers, 2)

	assert.Equal(t, "Attention Is All You Need", papers[0].Title)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, papers[0].Authors)
	assert.Equal(t, "http://arxiv.org/abs/1706.03762", papers[0].PaperURL)
	assert.Contains(t, papers[0].Summary, "sequence transduction")

	assert.Equal(t, "Adam: A Method for Stochastic Optimization", papers[1].Title)
	assert.Equal(t, []string{"Diederik P. Kingma"}, papers[1].Authors)
}

func TestParseFeedInvalidXML(t *testing.T) {
	_, err := parseFeed([]byte("{not xml}"))
	assert.Error(t, err)
}

func TestTrending(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(sampleFeed))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(&config.TrendingConfig{
		Endpoint:   srv.URL,
		Query:      "all:machine+learning",
		MaxResults: 5,
		Timeout:    time.Second,
	})

	papers, err := client.Trending(context.Background())
	require.NoError(t, err)
	assert.Len(t, papers, 2)
	assert.Equal(t, "search_query=all:machine+learning&start=0&max_results=5", gotQuery)
}

func TestTrendingUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(&config.TrendingConfig{Endpoint: srv.URL, Query: "q", MaxResults: 5})
	_, err := client.Trending(context.Background())
	assert.ErrorContains(t, err, "status 502")
}
