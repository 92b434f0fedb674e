// Package arxiv 提供 arXiv Atom 源客户端（热门论文列表）
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"research-rag-api/internal/config"
)

var tracer = otel.Tracer("arxiv")

// Paper 源中的单篇论文条目
type Paper struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Summary  string   `json:"summary"`
	PaperURL string   `json:"paper_url"`
}

// Client arXiv 查询客户端
type Client struct {
	endpoint   string
	query      string
	maxResults int
	httpClient *http.Client
}

// Atom 响应结构
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID      string       `xml:"id"`
	Title   string       `xml:"title"`
	Summary string       `xml:"summary"`
	Authors []atomAuthor `xml:"author"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// NewClient 创建 arXiv 客户端
func NewClient(cfg *config.TrendingConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		query:      cfg.Query,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Trending 拉取并解析热门论文条目
func (c *Client) Trending(ctx context.Context) ([]Paper, error) {
	ctx, span := tracer.Start(ctx, "arxiv.Trending")
	defer span.End()

	url := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d", c.endpoint, c.query, c.maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	return parseFeed(body)
}

// parseFeed 解析 Atom XML 为论文条目
func parseFeed(data []byte) ([]Paper, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		authors := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			authors = append(authors, strings.TrimSpace(a.Name))
		}
		papers = append(papers, Paper{
			Title:    strings.TrimSpace(entry.Title),
			Authors:  authors,
			Summary:  strings.TrimSpace(entry.Summary),
			PaperURL: strings.TrimSpace(entry.ID),
		})
	}
	return papers, nil
}
