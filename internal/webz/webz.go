package webz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"riskdigest/internal/articles"
	"riskdigest/internal/core"
	"riskdigest/internal/logger"

	"github.com/google/uuid"
)

// DefaultBaseURL is the Webz.io API host.
const DefaultBaseURL = "https://api.webz.io"

// Client retrieves posts from the Webz.io filterWebContent endpoint.
type Client struct {
	apiKey        string
	baseURL       string
	pageSize      int
	timestamp     int64
	maxTextLength int
	httpClient    *http.Client
}

// Options configures a Client. Zero values fall back to the API defaults.
type Options struct {
	BaseURL       string
	PageSize      int
	Timestamp     int64
	MaxTextLength int
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// NewClient creates a new Webz.io client
func NewClient(apiKey string, opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	maxTextLength := opts.MaxTextLength
	if maxTextLength <= 0 {
		maxTextLength = 10000
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		apiKey:        apiKey,
		baseURL:       baseURL,
		pageSize:      pageSize,
		timestamp:     opts.Timestamp,
		maxTextLength: maxTextLength,
		httpClient:    httpClient,
	}
}

// searchResponse is the subset of the filterWebContent response the pipeline uses.
type searchResponse struct {
	Posts                []post `json:"posts"`
	TotalResults         int    `json:"totalResults"`
	MoreResultsAvailable int    `json:"moreResultsAvailable"`
	Next                 string `json:"next"`
	RequestsLeft         int    `json:"requestsLeft"`
}

type post struct {
	UUID      string `json:"uuid"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Published string `json:"published"`
	Thread    struct {
		Site string `json:"site"`
	} `json:"thread"`
}

// Fetch pages through search results for query until at least target posts
// have been collected or the API reports no further page. Every collected post
// is returned, so the result may exceed target by up to one page. Any
// transport, status or decoding failure aborts the fetch.
func (c *Client) Fetch(ctx context.Context, query string, target int) ([]core.Article, error) {
	endpoint := c.firstPageURL(query)
	remaining := target

	var posts []post
	for page := 1; remaining > 0; page++ {
		resp, err := c.getPage(ctx, endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}

		logger.Debug("Fetched search page",
			"page", page,
			"posts", len(resp.Posts),
			"total_results", resp.TotalResults,
			"requests_left", resp.RequestsLeft,
		)

		posts = append(posts, resp.Posts...)
		remaining -= len(resp.Posts)

		if resp.Next == "" || len(resp.Posts) == 0 {
			break
		}
		endpoint = c.baseURL + resp.Next
	}

	result := make([]core.Article, 0, len(posts))
	for _, p := range posts {
		result = append(result, c.toArticle(p))
	}
	return result, nil
}

func (c *Client) firstPageURL(query string) string {
	params := url.Values{}
	params.Set("token", c.apiKey)
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("size", strconv.Itoa(c.pageSize))
	params.Set("ts", strconv.FormatInt(c.timestamp, 10))
	return c.baseURL + "/filterWebContent?" + params.Encode()
}

func (c *Client) getPage(ctx context.Context, endpoint string) (*searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("webz API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &data, nil
}

func (c *Client) toArticle(p post) core.Article {
	id := p.UUID
	if id == "" {
		id = uuid.NewString()
	}
	return core.Article{
		ID:        id,
		Title:     p.Title,
		Text:      articles.ComposeText(p.Title, p.Text, c.maxTextLength),
		Link:      p.URL,
		Published: p.Published,
		Site:      p.Thread.Site,
	}
}
