package visual

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultImageBaseURL is the OpenAI API root used for image generation.
	DefaultImageBaseURL = "https://api.openai.com/v1"
	// DefaultImageModel is the image model requested when none is configured.
	DefaultImageModel = "dall-e-3"
)

// DALLEClient handles OpenAI DALL-E API interactions
type DALLEClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
}

// NewDALLEClient creates a new DALL-E API client
func NewDALLEClient(apiKey, model, baseURL string, timeout time.Duration) *DALLEClient {
	if model == "" {
		model = DefaultImageModel
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultImageBaseURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &DALLEClient{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// DALLERequest represents a DALL-E image generation request
type DALLERequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// DALLEResponse represents a DALL-E API response
type DALLEResponse struct {
	Created int64              `json:"created"`
	Data    []DALLEImageResult `json:"data"`
}

// DALLEImageResult represents a single image result from DALL-E
type DALLEImageResult struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// GenerateImage requests a single image of the given size
func (c *DALLEClient) GenerateImage(ctx context.Context, prompt string, size string) (*DALLEResponse, error) {
	request := DALLERequest{
		Model:  c.model,
		Prompt: prompt,
		N:      1,
		Size:   size,
	}
	// gpt-image models only ever return base64 data and reject response_format.
	if strings.HasPrefix(c.model, "dall-e") {
		request.ResponseFormat = "url"
	}

	reqBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DALL-E API error (status %d): %s", resp.StatusCode, string(body))
	}

	var dalleResp DALLEResponse
	if err := json.Unmarshal(body, &dalleResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &dalleResp, nil
}

// GetImageSize maps the configured dimensions to a size the API accepts
func GetImageSize(width, height int) string {
	// Supported: '1024x1024', '1024x1536', '1536x1024', '1792x1024', '1024x1792'
	sizeStr := fmt.Sprintf("%dx%d", width, height)
	switch sizeStr {
	case "1024x1024", "1024x1536", "1536x1024", "1792x1024", "1024x1792":
		return sizeStr
	}

	if width <= 0 || height <= 0 || width == height {
		return "1024x1024"
	}

	if width > height {
		if float64(width)/float64(height) >= 1.7 {
			return "1792x1024"
		}
		return "1536x1024"
	}
	if float64(height)/float64(width) >= 1.7 {
		return "1024x1792"
	}
	return "1024x1536"
}
