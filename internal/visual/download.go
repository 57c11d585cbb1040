package visual

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxImageBytes bounds an image download.
const maxImageBytes = 20 << 20

// Downloader fetches cover images for embedding
type Downloader struct {
	httpClient *http.Client
}

// NewDownloader creates a downloader with the given request timeout
func NewDownloader(timeout time.Duration) *Downloader {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Downloader{httpClient: &http.Client{Timeout: timeout}}
}

// DownloadImage returns the bytes behind an http(s) or base64 data: URL
func (d *Downloader) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	if strings.HasPrefix(imageURL, "data:") {
		return decodeDataURL(imageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

func decodeDataURL(dataURL string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(dataURL, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URL")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("unsupported data URL encoding %q", meta)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	return data, nil
}
