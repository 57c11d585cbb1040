package visual

import (
	"context"
	"fmt"

	"riskdigest/internal/logger"
)

// ImageGenerator is the image API used by the cover generator
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, size string) (*DALLEResponse, error)
}

// CoverGenerator produces the digest cover image
type CoverGenerator struct {
	client ImageGenerator
	prompt string
	size   string
}

// NewCoverGenerator creates a cover generator for the given prompt and dimensions
func NewCoverGenerator(client ImageGenerator, prompt string, width, height int) *CoverGenerator {
	return &CoverGenerator{
		client: client,
		prompt: prompt,
		size:   GetImageSize(width, height),
	}
}

// Generate returns the URL of a freshly generated cover image, or an empty
// string when generation fails. Failures are logged, never returned.
func (g *CoverGenerator) Generate(ctx context.Context) string {
	if g == nil || g.client == nil {
		return ""
	}

	resp, err := g.client.GenerateImage(ctx, g.prompt, g.size)
	if err != nil {
		logger.Error("An error occurred generating the image", err)
		return ""
	}
	if len(resp.Data) == 0 {
		logger.Warn("Image API returned no images")
		return ""
	}

	image := resp.Data[0]
	switch {
	case image.URL != "":
		return image.URL
	case image.B64JSON != "":
		return fmt.Sprintf("data:image/png;base64,%s", image.B64JSON)
	default:
		logger.Warn("Image API returned neither a URL nor image data")
		return ""
	}
}
