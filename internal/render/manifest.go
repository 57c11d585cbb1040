package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"riskdigest/internal/core"

	"gopkg.in/yaml.v3"
)

// WriteManifest writes the digest as YAML next to the document so a run can be
// inspected without opening Word. Inline data: image URLs are left out.
func WriteManifest(digest *core.Digest, path string) (string, error) {
	manifest := *digest
	if strings.HasPrefix(manifest.ImageURL, "data:") {
		manifest.ImageURL = ""
	}

	content, err := yaml.Marshal(&manifest)
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest file %s: %w", path, err)
	}

	return path, nil
}
