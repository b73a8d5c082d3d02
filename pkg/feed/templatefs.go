package feed

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/ricomanifesto/sentrydigest/templates"
)

var (
	// templateOverrideFS points at the developer-provided filesystem (usually the local templates directory).
	templateOverrideFS fs.FS = os.DirFS("templates")
	// templateFallbackFS is the embedded filesystem baked into the binary.
	templateFallbackFS fs.FS = templates.EmbeddedTemplates
)

// SetTemplateOverrideFS switches the primary filesystem used when loading templates.
func SetTemplateOverrideFS(f fs.FS) {
	templateOverrideFS = f
}

// SetTemplateFallbackFS overrides the embedded filesystem used when no override file is available.
func SetTemplateFallbackFS(f fs.FS) {
	templateFallbackFS = f
}

func getTemplateOverrideFS() fs.FS {
	return templateOverrideFS
}

func getTemplateFallbackFS() fs.FS {
	return templateFallbackFS
}

// readTemplate returns the named template from the override filesystem,
// falling back to the embedded copy.
func readTemplate(name string) ([]byte, error) {
	if override := getTemplateOverrideFS(); override != nil {
		content, err := fs.ReadFile(override, name)
		if err == nil {
			slog.Debug("Using template override", "name", name)
			return content, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read template override %s: %w", name, err)
		}
	}

	content, err := fs.ReadFile(getTemplateFallbackFS(), name)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded template %s: %w", name, err)
	}
	return content, nil
}
