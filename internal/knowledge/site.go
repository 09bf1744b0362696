package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"site-assistant/internal/domain"
)

//go:embed site.yaml
var embeddedSite []byte

// Load reads site knowledge from path, or from the embedded document when path
// is empty.
func Load(path string) (domain.SiteKnowledge, error) {
	raw := embeddedSite
	if path = strings.TrimSpace(path); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return domain.SiteKnowledge{}, fmt.Errorf("knowledge: read %q: %w", path, err)
		}
		raw = b
	}
	return Parse(raw)
}

// Parse decodes a YAML site knowledge document.
func Parse(raw []byte) (domain.SiteKnowledge, error) {
	var site domain.SiteKnowledge
	if err := yaml.Unmarshal(raw, &site); err != nil {
		return domain.SiteKnowledge{}, fmt.Errorf("knowledge: decode site document: %w", err)
	}
	if strings.TrimSpace(site.SiteName) == "" {
		return domain.SiteKnowledge{}, errors.New("knowledge: site name must not be empty")
	}
	return site, nil
}
