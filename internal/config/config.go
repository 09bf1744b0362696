package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"site-assistant/internal/integrations/paramstore"
	"site-assistant/pkg/log"
)

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// Config is read once at process start and passed down explicitly.
type Config struct {
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	GoogleAPIKey     string `env:"GOOGLE_API_KEY"`

	ProviderOrder   []string      `env:"PROVIDER_ORDER" envDefault:"openai,openrouter,gemini" envSeparator:","`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`

	// ParamPrefix enables SSM lookup of credentials missing from the environment.
	ParamPrefix string `env:"PARAM_PREFIX"`

	SiteKnowledgePath string `env:"SITE_KNOWLEDGE_PATH"`
	SiteURL           string `env:"SITE_URL" envDefault:"https://gohypemedia.com"`

	LeadsTable   string   `env:"LEADS_TABLE"`
	ResendAPIKey string   `env:"RESEND_API_KEY"`
	ContactFrom  string   `env:"CONTACT_FROM" envDefault:"Site Inquiry <onboarding@resend.dev>"`
	ContactTo    []string `env:"CONTACT_TO" envDefault:"leads@gohypemedia.com" envSeparator:","`

	Debug bool `env:"DEBUG" envDefault:"false"`
}

// Load parses the environment and validates the provider order.
func Load() (*Config, error) {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	order, err := normalizeOrder(c.ProviderOrder)
	if err != nil {
		return nil, err
	}
	c.ProviderOrder = order
	c.ParamPrefix = strings.TrimRight(strings.TrimSpace(c.ParamPrefix), "/")
	return c, nil
}

func normalizeOrder(names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		switch n {
		case ProviderOpenAI, ProviderOpenRouter, ProviderGemini:
		default:
			return nil, fmt.Errorf("config: unknown provider %q in PROVIDER_ORDER", n)
		}
		if seen[n] {
			return nil, fmt.Errorf("config: provider %q listed twice in PROVIDER_ORDER", n)
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}

// Priority returns the chain position of a provider, or false when it is not
// part of the chain.
func (c *Config) Priority(provider string) (int, bool) {
	for i, n := range c.ProviderOrder {
		if n == provider {
			return i, true
		}
	}
	return 0, false
}

// Credential returns the configured credential for a provider.
func (c *Config) Credential(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderOpenRouter:
		return c.OpenRouterAPIKey
	case ProviderGemini:
		return c.GoogleAPIKey
	default:
		return ""
	}
}

func (c *Config) setCredential(provider, value string) {
	switch provider {
	case ProviderOpenAI:
		c.OpenAIAPIKey = value
	case ProviderOpenRouter:
		c.OpenRouterAPIKey = value
	case ProviderGemini:
		c.GoogleAPIKey = value
	}
}

// TokenParameterName is the SSM parameter holding a provider's token.
func (c *Config) TokenParameterName(provider string) string {
	return c.ParamPrefix + "/" + provider + "-token"
}

// ResolveCredentials fills credentials missing from the environment from
// Parameter Store. A parameter that cannot be read leaves the provider
// unconfigured; it is not an error.
func (c *Config) ResolveCredentials(ctx context.Context, getter paramstore.Getter) {
	if c.ParamPrefix == "" || getter == nil {
		return
	}
	logger := log.FromCtx(ctx)
	for _, provider := range c.ProviderOrder {
		if strings.TrimSpace(c.Credential(provider)) != "" {
			continue
		}
		token, err := paramstore.GetToken(ctx, getter, c.TokenParameterName(provider))
		if err != nil {
			logger.Info().Str("provider", provider).Err(err).Msg("provider credential not found, provider disabled")
			continue
		}
		c.setCredential(provider, token)
	}
}
