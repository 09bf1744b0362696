package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"openai", "openrouter", "gemini"}, cfg.ProviderOrder)
	require.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	require.Equal(t, "sk-test", cfg.Credential(ProviderOpenAI))
	require.Equal(t, "https://gohypemedia.com", cfg.SiteURL)
}

func TestLoad_CustomOrder(t *testing.T) {
	t.Setenv("PROVIDER_ORDER", " Gemini ,openai")
	t.Setenv("PARAM_PREFIX", "/site-assistant/")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"gemini", "openai"}, cfg.ProviderOrder)
	require.Equal(t, "/site-assistant", cfg.ParamPrefix)

	p, ok := cfg.Priority(ProviderGemini)
	require.True(t, ok)
	require.Equal(t, 0, p)
	_, ok = cfg.Priority(ProviderOpenRouter)
	require.False(t, ok)
}

func TestLoad_RejectsBadOrder(t *testing.T) {
	t.Setenv("PROVIDER_ORDER", "openai,claude")
	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown provider "claude"`)

	t.Setenv("PROVIDER_ORDER", "openai,OpenAI")
	_, err = Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "listed twice")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("PROVIDER_TIMEOUT", "soon")
	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "config: parse environment")
}

type mapGetter map[string]string

func (m mapGetter) GetParameter(_ context.Context, name string) (string, error) {
	v, ok := m[name]
	if !ok {
		return "", errors.New("parameter not found")
	}
	return v, nil
}

func TestResolveCredentials(t *testing.T) {
	cfg := &Config{
		OpenAIAPIKey:  "from-env",
		ProviderOrder: []string{ProviderOpenAI, ProviderOpenRouter, ProviderGemini},
		ParamPrefix:   "/site",
	}
	getter := mapGetter{
		"/site/openai-token":     `{"token":"from-ssm"}`,
		"/site/openrouter-token": `{"token":"or-key"}`,
	}

	cfg.ResolveCredentials(context.Background(), getter)
	require.Equal(t, "from-env", cfg.OpenAIAPIKey)
	require.Equal(t, "or-key", cfg.OpenRouterAPIKey)
	require.Empty(t, cfg.GoogleAPIKey)
}

func TestResolveCredentials_NoPrefixIsNoop(t *testing.T) {
	cfg := &Config{ProviderOrder: []string{ProviderGemini}}
	cfg.ResolveCredentials(context.Background(), mapGetter{"/gemini-token": `{"token":"x"}`})
	require.Empty(t, cfg.GoogleAPIKey)
}

func TestTokenParameterName(t *testing.T) {
	cfg := &Config{ParamPrefix: "/site"}
	require.Equal(t, "/site/gemini-token", cfg.TokenParameterName(ProviderGemini))
}
