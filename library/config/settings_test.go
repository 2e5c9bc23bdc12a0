package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/UB-Mannheim/maidisco/library/catalog"
	"github.com/UB-Mannheim/maidisco/library/catalog/primo"
	"github.com/UB-Mannheim/maidisco/library/catalog/vufind"
	"github.com/UB-Mannheim/maidisco/library/llm"
)

type mapSource map[string]string

func (m mapSource) GetString(key string) string { return m[key] }

func envOf(vals map[string]string) Env {
	return func(key string) string { return vals[key] }
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	s, err := Load(mapSource{}, envOf(map[string]string{"OPENAI_API_KEY": "sk-test"}))
	require.NoError(t, err)

	require.Equal(t, "openai", s.LLM.Provider)
	require.Equal(t, "sk-test", s.LLM.APIKey)
	require.Empty(t, s.LLM.BaseURL)
	require.Equal(t, "gpt-4", s.LLM.Model)
	require.Equal(t, DefaultTranslateMaxTokens, s.LLM.TranslateMaxTokens)
	require.Equal(t, DefaultSummaryMaxTokens, s.LLM.SummaryMaxTokens)
	require.Equal(t, 60*time.Second, s.LLM.TranslateTimeout)
	require.Equal(t, 30*time.Second, s.LLM.SummaryTimeout)

	require.Equal(t, catalog.BackendPrimo, s.Catalog.Backend)
	require.Equal(t, primo.DefaultEndpoint, s.Catalog.Endpoint)
	require.Equal(t, 15*time.Second, s.Catalog.Timeout)
	require.Equal(t, 10, s.Catalog.MaxItems)
	require.Equal(t, primo.DefaultQueryPrefix, s.Catalog.Primo.QueryPrefix)
	require.Empty(t, s.Web.AllowedOrigins)
}

func TestLoadMissingAPIKeyIsFatal(t *testing.T) {
	t.Parallel()

	_, err := Load(mapSource{}, envOf(nil))
	require.ErrorContains(t, err, "api key is required")
}

func TestLoadEnvironment(t *testing.T) {
	t.Parallel()

	s, err := Load(mapSource{}, envOf(map[string]string{
		"OPENAI_API_KEY":         "sk-env",
		"OPENAI_API_URL":         "https://llm.example.org/v1",
		"OPENAI_MODEL":           "gpt-4o-mini",
		"CATALOG_BACKEND":        "VuFind",
		"VUFIND_SEARCH_ENDPOINT": "https://vufind.example.org/api/v1/search",
		"PRIMO_SEARCH_ENDPOINT":  "https://primo.example.org/search",
		"PRIMO_VID":              "49MAN_INST:MAIN",
	}))
	require.NoError(t, err)

	require.Equal(t, "https://llm.example.org/v1", s.LLM.BaseURL)
	require.Equal(t, "gpt-4o-mini", s.LLM.Model)
	require.Equal(t, catalog.BackendVuFind, s.Catalog.Backend)
	require.Equal(t, "https://vufind.example.org/api/v1/search", s.Catalog.Endpoint)
	require.Equal(t, "49MAN_INST:MAIN", s.Catalog.Primo.VID)
}

func TestLoadAnthropicDefaults(t *testing.T) {
	t.Parallel()

	s, err := Load(mapSource{}, envOf(map[string]string{
		"OPENAI_API_KEY": "sk-openai",
		"OPENAI_MODEL":   "gpt-4o-mini",
		"LLM_PROVIDER":   "anthropic",
	}))
	require.NoError(t, err)
	require.Equal(t, "anthropic", s.LLM.Provider)
	require.Equal(t, llm.DefaultAnthropicModel, s.LLM.Model)
	require.Equal(t, "sk-openai", s.LLM.APIKey)

	s, err = Load(mapSource{}, envOf(map[string]string{
		"OPENAI_API_KEY":    "sk-openai",
		"ANTHROPIC_API_KEY": "sk-ant",
		"ANTHROPIC_MODEL":   "claude-sonnet-4-5",
		"LLM_PROVIDER":      "Anthropic",
	}))
	require.NoError(t, err)
	require.Equal(t, "claude-sonnet-4-5", s.LLM.Model)
	require.Equal(t, "sk-ant", s.LLM.APIKey)
}

func TestLoadConfigWinsOverEnvironment(t *testing.T) {
	t.Parallel()

	s, err := Load(mapSource{
		"settings.llm.api_key":                "sk-config",
		"settings.llm.provider":               "Anthropic",
		"settings.llm.model":                  "claude-test",
		"settings.llm.summary_max_tokens":     "800",
		"settings.llm.translate_timeout":      "5s",
		"settings.catalog.backend":            "vufind",
		"settings.catalog.timeout":            "3",
		"settings.catalog.max_items":          "5",
		"settings.catalog.primo.query_prefix": "none",
		"settings.web.allowed_origins":        "https://a.example.org, ,https://b.example.org",
	}, envOf(map[string]string{
		"OPENAI_API_KEY":  "sk-env",
		"CATALOG_BACKEND": "primo",
	}))
	require.NoError(t, err)

	require.Equal(t, "sk-config", s.LLM.APIKey)
	require.Equal(t, "anthropic", s.LLM.Provider)
	require.Equal(t, 800, s.LLM.SummaryMaxTokens)
	require.Equal(t, 5*time.Second, s.LLM.TranslateTimeout)
	require.Equal(t, catalog.BackendVuFind, s.Catalog.Backend)
	require.Equal(t, vufind.DefaultEndpoint, s.Catalog.Endpoint)
	require.Equal(t, 3*time.Second, s.Catalog.Timeout)
	require.Equal(t, 5, s.Catalog.MaxItems)
	require.Empty(t, s.Catalog.Primo.QueryPrefix)
	require.Equal(t, []string{"https://a.example.org", "https://b.example.org"}, s.Web.AllowedOrigins)

	cfg := s.LLMConfig()
	require.Equal(t, "anthropic", cfg.Provider)
	require.Equal(t, "claude-test", cfg.Model)
}

func TestLoadInvalidValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		src  mapSource
		want string
	}{
		{name: "backend", src: mapSource{"settings.catalog.backend": "summon"}, want: "unsupported catalog backend"},
		{name: "max items", src: mapSource{"settings.catalog.max_items": "ten"}, want: "settings.catalog.max_items must be an integer"},
		{name: "timeout", src: mapSource{"settings.catalog.timeout": "soon"}, want: "settings.catalog.timeout must be a duration"},
		{name: "zero max items", src: mapSource{"settings.catalog.max_items": "0"}, want: "MaxItems"},
		{name: "provider", src: mapSource{"settings.llm.provider": "gemini"}, want: "Provider"},
		{name: "endpoint", src: mapSource{"settings.catalog.endpoint": "not a url"}, want: "Endpoint"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.src, envOf(map[string]string{"OPENAI_API_KEY": "sk-test"}))
			require.ErrorContains(t, err, tc.want)
		})
	}
}

func TestLoadNilSource(t *testing.T) {
	t.Parallel()

	_, err := Load(nil, nil)
	require.Error(t, err)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	require.NotPanics(t, func() {
		LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
	})
}

func TestLoadDotEnvKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MAIDISCO_TEST_A=from-file\nMAIDISCO_TEST_B=from-file\n"), 0o600))

	t.Setenv("MAIDISCO_TEST_A", "from-env")
	LoadDotEnv(path)
	t.Cleanup(func() { _ = os.Unsetenv("MAIDISCO_TEST_B") })

	require.Equal(t, "from-env", os.Getenv("MAIDISCO_TEST_A"))
	require.Equal(t, "from-file", os.Getenv("MAIDISCO_TEST_B"))
}

func TestLoadFromFileMissing(t *testing.T) {
	require.NotPanics(t, func() {
		LoadFromFile("")
		LoadFromFile(filepath.Join(t.TempDir(), "settings.yml"))
	})
}
