// Package config builds the typed relay settings from the shared config and the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/go-playground/validator/v10"

	"github.com/UB-Mannheim/maidisco/library"
	"github.com/UB-Mannheim/maidisco/library/catalog"
	"github.com/UB-Mannheim/maidisco/library/catalog/primo"
	"github.com/UB-Mannheim/maidisco/library/catalog/vufind"
	"github.com/UB-Mannheim/maidisco/library/llm"
)

const (
	DefaultTranslateMaxTokens = 400
	DefaultSummaryMaxTokens   = 1200
	DefaultTranslateTimeout   = 60 * time.Second
	DefaultSummaryTimeout     = 30 * time.Second
)

// Source reads raw values by dotted key. *gconfig.Config satisfies it.
type Source interface {
	GetString(key string) string
}

// Env looks up one environment variable.
type Env func(key string) string

// Settings is the immutable configuration of one relay process.
type Settings struct {
	LLM     LLMSettings
	Catalog CatalogSettings
	Web     WebSettings
}

type LLMSettings struct {
	Provider           string        `validate:"oneof=openai anthropic"`
	APIKey             string        `validate:"required"`
	BaseURL            string        `validate:"omitempty,url"`
	Model              string        `validate:"required"`
	TranslateMaxTokens int           `validate:"gte=1"`
	SummaryMaxTokens   int           `validate:"gte=1"`
	TranslateTimeout   time.Duration `validate:"gt=0"`
	SummaryTimeout     time.Duration `validate:"gt=0"`
}

type CatalogSettings struct {
	Backend  catalog.Backend `validate:"oneof=primo vufind"`
	Endpoint string          `validate:"required,url"`
	Timeout  time.Duration   `validate:"gt=0"`
	MaxItems int             `validate:"gte=1"`
	Primo    PrimoSettings
}

// PrimoSettings are optional query parameters some Primo deployments require.
type PrimoSettings struct {
	APIKey      string
	Scope       string
	Tab         string
	VID         string
	QueryPrefix string
}

type WebSettings struct {
	AllowedOrigins []string
}

// LLMConfig converts the settings into a provider config.
func (s *Settings) LLMConfig() llm.Config {
	return llm.Config{
		Provider: s.LLM.Provider,
		APIKey:   s.LLM.APIKey,
		BaseURL:  s.LLM.BaseURL,
		Model:    s.LLM.Model,
	}
}

// LoadShared builds settings from gconfig.Shared and the process environment.
func LoadShared() (*Settings, error) {
	return Load(gconfig.Shared, os.Getenv)
}

// Load builds and validates settings. Config keys win over environment
// variables, which win over built-in defaults.
func Load(src Source, env Env) (*Settings, error) {
	if src == nil {
		return nil, errors.New("config source is nil")
	}
	if env == nil {
		env = func(string) string { return "" }
	}

	get := func(key string) string {
		return strings.TrimSpace(src.GetString(key))
	}
	getenv := func(key string) string {
		return strings.TrimSpace(env(key))
	}

	s := &Settings{}
	var errs []string

	// llm
	s.LLM.Provider = strings.ToLower(library.FirstNonEmpty(get("settings.llm.provider"), getenv("LLM_PROVIDER"), llm.ProviderOpenAI))
	switch s.LLM.Provider {
	case llm.ProviderAnthropic:
		s.LLM.APIKey = library.FirstNonEmpty(get("settings.llm.api_key"), getenv("ANTHROPIC_API_KEY"), getenv("OPENAI_API_KEY"))
		s.LLM.BaseURL = library.FirstNonEmpty(get("settings.llm.base_url"), getenv("ANTHROPIC_BASE_URL"))
		s.LLM.Model = library.FirstNonEmpty(get("settings.llm.model"), getenv("ANTHROPIC_MODEL"))
	default:
		s.LLM.APIKey = library.FirstNonEmpty(get("settings.llm.api_key"), getenv("OPENAI_API_KEY"))
		s.LLM.BaseURL = library.FirstNonEmpty(get("settings.llm.base_url"), getenv("OPENAI_API_URL"))
		s.LLM.Model = library.FirstNonEmpty(get("settings.llm.model"), getenv("OPENAI_MODEL"))
	}
	if s.LLM.Model == "" {
		s.LLM.Model = llm.DefaultModelFor(s.LLM.Provider)
	}
	s.LLM.TranslateMaxTokens = intOr(get("settings.llm.translate_max_tokens"), DefaultTranslateMaxTokens, "settings.llm.translate_max_tokens", &errs)
	s.LLM.SummaryMaxTokens = intOr(get("settings.llm.summary_max_tokens"), DefaultSummaryMaxTokens, "settings.llm.summary_max_tokens", &errs)
	s.LLM.TranslateTimeout = durationOr(get("settings.llm.translate_timeout"), DefaultTranslateTimeout, "settings.llm.translate_timeout", &errs)
	s.LLM.SummaryTimeout = durationOr(get("settings.llm.summary_timeout"), DefaultSummaryTimeout, "settings.llm.summary_timeout", &errs)

	// catalog
	backend, err := catalog.ParseBackend(library.FirstNonEmpty(get("settings.catalog.backend"), getenv("CATALOG_BACKEND")))
	if err != nil {
		errs = append(errs, err.Error())
	}
	s.Catalog.Backend = backend
	switch backend {
	case catalog.BackendVuFind:
		s.Catalog.Endpoint = library.FirstNonEmpty(get("settings.catalog.endpoint"), getenv("VUFIND_SEARCH_ENDPOINT"), vufind.DefaultEndpoint)
	default:
		s.Catalog.Endpoint = library.FirstNonEmpty(get("settings.catalog.endpoint"), getenv("PRIMO_SEARCH_ENDPOINT"), primo.DefaultEndpoint)
	}
	s.Catalog.Timeout = durationOr(get("settings.catalog.timeout"), catalog.DefaultTimeout, "settings.catalog.timeout", &errs)
	s.Catalog.MaxItems = intOr(get("settings.catalog.max_items"), catalog.DefaultMaxItems, "settings.catalog.max_items", &errs)
	s.Catalog.Primo = PrimoSettings{
		APIKey: library.FirstNonEmpty(get("settings.catalog.primo.apikey"), getenv("PRIMO_APIKEY")),
		Scope:  library.FirstNonEmpty(get("settings.catalog.primo.scope"), getenv("PRIMO_SCOPE")),
		Tab:    library.FirstNonEmpty(get("settings.catalog.primo.tab"), getenv("PRIMO_TAB")),
		VID:    library.FirstNonEmpty(get("settings.catalog.primo.vid"), getenv("PRIMO_VID")),
	}
	// "none" disables the prefix, anything else is sent verbatim
	switch raw := src.GetString("settings.catalog.primo.query_prefix"); {
	case strings.EqualFold(strings.TrimSpace(raw), "none"):
		s.Catalog.Primo.QueryPrefix = ""
	case raw != "":
		s.Catalog.Primo.QueryPrefix = raw
	default:
		s.Catalog.Primo.QueryPrefix = primo.DefaultQueryPrefix
	}

	// web
	for _, origin := range strings.Split(get("settings.web.allowed_origins"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			s.Web.AllowedOrigins = append(s.Web.AllowedOrigins, origin)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Errorf("invalid configuration:\n - %s", strings.Join(errs, "\n - "))
	}
	if err := Validate(s); err != nil {
		return nil, err
	}

	return s, nil
}

var validate = validator.New()

// Validate checks the struct constraints of s.
func Validate(s *Settings) error {
	if s == nil {
		return errors.New("settings is nil")
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate settings")
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.StructNamespace() == "Settings.LLM.APIKey" {
			msgs = append(msgs, "llm api key is required, set OPENAI_API_KEY (ANTHROPIC_API_KEY for anthropic) or settings.llm.api_key")
			continue
		}
		msgs = append(msgs, fe.StructNamespace()+" failed on "+fe.Tag())
	}
	return errors.Errorf("invalid configuration:\n - %s", strings.Join(msgs, "\n - "))
}

func intOr(raw string, def int, key string, errs *[]string) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, key+" must be an integer")
		return def
	}
	return v
}

// durationOr accepts Go duration strings or a bare number of seconds.
func durationOr(raw string, def time.Duration, key string, errs *[]string) time.Duration {
	if raw == "" {
		return def
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, key+" must be a duration like 15s")
		return def
	}
	return d
}
