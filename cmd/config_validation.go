package cmd

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
)

// configGetter retrieves raw configuration values by dotted key path.
type configGetter func(key string) any

// validateStartupConfig validates startup configuration from the shared config source.
// It returns an error when any configured value is malformed or violates constraints.
func validateStartupConfig() error {
	return validateStartupConfigWithGetter(func(key string) any {
		return gconfig.S.Get(key)
	})
}

// validateStartupConfigWithGetter validates startup configuration via a key-value getter.
// It accepts a value getter and returns nil when all configured values are valid.
func validateStartupConfigWithGetter(get configGetter) error {
	if get == nil {
		return errors.New("config getter is nil")
	}

	validationErrs := make([]string, 0)

	validateLLMConfig(get, &validationErrs)
	validateCatalogConfig(get, &validationErrs)
	validateWebConfig(get, &validationErrs)

	if len(validationErrs) == 0 {
		return nil
	}

	return errors.Errorf("invalid configuration:\n - %s", strings.Join(validationErrs, "\n - "))
}

// validateLLMConfig validates the provider, credentials and call budgets of the LLM.
func validateLLMConfig(get configGetter, errs *[]string) {
	validateOptionalOneOf(get, "settings.llm.provider", []string{"openai", "anthropic"}, errs)
	validateOptionalStringNonEmpty(get, "settings.llm.api_key", errs)
	validateOptionalStringNonEmpty(get, "settings.llm.model", errs)
	validateOptionalURL(get, "settings.llm.base_url", errs)
	validateOptionalIntMin(get, "settings.llm.translate_max_tokens", 1, errs)
	validateOptionalIntMin(get, "settings.llm.summary_max_tokens", 1, errs)
	validateOptionalDuration(get, "settings.llm.translate_timeout", errs)
	validateOptionalDuration(get, "settings.llm.summary_timeout", errs)
}

// validateCatalogConfig validates the discovery backend settings.
func validateCatalogConfig(get configGetter, errs *[]string) {
	validateOptionalOneOf(get, "settings.catalog.backend", []string{"primo", "vufind"}, errs)
	validateOptionalURL(get, "settings.catalog.endpoint", errs)
	validateOptionalDuration(get, "settings.catalog.timeout", errs)
	validateOptionalIntMin(get, "settings.catalog.max_items", 1, errs)

	for _, key := range []string{
		"settings.catalog.primo.apikey",
		"settings.catalog.primo.scope",
		"settings.catalog.primo.tab",
		"settings.catalog.primo.vid",
	} {
		validateOptionalStringNonEmpty(get, key, errs)
	}

	// an empty prefix is legal, only the type matters
	if raw := get("settings.catalog.primo.query_prefix"); raw != nil {
		if _, err := parseStrictString(raw); err != nil {
			appendValidationError(errs, "settings.catalog.primo.query_prefix must be a string")
		}
	}
}

// validateWebConfig validates the CORS origin list.
func validateWebConfig(get configGetter, errs *[]string) {
	raw := get("settings.web.allowed_origins")
	if raw == nil {
		return
	}

	value, err := parseStrictString(raw)
	if err != nil {
		appendValidationError(errs, "settings.web.allowed_origins must be a comma separated string")
		return
	}

	for _, origin := range strings.Split(value, ",") {
		origin = strings.TrimSpace(origin)
		switch {
		case origin == "", origin == "*":
		case strings.Contains(origin, "://"):
			parsed, err := url.Parse(origin)
			if err != nil || parsed.Host == "" {
				appendValidationError(errs, "settings.web.allowed_origins contains invalid origin %q", origin)
			}
		case !isValidHost(strings.TrimPrefix(origin, ".")):
			appendValidationError(errs, "settings.web.allowed_origins contains invalid origin %q", origin)
		}
	}
}

// validateOptionalIntMin validates an optionally configured integer key with a minimum constraint.
// It accepts a getter, the key, a minimum value, and an error collector pointer and appends validation errors.
func validateOptionalIntMin(get configGetter, key string, min int, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictInt(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be an integer", key)
		return
	}

	if value < min {
		appendValidationError(errs, "%s must be >= %d", key, min)
	}
}

// validateOptionalDuration validates an optional timeout given as "15s" or a bare number of seconds.
func validateOptionalDuration(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictDuration(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a duration like 15s", key)
		return
	}

	if value <= 0 {
		appendValidationError(errs, "%s must be > 0", key)
	}
}

// validateOptionalOneOf validates an optional string key against a fixed set, case-insensitively.
func validateOptionalOneOf(get configGetter, key string, allowed []string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string", key)
		return
	}

	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range allowed {
		if value == candidate {
			return
		}
	}
	appendValidationError(errs, "%s must be one of %s", key, strings.Join(allowed, ", "))
}

// validateOptionalURL validates an optionally configured absolute URL key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalURL(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string URL", key)
		return
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		appendValidationError(errs, "%s must not be empty", key)
		return
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		appendValidationError(errs, "%s must be a valid absolute URL", key)
	}
}

// validateOptionalStringNonEmpty validates an optionally configured non-empty string key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalStringNonEmpty(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string", key)
		return
	}

	if strings.TrimSpace(value) == "" {
		appendValidationError(errs, "%s must not be empty", key)
	}
}

// parseStrictInt parses a value as a strict integer.
// It accepts a raw value and returns the parsed int and an error when parsing fails.
func parseStrictInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if math.Trunc(v) != v {
			return 0, errors.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, errors.New("empty integer string")
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, errors.Wrap(err, "atoi")
		}
		return parsed, nil
	default:
		return 0, errors.Errorf("unsupported int type %T", value)
	}
}

// parseStrictDuration accepts numbers as seconds and strings in time.ParseDuration form.
func parseStrictDuration(value any) (time.Duration, error) {
	switch v := value.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case time.Duration:
		return v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, errors.New("empty duration string")
		}
		if secs, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		parsed, err := time.ParseDuration(trimmed)
		if err != nil {
			return 0, errors.Wrap(err, "parse duration")
		}
		return parsed, nil
	default:
		return 0, errors.Errorf("unsupported duration type %T", value)
	}
}

// parseStrictString parses a value as a strict string.
// It accepts a raw value and returns the parsed string and an error when parsing fails.
func parseStrictString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", errors.Errorf("unsupported string type %T", value)
	}
}

// isValidHost validates a host string without scheme or path components.
// It accepts a host string and returns true when the host is syntactically acceptable.
func isValidHost(host string) bool {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		return false
	}
	if strings.Contains(trimmed, "://") || strings.Contains(trimmed, "/") {
		return false
	}
	return true
}

// appendValidationError appends a formatted validation error to the collector.
// It accepts an error slice pointer, a format string, and format arguments, and has no return value.
func appendValidationError(errs *[]string, format string, args ...any) {
	if errs == nil {
		return
	}
	*errs = append(*errs, fmt.Sprintf(format, args...))
}
