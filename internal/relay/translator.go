package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	json5 "github.com/yosuke-furukawa/json5/encoding/json5"

	"github.com/UB-Mannheim/maidisco/library/catalog"
	"github.com/UB-Mannheim/maidisco/library/llm"
	"github.com/UB-Mannheim/maidisco/library/log"
)

const (
	translateTemperature      = 0
	defaultTranslateMaxTokens = 400
	defaultTranslateTimeout   = 60 * time.Second
)

const translateSystemPrompt = "You are an assistant that translates natural-language literature search requests " +
	"into structured %s search parameters. Output valid JSON only. " +
	"Fields: q (string, the core search expression), " +
	"filters (object with optional keys: year_from, year_to, language, material_type, subject, author, title)."

const translateUserPrompt = "Translate this user query into a %s search JSON:\nUser query:\n%s\n\nReturn only JSON."

var (
	leadingFence  = regexp.MustCompile("^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// Translator asks the LLM to turn free text into a TranslatedQuery.
type Translator struct {
	llm       llm.Completer
	backend   catalog.Backend
	maxTokens int
	timeout   time.Duration
	logger    logSDK.Logger
}

// TranslatorOption configures a Translator.
type TranslatorOption func(*Translator)

// WithTranslateMaxTokens caps the LLM output.
func WithTranslateMaxTokens(n int) TranslatorOption {
	return func(t *Translator) {
		if n > 0 {
			t.maxTokens = n
		}
	}
}

// WithTranslateTimeout bounds the LLM call.
func WithTranslateTimeout(d time.Duration) TranslatorOption {
	return func(t *Translator) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithTranslatorLogger overrides the logger used when the context has none.
func WithTranslatorLogger(logger logSDK.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTranslator creates a Translator for the given backend.
func NewTranslator(completer llm.Completer, backend catalog.Backend, opts ...TranslatorOption) (*Translator, error) {
	if completer == nil {
		return nil, errors.New("llm completer is required")
	}

	t := &Translator{
		llm:       completer,
		backend:   backend,
		maxTokens: defaultTranslateMaxTokens,
		timeout:   defaultTranslateTimeout,
		logger:    log.Logger.Named("translator"),
	}
	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Translate never fails: any LLM or parse error falls back to using text as the query.
func (t *Translator) Translate(ctx context.Context, text string) TranslatedQuery {
	logger := t.loggerFrom(ctx)

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	name := t.backend.DisplayName()
	raw, err := t.llm.Complete(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: fmt.Sprintf(translateSystemPrompt, name)},
			{Role: llm.RoleUser, Content: fmt.Sprintf(translateUserPrompt, name, text)},
		},
		Temperature: translateTemperature,
		MaxTokens:   t.maxTokens,
	})
	if err != nil {
		logger.Warn("translate query, fall back to raw text", zap.Error(err))
		return TranslatedQuery{Q: strings.TrimSpace(text)}
	}

	parsed, ok := ParseTranslation(raw, text)
	if !ok {
		logger.Debug("unparsable translation, fall back to raw text",
			zap.String("completion", raw))
	}
	return parsed
}

func (t *Translator) loggerFrom(ctx context.Context) logSDK.Logger {
	return log.FromContext(ctx, t.logger, "translator")
}

// ParseTranslation decodes an LLM completion. ok is false when the
// completion could not be used and the result wraps fallback instead.
func ParseTranslation(completion, fallback string) (q TranslatedQuery, ok bool) {
	body := StripCodeFences(completion)
	fallbackQuery := TranslatedQuery{Q: strings.TrimSpace(fallback)}
	if body == "" {
		return fallbackQuery, false
	}

	if err := json.Unmarshal([]byte(body), &q); err != nil {
		if q, err = parseLenient(body); err != nil {
			return fallbackQuery, false
		}
	}

	if strings.TrimSpace(q.Q) == "" {
		return fallbackQuery, false
	}
	q.Q = strings.TrimSpace(q.Q)
	return q, true
}

// parseLenient accepts JSON5 objects (single quotes, trailing commas, comments).
func parseLenient(body string) (q TranslatedQuery, err error) {
	if !strings.HasPrefix(body, "{") {
		return q, errors.New("not a json object")
	}

	// json5 panics on some malformed input
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("parse json5: %v", r)
		}
	}()

	var generic any
	if err = json5.Unmarshal([]byte(requoteSingle(body)), &generic); err != nil {
		return q, errors.Wrap(err, "parse json5")
	}

	normalized, err := json.Marshal(generic)
	if err != nil {
		return q, errors.Wrap(err, "marshal json5 value")
	}

	if err = json.Unmarshal(normalized, &q); err != nil {
		return TranslatedQuery{}, errors.Wrap(err, "decode translated query")
	}
	return q, nil
}

// requoteSingle rewrites single-quoted strings as double-quoted ones,
// which the json5 decoder does not accept.
func requoteSingle(body string) string {
	var (
		b        strings.Builder
		inDouble bool
		inSingle bool
		escaped  bool
	)
	b.Grow(len(body))

	for _, r := range body {
		switch {
		case escaped:
			escaped = false
			if inSingle && r == '\'' {
				b.WriteRune(r)
				continue
			}
			b.WriteRune('\\')
			b.WriteRune(r)
		case (inDouble || inSingle) && r == '\\':
			escaped = true
		case inDouble:
			if r == '"' {
				inDouble = false
			}
			b.WriteRune(r)
		case inSingle:
			switch r {
			case '\'':
				inSingle = false
				b.WriteRune('"')
			case '"':
				b.WriteString(`\"`)
			default:
				b.WriteRune(r)
			}
		case r == '"':
			inDouble = true
			b.WriteRune(r)
		case r == '\'':
			inSingle = true
			b.WriteRune('"')
		default:
			b.WriteRune(r)
		}
	}
	if escaped {
		b.WriteRune('\\')
	}
	return b.String()
}

// StripCodeFences removes a surrounding ```json ... ``` markdown fence.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = leadingFence.ReplaceAllString(text, "")
	text = trailingFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
