package parsers

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	"github.com/skillsage/server/internal/agent/model"
	errx "github.com/skillsage/server/internal/core/error"
	logx "github.com/skillsage/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 32 * 1024 // 32KB
	maxEntities   = 10
	maxEntityLen  = 200
	maxErrSnippet = 200
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ParseIntent decodes a classifier reply into a validated Intent.
//
// A field that is absent is backfilled from model.DefaultIntent. A field that
// is present but malformed, or a reply that is not a JSON object, makes the
// whole result fall back to the default together with a non-nil error; a
// partially trusted intent is never returned.
func ParseIntent(content string) (intent model.Intent, err error) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "intent_parser").Msgf("panic recovered: %v", r)
			intent = model.DefaultIntent()
			err = errx.New(fmt.Errorf("intent parser panic"), http.StatusInternalServerError, errx.SystemErrorMessage)
		}
	}()

	if len(content) > maxContentLen {
		return model.DefaultIntent(), errx.Parse(fmt.Errorf("content exceeds %d bytes", maxContentLen))
	}
	if !utf8.ValidString(content) {
		return model.DefaultIntent(), errx.Parse(errors.New("content is not valid utf8"))
	}

	body := extractObject(StripCodeFence(content))
	if body == "" || !gjson.Valid(body) {
		return model.DefaultIntent(), errx.Parse(fmt.Errorf("not a json object: %q", snippet(content)))
	}
	root := gjson.Parse(body)
	if !root.IsObject() {
		return model.DefaultIntent(), errx.Parse(fmt.Errorf("not a json object: %q", snippet(content)))
	}

	intent = model.DefaultIntent()
	if v := root.Get("intent"); v.Exists() {
		kind, perr := parseKind(v)
		if perr != nil {
			return model.DefaultIntent(), errx.Parse(perr)
		}
		intent.Kind = kind
	}
	if v := root.Get("entities"); v.Exists() {
		entities, perr := parseStrings(v, "entities", maxEntities)
		if perr != nil {
			return model.DefaultIntent(), errx.Parse(perr)
		}
		intent.Entities = entities
	}
	if v := root.Get("search_strategy"); v.Exists() {
		strategy, perr := parseStrategy(v)
		if perr != nil {
			return model.DefaultIntent(), errx.Parse(perr)
		}
		intent.Strategy = strategy
	}
	if v := root.Get("context_needs"); v.Exists() {
		needs, perr := parseStrings(v, "context_needs", 0)
		if perr != nil {
			return model.DefaultIntent(), errx.Parse(perr)
		}
		if len(needs) > 0 {
			intent.ContextNeeds = needs
		}
	}

	if verr := getValidator().Struct(intent); verr != nil {
		return model.DefaultIntent(), errx.Parse(fmt.Errorf("intent validation: %w", verr))
	}
	return intent, nil
}

// StripCodeFence removes a surrounding ``` or ```json fence.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the info string ("json", "JSON", ...)
		if !strings.ContainsAny(s[:nl], "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractObject returns the outermost {...} span, tolerating prose around it.
func extractObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func parseKind(v gjson.Result) (model.IntentKind, error) {
	if v.Type != gjson.String {
		return "", fmt.Errorf("intent: expected string, got %s", v.Type)
	}
	kind := model.IntentKind(normaliseToken(v.Str))
	switch kind {
	case model.IntentSkillDiscovery, model.IntentResourceFinding, model.IntentCareerAdvice,
		model.IntentComparison, model.IntentTrendAnalysis, model.IntentGeneral:
		return kind, nil
	}
	return "", fmt.Errorf("intent: unknown kind %q", snippet(v.Str))
}

func parseStrategy(v gjson.Result) (model.SearchStrategy, error) {
	if v.Type != gjson.String {
		return "", fmt.Errorf("search_strategy: expected string, got %s", v.Type)
	}
	s := model.SearchStrategy(normaliseToken(v.Str))
	switch s {
	case model.StrategyBroad, model.StrategyTargeted, model.StrategyComparative:
		return s, nil
	}
	return "", fmt.Errorf("search_strategy: unknown value %q", snippet(v.Str))
}

// parseStrings reads an array of strings, trimming blanks and duplicates.
// limit <= 0 means unbounded.
func parseStrings(v gjson.Result, field string, limit int) ([]string, error) {
	if !v.IsArray() {
		return nil, fmt.Errorf("%s: expected array, got %s", field, v.Type)
	}
	out := []string{}
	for _, item := range v.Array() {
		if item.Type != gjson.String {
			return nil, fmt.Errorf("%s: expected string items, got %s", field, item.Type)
		}
		s := strings.TrimSpace(item.Str)
		if s == "" || slices.Contains(out, s) {
			continue
		}
		if utf8.RuneCountInString(s) > maxEntityLen {
			return nil, fmt.Errorf("%s: item too long", field)
		}
		out = append(out, s)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func normaliseToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func snippet(s string) string {
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet] + "..."
}
