package i18n

import (
	"context"
	"strings"
)

// DefaultLang is used when nothing else selects a language.
const DefaultLang = "fr"

type ctxKey struct{}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext returns the request language, DefaultLang when unset.
func LangFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultLang
}

// Normalize lower-cases a locale tag and keeps only its primary subtag,
// so "EN-gb" becomes "en".
func Normalize(tag string) string {
	tag = strings.TrimSpace(strings.ToLower(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

// DetectLanguage picks the first language of an Accept-Language header that
// belongs to supported. With no supported list every language is accepted.
// It returns "" when nothing matches.
func DetectLanguage(acceptLanguage string, supported ...string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag, _, _ := strings.Cut(part, ";")
		lang := Normalize(tag)
		if lang == "" || lang == "*" {
			continue
		}
		if IsSupported(lang, supported) {
			return lang
		}
	}
	return ""
}

// IsSupported reports whether lang is in supported. An empty list supports
// every language.
func IsSupported(lang string, supported []string) bool {
	if len(supported) == 0 {
		return lang != ""
	}
	for _, s := range supported {
		if Normalize(s) == lang {
			return true
		}
	}
	return false
}
