// Package i18n holds the office's message catalogues. Keys are dotted
// paths into the embedded id.json and en.json ("proyek.not_found"); values
// may carry {name} placeholders.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"
)

//go:embed *.json
var files embed.FS

// DefaultLang is the office language and the fallback for missing keys
const DefaultLang = "id"

type contextKey string

// LocaleContextKey stores the request language in a context.Context
const LocaleContextKey contextKey = "locale"

type catalogue map[string]string

var (
	translations map[string]catalogue
	loadOnce     sync.Once
	loadErr      error
)

// Load reads the embedded catalogues once. Translate calls it lazily, so
// an explicit call only matters for failing fast at startup.
func Load() error {
	loadOnce.Do(func() {
		translations, loadErr = readCatalogues()
	})
	return loadErr
}

func readCatalogues() (map[string]catalogue, error) {
	names, err := fs.Glob(files, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list catalogues: %w", err)
	}
	out := make(map[string]catalogue, len(names))
	for _, name := range names {
		raw, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalogue %s: %w", name, err)
		}
		var nested map[string]interface{}
		if err := json.Unmarshal(raw, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse catalogue %s: %w", name, err)
		}
		cat := make(catalogue)
		flatten("", nested, cat)
		lang := strings.TrimSuffix(name, path.Ext(name))
		out[lang] = cat
		zap.L().Debug("catalogue loaded", zap.String("lang", lang), zap.Int("keys", len(cat)))
	}
	return out, nil
}

// flatten turns nested JSON objects into dotted keys
func flatten(prefix string, nested map[string]interface{}, out catalogue) {
	for k, v := range nested {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch child := v.(type) {
		case map[string]interface{}:
			flatten(key, child, out)
		case string:
			out[key] = child
		default:
			out[key] = fmt.Sprint(child)
		}
	}
}

// T translates key into the request language
func T(ctx context.Context, key string, args ...map[string]interface{}) string {
	return Translate(GetLocale(ctx), key, args...)
}

// Translate looks key up in lang, then in DefaultLang. An unknown key is
// returned as is so a missing entry shows up on the page.
func Translate(lang, key string, args ...map[string]interface{}) string {
	if err := Load(); err != nil {
		return key
	}
	for _, l := range []string{lang, DefaultLang} {
		if text, ok := translations[l][key]; ok {
			return format(text, args...)
		}
	}
	return key
}

// format fills {name} placeholders from the first args map
func format(text string, args ...map[string]interface{}) string {
	if len(args) == 0 || len(args[0]) == 0 {
		return text
	}
	pairs := make([]string, 0, 2*len(args[0]))
	for k, v := range args[0] {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Supported reports whether lang has a catalogue
func Supported(lang string) bool {
	if err := Load(); err != nil {
		return lang == DefaultLang
	}
	_, ok := translations[lang]
	return ok
}

// WithLocale returns a copy of ctx carrying lang
func WithLocale(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, LocaleContextKey, lang)
}

// GetLocale returns the language stored by the locale middleware, or
// DefaultLang
func GetLocale(ctx context.Context) string {
	if lang, ok := ctx.Value(LocaleContextKey).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}
