// Package i18n localizes exam names and CLI output. Messages live in the
// embedded locales directory, one JSON file per language.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/pavelanni/kokushi/internal/model"
)

//go:embed locales/*.json
var localeFS embed.FS

const localeDir = "locales"

type ctxKey struct{}

var bundle *i18n.Bundle

// Init builds the message bundle with lang as the fallback language.
func Init(lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}

	b := i18n.NewBundle(tag)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)
	if err := loadLocales(b); err != nil {
		return err
	}
	bundle = b
	return nil
}

func loadLocales(b *i18n.Bundle) error {
	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		return fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := path.Join(localeDir, e.Name())
		data, err := localeFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := b.ParseMessageFileBytes(data, e.Name()); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		slog.Debug("loaded locale", "file", e.Name())
	}
	return nil
}

// NewLocalizer returns a localizer preferring lang.
func NewLocalizer(lang string) *i18n.Localizer {
	return i18n.NewLocalizer(bundle, lang)
}

// WithLocalizer attaches loc to ctx.
func WithLocalizer(ctx context.Context, loc *i18n.Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, loc)
}

// localize resolves cfg with the context's localizer, English when there is
// none. The message ID comes back when the bundle is not loaded or the
// message is missing.
func localize(ctx context.Context, cfg *i18n.LocalizeConfig) string {
	if bundle == nil {
		return cfg.MessageID
	}
	loc, _ := ctx.Value(ctxKey{}).(*i18n.Localizer)
	if loc == nil {
		loc = i18n.NewLocalizer(bundle, "en")
	}
	s, err := loc.Localize(cfg)
	if err != nil {
		slog.Warn("missing translation", "id", cfg.MessageID, "error", err)
		return cfg.MessageID
	}
	return s
}

func T(ctx context.Context, msgID string) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: msgID})
}

// Td fills the message template with data.
func Td(ctx context.Context, msgID string, data map[string]any) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: msgID, TemplateData: data})
}

// Tp picks the plural form for count; templates see it as .Count.
func Tp(ctx context.Context, msgID string, count int) string {
	return localize(ctx, &i18n.LocalizeConfig{
		MessageID:    msgID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

// ExamName is the display name of t, or t itself when no translation exists.
func ExamName(ctx context.Context, t model.ExamType) string {
	id := "exam_" + string(t)
	if name := T(ctx, id); name != id {
		return name
	}
	return string(t)
}
