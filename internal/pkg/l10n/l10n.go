// Package l10n renders localized message templates from embedded catalogs.
package l10n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

// ErrMessageNotFound is returned when no catalog defines the message id.
var ErrMessageNotFound = errors.New("l10n: message not found")

// Catalog holds the loaded message bundle.
type Catalog struct {
	bundle   *i18n.Bundle
	fallback language.Tag
	tags     []language.Tag
}

// New loads the embedded catalogs. Unknown or empty languages fall back to fallback.
func New(fallback string) (*Catalog, error) {
	tag, err := language.Parse(strings.TrimSpace(fallback))
	if err != nil {
		tag = language.English
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	files, err := fs.Glob(locales, "locales/*.json")
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if _, err := bundle.LoadMessageFileFS(locales, file); err != nil {
			return nil, fmt.Errorf("l10n: load %s: %w", path.Base(file), err)
		}
	}

	return &Catalog{bundle: bundle, fallback: tag, tags: bundle.LanguageTags()}, nil
}

// Languages lists the loaded catalog languages.
func (c *Catalog) Languages() []language.Tag {
	return c.tags
}

// Message renders the message id in lang with positional args, available to
// templates as .Args.
func (c *Catalog) Message(lang, id string, args ...string) (string, error) {
	localizer := i18n.NewLocalizer(c.bundle, lang, c.fallback.String())

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: map[string]any{"Args": args},
	})
	if err != nil {
		var notFound *i18n.MessageNotFoundErr
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: %s", ErrMessageNotFound, id)
		}
		return "", err
	}

	return msg, nil
}
