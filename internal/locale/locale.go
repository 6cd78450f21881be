// Package locale translates UI labels. Catalogs are embedded TOML files, one
// per language; English is the fallback for missing entries.
package locale

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"taskdeck/internal/model"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	LanguageEn = "en"
	LanguageFr = "fr"
)

//go:embed catalog/*.toml
var catalogs embed.FS

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle
	bundleErr  error
)

func loadBundle() (*i18n.Bundle, error) {
	bundleOnce.Do(func() {
		b := i18n.NewBundle(language.English)
		b.RegisterUnmarshalFunc("toml", toml.Unmarshal)
		ents, err := catalogs.ReadDir("catalog")
		if err != nil {
			bundleErr = err
			return
		}
		for _, e := range ents {
			p := path.Join("catalog", e.Name())
			buf, err := catalogs.ReadFile(p)
			if err != nil {
				bundleErr = err
				return
			}
			if _, err := b.ParseMessageFileBytes(buf, p); err != nil {
				bundleErr = fmt.Errorf("parse %s: %w", p, err)
				return
			}
		}
		bundle = b
	})
	return bundle, bundleErr
}

// Supported lists the languages that ship a catalog.
func Supported() []string { return []string{LanguageEn, LanguageFr} }

// Translator resolves message ids for one language.
type Translator struct {
	lang string
	loc  *i18n.Localizer
	log  *zap.Logger
}

// New returns a translator for lang. Unknown languages fall back to English.
func New(lang string) (*Translator, error) {
	b, err := loadBundle()
	if err != nil {
		return nil, err
	}
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		tag = language.English
	}
	base, _ := tag.Base()
	return &Translator{
		lang: base.String(),
		loc:  i18n.NewLocalizer(b, base.String(), LanguageEn),
		log:  zap.L().Named("locale"),
	}, nil
}

// MustNew is New for callers that cannot proceed without labels.
func MustNew(lang string) *Translator {
	t, err := New(lang)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Translator) Lang() string { return t.lang }

// T returns the message for id, or id itself when no catalog defines it.
func (t *Translator) T(id string) string { return t.Tf(id, nil) }

// Tf is T with template data for messages such as confirm_delete.
func (t *Translator) Tf(id string, data map[string]any) string {
	msg, err := t.loc.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		t.log.Warn("translation not found", zap.String("lang", t.lang), zap.String("message_id", id), zap.Error(err))
		return id
	}
	return msg
}

func (t *Translator) Status(s model.Status) string {
	return t.T("status_" + strings.ReplaceAll(string(s), "-", "_"))
}

func (t *Translator) Priority(p model.Priority) string {
	return t.T("priority_" + string(p))
}

func (t *Translator) Filter(f model.Filter) string {
	if f == model.FilterAll || f == "" {
		return t.T("filter_all")
	}
	return t.Status(model.Status(f))
}
