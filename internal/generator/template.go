package generator

import (
	"context"
	"fmt"

	"github.com/omarluq/holicache/internal/content"
)

// TemplateConfidence ranks templated text below curated and manual text.
const TemplateConfidence = 0.3

var templates = map[string]string{
	"ko": "%s은(는) %s의 공휴일입니다.",
	"en": "%s is a public holiday in %s.",
	"ja": "%sは%sの祝日です。",
}

// Template writes a one-sentence description from the holiday and country
// names. Unknown locales fall back to English.
type Template struct{}

// Generate implements Generator.
func (Template) Generate(_ context.Context, key content.Key) (Result, error) {
	if key.Holiday == "" || key.Country.IsZero() {
		return Result{}, ErrNoContent
	}
	format, ok := templates[content.NormalizeLocale(key.Locale)]
	if !ok {
		format = templates["en"]
	}
	name := canonicalCountry(key.Country)
	return Result{Body: fmt.Sprintf(format, key.Holiday, name), Confidence: TemplateConfidence}, nil
}
