package prompt

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
)

// DefaultLanguage is used when the requested code is empty or unsupported.
const DefaultLanguage = "es"

var documentTitles = map[string]string{
	"es": "Resumen de la reunión",
	"en": "Meeting summary",
	"pt": "Resumo da reunião",
	"fr": "Résumé de la réunion",
	"de": "Zusammenfassung der Besprechung",
	"it": "Riepilogo della riunione",
}

// ResolveLanguage returns a supported language code, falling back to DefaultLanguage.
func ResolveLanguage(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}
	base, _ := tag.Base()
	if !config.IsSupportedLanguage(base.String()) {
		return DefaultLanguage
	}
	return base.String()
}

// LanguageName returns the native, human-readable name of a supported code,
// e.g. "español" for "es".
func LanguageName(code string) string {
	tag := language.Make(ResolveLanguage(code))
	return display.Self.Name(tag)
}

// DocumentTitle returns the fixed document header title for a language.
func DocumentTitle(code string) string {
	return documentTitles[ResolveLanguage(code)]
}
