package render

import "golang.org/x/text/language"

// DefaultLocale is served when negotiation finds no supported language.
const DefaultLocale = "en"

// Locales lists the supported page languages. The first entry is the fallback.
var Locales = []language.Tag{
	language.English,
	language.German,
	language.Dutch,
	language.French,
	language.Spanish,
	language.Italian,
}

var matcher = language.NewMatcher(Locales)

func localeCode(t language.Tag) string {
	base, _ := t.Base()
	return base.String()
}

// LocaleCodes returns the URL prefixes of all supported locales.
func LocaleCodes() []string {
	codes := make([]string, len(Locales))
	for i, t := range Locales {
		codes[i] = localeCode(t)
	}
	return codes
}

// Negotiate picks the best supported locale for an Accept-Language header.
func Negotiate(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLocale
	}
	return localeCode(Locales[idx])
}

// ParseLocale reports whether code is a supported URL locale.
func ParseLocale(code string) (language.Tag, bool) {
	for _, t := range Locales {
		if localeCode(t) == code {
			return t, true
		}
	}
	return language.Und, false
}
