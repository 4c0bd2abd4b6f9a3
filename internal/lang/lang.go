// Package lang translates the ISO-639 3-letter language codes carried by
// broadcast streams into the 2-letter locale tags metadata services expect.
package lang

// Broadcast language codes may carry a region suffix (eng_GB). The table is
// exact-match; anything not listed falls back to plain English.
var locales = map[string]string{
	"eng":    "en-US",
	"eng_GB": "en-GB",
	"eng_US": "en-US",
	"fre":    "fr",
	"fra":    "fr",
	"ger":    "de",
	"deu":    "de",
	"spa":    "es",
	"ita":    "it",
	"jpn":    "ja",
	"kor":    "ko",
	"chi":    "zh",
	"zho":    "zh",
	"chi_CN": "zh-Hans",
	"chi_TW": "zh-Hant",
	"por":    "pt",
	"por_BR": "pt-BR",
	"rus":    "ru",
	"dut":    "nl",
	"nld":    "nl",
	"swe":    "sv",
	"nor":    "no",
	"dan":    "da",
	"fin":    "fi",
	"pol":    "pl",
	"cze":    "cs",
	"ces":    "cs",
	"hun":    "hu",
	"gre":    "el",
	"ell":    "el",
	"tur":    "tr",
	"ara":    "ar",
	"heb":    "he",
	"hin":    "hi",
	"tha":    "th",
	"vie":    "vi",
	"ukr":    "uk",
	"ron":    "ro",
	"rum":    "ro",
	"bul":    "bg",
	"hrv":    "hr",
	"srp":    "sr",
	"slk":    "sk",
	"slo":    "sk",
	"slv":    "sl",
}

const defaultLocale = "en"

// ToLocale maps a 3-letter broadcast language code to a 2-letter locale tag.
// Unknown codes return the English default; it never fails.
func ToLocale(code3 string) string {
	if locale, ok := locales[code3]; ok {
		return locale
	}
	return defaultLocale
}
