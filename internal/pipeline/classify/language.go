// internal/pipeline/classify/language.go
package classify

import "unicode"

// Supported reply languages. Detection falls back to English.
const (
	LangEnglish = "en"
	LangTurkish = "tr"
	LangArabic  = "ar"
	LangRussian = "ru"
)

var turkishMarkers = map[rune]struct{}{
	'ğ': {}, 'Ğ': {}, 'ş': {}, 'Ş': {}, 'ı': {}, 'İ': {}, 'ç': {}, 'Ç': {}, 'ö': {}, 'Ö': {}, 'ü': {}, 'Ü': {},
}

// DetectLanguage picks the reply language. A declared language wins;
// otherwise the text's script decides, with Turkish spotted through its
// distinctive letters since it shares the Latin script with English.
func DetectLanguage(text, declared string) string {
	switch declared {
	case LangEnglish, LangTurkish, LangArabic, LangRussian:
		return declared
	}

	var arabic, cyrillic, turkish int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Arabic, r):
			arabic++
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		default:
			if _, ok := turkishMarkers[r]; ok {
				turkish++
			}
		}
	}

	switch {
	case arabic > 0 && arabic >= cyrillic:
		return LangArabic
	case cyrillic > 0:
		return LangRussian
	case turkish > 0:
		return LangTurkish
	default:
		return LangEnglish
	}
}
