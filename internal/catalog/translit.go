package catalog

import (
	"strings"
	"unicode"
)

// cyrillicToLatin follows the common reversed transliteration scheme for
// Russian (zh, kh, ts, ch, sh, shch; hard and soft signs elided).
var cyrillicToLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ё': "yo", 'ж': "zh", 'з': "z", 'и': "i",
	'й': "j", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
	'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "shch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
}

// ContainsCyrillic reports whether any rune of s is in the Cyrillic script.
func ContainsCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

// Transliterate converts Cyrillic runes of s to their Latin approximation,
// preserving case. Text without Cyrillic passes through unchanged.
func Transliterate(s string) string {
	if !ContainsCyrillic(s) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		lat, ok := cyrillicToLatin[unicode.ToLower(r)]
		if !ok {
			sb.WriteRune(r)
			continue
		}
		if unicode.IsUpper(r) && lat != "" {
			sb.WriteString(strings.ToUpper(lat[:1]) + lat[1:])
		} else {
			sb.WriteString(lat)
		}
	}
	return sb.String()
}
