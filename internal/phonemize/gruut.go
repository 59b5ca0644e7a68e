package phonemize

import "strings"

// gruutRewriteRules enumerates the Gruut-US IPA flavoring applied to raw
// espeak-ng IPA output: r-colored vowel expansion, diphthong collapse,
// affricate collapse, and g/r normalization to their IPA IANA code points.
// Longer sequences are listed first so multi-rune rules are matched before
// any of their single-rune constituents.
var gruutRewriteRules = []struct{ from, to string }{
	{"eɪ", "A"},
	{"aɪ", "I"},
	{"ɔɪ", "Y"},
	{"oʊ", "O"},
	{"aʊ", "W"},
	{"tʃ", "ʧ"},
	{"dʒ", "ʤ"},
	{"ɝ", "ɜɹ"},
	{"ɚ", "əɹ"},
	{"g", "ɡ"}, // normalize ASCII 'g' to IPA LATIN SMALL LETTER SCRIPT G
	{"r", "ɹ"}, // normalize ASCII 'r' to IPA LATIN SMALL LETTER TURNED R
}

// ApplyGruutUS rewrites raw IPA text into the Gruut-US flavoring the Matcha
// and Kokoro models expect: removes the zero-width joiner, expands
// r-colored vowels, collapses diphthongs and affricates to single symbols,
// and normalizes plain ASCII 'g'/'r' to their IPA forms.
func ApplyGruutUS(ipa string) string {
	ipa = strings.ReplaceAll(ipa, "‍", "") // zero-width joiner
	for _, rule := range gruutRewriteRules {
		ipa = strings.ReplaceAll(ipa, rule.from, rule.to)
	}
	return ipa
}

// CleanRawIPA strips zero-width joiners and newlines from raw phonemizer
// output and collapses runs of whitespace to single spaces.
func CleanRawIPA(raw string) string {
	raw = strings.ReplaceAll(raw, "‍", "")
	raw = strings.ReplaceAll(raw, "\n", " ")
	raw = strings.ReplaceAll(raw, "\r", " ")
	for strings.Contains(raw, "  ") {
		raw = strings.ReplaceAll(raw, "  ", " ")
	}
	return strings.TrimSpace(raw)
}
