package urlrisk

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// scriptNames are the Unicode scripts checked when classifying host
// characters. Mixing any of these with ASCII in one host is the classic
// lookalike pattern.
var scriptNames = []string{
	"Cyrillic", "Greek", "Armenian", "Hebrew", "Arabic",
	"Han", "Hiragana", "Katakana", "Hangul", "Thai",
}

// isHomograph reports whether the URL's host mixes character scripts or
// carries a punycode label. The returned detail is a short description
// suitable for appending to an issue line.
func (a *Analyzer) isHomograph(rawURL string) (string, bool) {
	host := hostOf(rawURL)
	if host == "" {
		return "", false
	}

	lower := strings.ToLower(host)
	if strings.HasPrefix(lower, "xn--") || strings.Contains(lower, ".xn--") {
		if decoded := decodePunycode(lower); decoded != "" {
			return fmt.Sprintf("punycode domain decodes to %q", decoded), true
		}
		return "punycode-encoded domain", true
	}

	normalized := norm.NFKC.String(host)

	ascii := true
	for _, r := range normalized {
		if r > unicode.MaxASCII {
			ascii = false
			break
		}
	}
	if ascii {
		return "", false
	}

	scripts := make(map[string]struct{})
	for _, r := range normalized {
		scripts[scriptOf(r)] = struct{}{}
	}
	delete(scripts, "Common")
	if len(scripts) > 1 {
		names := make([]string, 0, len(scripts))
		for name := range scripts {
			names = append(names, name)
		}
		return fmt.Sprintf("mixes %d character scripts", len(names)), true
	}
	return "", false
}

// scriptOf classifies a rune into a coarse script bucket. Digits, dots
// and hyphens are Common and never count toward mixing.
func scriptOf(r rune) string {
	if r <= unicode.MaxASCII {
		if unicode.IsLetter(r) {
			return "Latin"
		}
		return "Common"
	}
	for _, name := range scriptNames {
		if table, ok := unicode.Scripts[name]; ok && unicode.Is(table, r) {
			return name
		}
	}
	if unicode.Is(unicode.Scripts["Latin"], r) {
		return "Latin"
	}
	return "Other"
}
