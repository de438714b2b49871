package util

import (
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"school-admin/pkg/apierror"
)

const maxNameRunes = 200

var (
	invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	slugSeparators   = regexp.MustCompile(`[^a-z0-9]+`)
)

// SanitizeName cleans a user supplied file or folder name. Control and
// invisible characters are dropped, path separators are replaced and the
// result is truncated to maxNameRunes.
func SanitizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apierror.New("INVALID_NAME", "name cannot be empty", "", http.StatusBadRequest)
	}

	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		if r == 0 || unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			continue
		}
		b.WriteRune(r)
	}

	cleaned := strings.TrimSpace(invalidNameChars.ReplaceAllString(b.String(), "_"))
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "", apierror.New("INVALID_NAME", "name is invalid after sanitization", trimmed, http.StatusBadRequest)
	}

	runes := []rune(cleaned)
	if len(runes) > maxNameRunes {
		cleaned = strings.TrimSpace(string(runes[:maxNameRunes]))
	}

	return cleaned, nil
}

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	lowered := strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	for _, r := range lowered {
		switch {
		case r < unicode.MaxASCII:
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			// non-ascii letters collapse into separators
			b.WriteByte(' ')
		}
	}

	return strings.Trim(slugSeparators.ReplaceAllString(b.String(), "-"), "-")
}
