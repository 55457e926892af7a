package domain

import (
	"regexp"
	"strings"
)

// phoneRegexp matches exactly 10 digits.
var phoneRegexp = regexp.MustCompile(`^\d{10}$`)

// ValidPhone reports whether phone is exactly 10 numeric digits.
func ValidPhone(phone string) bool {
	return phoneRegexp.MatchString(phone)
}

// NormalizeName trims the name, title-cases each whitespace-separated part
// (first letter upper, remainder lower), and rejoins with single spaces.
// The normalized name, together with the phone, is the participant identity.
func NormalizeName(name string) string {
	parts := strings.Fields(name)
	for i, p := range parts {
		runes := []rune(p)
		head := strings.ToUpper(string(runes[0]))
		tail := strings.ToLower(string(runes[1:]))
		parts[i] = head + tail
	}
	return strings.Join(parts, " ")
}
