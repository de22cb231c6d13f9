// Package sanitizer normalizes untrusted identity input before it is used
// as a lookup key or stored. Normalization is centralized here so the
// resolver and the linking service agree on what "the same email" means.
package sanitizer

import (
	"regexp"
	"strings"
)

var dotRegex = regexp.MustCompile(`\.+`)

// NormalizeEmail lower-cases and trims the address and consolidates
// consecutive dots in the local part. Invalid shapes are returned as-is;
// validation is the caller's concern.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return email
	}

	local = dotRegex.ReplaceAllString(local, ".")
	local = strings.Trim(local, ".")

	return local + "@" + domain
}
