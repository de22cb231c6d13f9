package account

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

const (
	maxUsernameLen  = 30
	fallbackPrefix  = "user"
	maxSuffixProbes = 1000
)

var usernameStrip = regexp.MustCompile(`[^a-z0-9_-]+`)

// usernameBase derives a candidate username from the provider handle or the
// email local part: lower-cased, stripped to [a-z0-9_-] and truncated.
func usernameBase(providerUsername, email string) string {
	base := providerUsername
	if base == "" {
		base, _, _ = strings.Cut(email, "@")
	}

	base = strings.ToLower(base)
	base = usernameStrip.ReplaceAllString(base, "")
	if len(base) > maxUsernameLen {
		base = base[:maxUsernameLen]
	}
	if base == "" {
		base = fallbackPrefix
	}
	return base
}

// uniqueUsername disambiguates the base by appending an incrementing numeric
// suffix until the storage reports the candidate free.
func uniqueUsername(ctx context.Context, storage Storage, base string) (string, error) {
	candidate := base
	for i := 1; i <= maxSuffixProbes; i++ {
		exists, err := storage.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
	return "", errUsernameSpaceExhausted
}
