// Package sanitize strips and validates PHI before content is written to
// the external memory service, and sanitizes identifiers used as vector
// collection names.
//
// Scrubbing is pattern based: labeled identifier fields (name:, address:,
// ...) are blanked and email-like values are replaced with a short hash so
// the same address remains correlatable without being stored. Content that
// still carries SSN-like or phone-like values after scrubbing fails the
// Compliant check and is refused by the memory client.
package sanitize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

const (
	// MaxIdentifierLength caps collection name components; embedded vector
	// stores require short lowercase identifiers.
	MaxIdentifierLength = 64

	// hashSuffixLength is the length of the "_<8-char-hash>" suffix added to
	// truncated identifiers.
	hashSuffixLength = 9

	// DefaultIdentifier is used when sanitization produces an empty result.
	DefaultIdentifier = "default"
)

var (
	ssnPattern   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	phonePattern = regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	// Labeled direct identifiers such as "name: Jane Doe" or "address: ...".
	labeledPattern = regexp.MustCompile(`(?i)\b(name|address|ssn|phone)\s*[:=]\s*[^\n,;]+`)
)

// Scrub strips direct identifiers from content: labeled identifier fields
// ("name: ...", "address: ...") are blanked and email-like values become
// hashed tokens so history stays correlatable without storing the address.
// Bare SSN-like and phone-like values are deliberately left in place for
// Compliant to catch; such content is refused rather than silently
// rewritten.
func Scrub(content string) string {
	out := labeledPattern.ReplaceAllStringFunc(content, func(m string) string {
		idx := strings.IndexAny(m, ":=")
		return m[:idx+1] + " [REDACTED]"
	})
	out = emailPattern.ReplaceAllStringFunc(out, func(m string) string {
		return "email:" + hash8(m)
	})
	return out
}

// Compliant reports whether content is free of PHI patterns (SSN-like,
// phone-like, email-like). Writes of non-compliant content are refused by
// the memory client, not rejected with an error.
func Compliant(content string) bool {
	return !ssnPattern.MatchString(content) &&
		!phonePattern.MatchString(content) &&
		!emailPattern.MatchString(content)
}

func hash8(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}

// Identifier sanitizes a string for use in vector collection names.
//
// Rules applied:
//   - Converts to lowercase
//   - Replaces invalid characters with underscores
//   - Collapses multiple underscores and trims leading/trailing ones
//   - Truncates to MaxIdentifierLength with a hash suffix if too long
//   - Returns DefaultIdentifier if the result would be empty
func Identifier(s string) string {
	if s == "" {
		return DefaultIdentifier
	}

	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	sanitized := b.String()
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}
	sanitized = strings.Trim(sanitized, "_")

	if sanitized == "" {
		return DefaultIdentifier
	}
	if len(sanitized) > MaxIdentifierLength {
		sanitized = truncateWithHash(sanitized)
	}
	return sanitized
}

// truncateWithHash shortens s to MaxIdentifierLength, appending a hash
// suffix to preserve uniqueness across truncated inputs.
func truncateWithHash(s string) string {
	suffix := "_" + hash8(s)
	truncated := strings.TrimRight(s[:MaxIdentifierLength-hashSuffixLength], "_")
	return truncated + suffix
}
