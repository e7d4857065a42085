// Package redact scrubs sensitive fragments from error strings before they
// reach the logs. Database errors in particular can carry connection URLs,
// SQL text or host names that have no business in log aggregation.
package redact

import "regexp"

const (
	placeholder           = "[REDACTED]"
	credentialPlaceholder = "[REDACTED_CREDENTIAL]"
	sqlPlaceholder        = "[REDACTED_SQL]"
)

var replacements = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	// Connection URLs with embedded credentials.
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@[^\s]+`), credentialPlaceholder},

	// key=value or key: value credential pairs.
	{regexp.MustCompile(`(?i)(password|passwd|secret|token|api[_-]?key)([=:\s]['"]?)[^'"&\s]{3,}`), "$1$2" + credentialPlaceholder},

	// SQL statement fragments surfaced by driver errors.
	{regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)\s[\s\w,*()='"$]+`), sqlPlaceholder},

	// host:port endpoints.
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}:\d{1,5}\b`), placeholder},
}

// String scrubs known sensitive patterns from s.
func String(s string) string {
	for _, r := range replacements {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error scrubs the error's message. Returns an empty string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
