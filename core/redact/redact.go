package redact

import "regexp"

var (
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	bearerPattern  = regexp.MustCompile(`Bearer\s+[^\s]+`)
	apiKeyPattern  = regexp.MustCompile(`sk_(test|live)_[A-Za-z0-9]+`)
	numericPattern = regexp.MustCompile(`\b[0-9]{13,19}\b`)
)

// String removes sensitive values from text. It is deterministic and
// stateless; unmatched input passes through unchanged.
func String(text string) string {
	text = emailPattern.ReplaceAllString(text, "[REDACTED_EMAIL]")
	text = bearerPattern.ReplaceAllString(text, "Bearer [REDACTED]")
	text = apiKeyPattern.ReplaceAllString(text, "sk_${1}_[REDACTED]")
	text = numericPattern.ReplaceAllString(text, "[REDACTED_NUMERIC]")
	return text
}

// Error is a convenience wrapper for error messages headed to logs or
// stored evidence. A nil error yields the empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
