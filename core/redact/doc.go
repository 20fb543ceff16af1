// Package redact scrubs sensitive values from free-form text before it is
// logged or persisted as delta evidence.
//
// Statement reports and parse errors can carry publisher emails, API keys,
// and card-shaped account numbers. Every evidence or error string crosses
// through redact.String exactly once, on the way out.
//
// # Rules
//
// Applied in order:
//   - email addresses become [REDACTED_EMAIL]
//   - Bearer tokens become Bearer [REDACTED]
//   - sk_test_/sk_live_ API keys keep their prefix, the rest becomes [REDACTED]
//   - runs of 13-19 consecutive digits become [REDACTED_NUMERIC]
//
// # Usage
//
//	evidence := redact.String(fmt.Sprintf("row %d rejected: %s", n, raw))
package redact
