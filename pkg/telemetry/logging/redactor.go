package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redactor masks credentials and other sensitive values in log output.
//
// Two mechanisms apply. Attributes whose key names credential material
// (token, secret, password, authorization) have their values replaced
// entirely. String values are additionally scanned for patterns that
// carry credentials regardless of key: Authorization header values,
// OAuth token parameters in URL-encoded or JSON form, and email
// addresses.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern is a compiled regex with its replacement.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Pattern names.
const (
	PatternBearer     = "bearer"
	PatternBasicAuth  = "basic_auth"
	PatternTokenParam = "token_param"
	PatternTokenJSON  = "token_json"
	PatternPassword   = "password"
	PatternEmail      = "email"
)

// NewRedactor creates a Redactor with the built-in patterns.
func NewRedactor() *Redactor {
	specs := []struct {
		name        string
		regex       string
		replacement string
	}{
		// Authorization: Bearer <access token>
		{
			name:        PatternBearer,
			regex:       `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`,
			replacement: "Bearer ***",
		},

		// Authorization: Basic <base64 client_id:client_secret>
		{
			name:        PatternBasicAuth,
			regex:       `Basic\s+[a-zA-Z0-9+/]+=*`,
			replacement: "Basic ***",
		},

		// URL-encoded OAuth parameters (token endpoint bodies, callback
		// URLs). Anchored to a delimiter so "status_code=" is untouched.
		{
			name:        PatternTokenParam,
			regex:       `(^|[?&\s"'])(access_token|refresh_token|client_secret|client_id|code)=[^&\s"']+`,
			replacement: "$1$2=***",
		},

		// JSON token fields (token endpoint responses)
		{
			name:        PatternTokenJSON,
			regex:       `"(access_token|refresh_token|client_secret)"\s*:\s*"[^"]*"`,
			replacement: `"$1":"***"`,
		},

		// Generic password fields
		{
			name:        PatternPassword,
			regex:       `(password|passwd|pwd)[:=]\s*\S+`,
			replacement: "$1: ***",
		},

		// Email addresses (customer contact data from invoice rows)
		{
			name:        PatternEmail,
			regex:       `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
			replacement: "***@***",
		},
	}

	r := &Redactor{}
	for _, spec := range specs {
		r.patterns = append(r.patterns, &redactPattern{
			name:        spec.name,
			regex:       regexp.MustCompile(spec.regex),
			replacement: spec.replacement,
		})
	}

	return r
}

// RedactString masks every sensitive pattern found in a string.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}

	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}

	return redacted
}

// RedactAttr returns the attribute with sensitive content masked.
//
// Attributes with a sensitive key are replaced outright. String values
// are pattern-scanned, and group members are processed recursively.
func (r *Redactor) RedactAttr(attr slog.Attr) slog.Attr {
	if isSensitiveKey(attr.Key) {
		return slog.String(attr.Key, "***")
	}

	value := attr.Value.Resolve()

	switch value.Kind() {
	case slog.KindString:
		return slog.String(attr.Key, r.RedactString(value.String()))
	case slog.KindGroup:
		members := value.Group()
		redacted := make([]any, 0, len(members))
		for _, member := range members {
			redacted = append(redacted, r.RedactAttr(member))
		}
		return slog.Group(attr.Key, redacted...)
	default:
		return attr
	}
}

// isSensitiveKey reports whether a key names credential material.
// Matching is deliberately narrow: broad fragments like "auth" or
// "code" would swallow keys such as "author" or "status_code".
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)

	sensitive := []string{
		"password", "passwd", "pwd",
		"secret", "token",
		"authorization",
		"api_key", "apikey",
		"credential",
	}

	for _, s := range sensitive {
		if strings.Contains(lower, s) {
			return true
		}
	}

	return false
}
