package sensor

import (
	"regexp"
	"strings"

	"github.com/runnerr0/recollect/internal/config"
)

// naive address pattern, good enough for title redaction
var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// Sanitizer redacts sensitive content from captured text and filters
// blocked URLs before anything is written to disk.
type Sanitizer struct {
	keywords []string
	blocked  []*regexp.Regexp
}

// NewSanitizer compiles the privacy configuration. Invalid blocked-
// domain patterns are skipped rather than failing the run.
func NewSanitizer(cfg config.PrivacyConfig) *Sanitizer {
	s := &Sanitizer{keywords: cfg.SensitiveKeywords}
	for _, pattern := range cfg.BlockedDomains {
		re, err := regexp.Compile(pattern)
		if err != nil {
			log.WithField("pattern", pattern).Warn("skipping invalid blocked-domain pattern")
			continue
		}
		s.blocked = append(s.blocked, re)
	}
	return s
}

// SanitizeText redacts configured keywords and email addresses.
func (s *Sanitizer) SanitizeText(text string) string {
	if text == "" {
		return ""
	}
	for _, kw := range s.keywords {
		if kw == "" {
			continue
		}
		text = strings.ReplaceAll(text, kw, "[REDACTED]")
	}
	return emailPattern.ReplaceAllString(text, "[EMAIL_REDACTED]")
}

// IsBlockedURL reports whether a URL matches any blocked-domain pattern.
func (s *Sanitizer) IsBlockedURL(url string) bool {
	if url == "" {
		return false
	}
	for _, re := range s.blocked {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}
