// Package whitelist checks sender domains against the trusted list and
// flags lookalike domains that sit within edit distance of a trusted one.
package whitelist

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"
	"golang.org/x/net/idna"
)

// Checker matches sender domains against the trusted domain list.
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new trusted domain checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	// Normalize domains (lowercase)
	normalizedDomains := make([]string, len(domains))
	for i, domain := range domains {
		normalizedDomains[i] = strings.ToLower(strings.TrimSpace(domain))
	}

	if len(normalizedDomains) > 0 && logger != nil {
		logger.Info("Initialized trusted domain checker", zap.Strings("domains", normalizedDomains))
	}

	return &Checker{
		domains: normalizedDomains,
		logger:  logger,
	}
}

// domainOf extracts the lowercased domain from an email address,
// decoding punycode so lookalike comparison sees the Unicode form.
func domainOf(from string) string {
	parts := strings.Split(from, "@")
	if len(parts) != 2 {
		return ""
	}
	domain := strings.ToLower(parts[1])
	if decoded, err := idna.Lookup.ToUnicode(domain); err == nil {
		domain = decoded
	}
	return domain
}

// IsTrusted checks if the sender's domain is in the trusted list
func (c *Checker) IsTrusted(from string) bool {
	if len(c.domains) == 0 {
		return false
	}

	domain := domainOf(from)
	if domain == "" {
		return false
	}

	for _, trusted := range c.domains {
		if trusted == domain {
			if c.logger != nil {
				c.logger.Debug("Domain is trusted",
					zap.String("domain", domain),
					zap.String("email", from))
			}
			return true
		}
	}

	return false
}

// Lookalike reports whether the sender's domain is a near miss of a
// trusted domain. Exact matches are not lookalikes. The returned string
// is the trusted domain being imitated.
func (c *Checker) Lookalike(from string) (string, bool) {
	domain := domainOf(from)
	if domain == "" {
		return "", false
	}

	for _, trusted := range c.domains {
		if trusted == domain {
			return "", false
		}
		dist := fuzzy.LevenshteinDistance(domain, trusted)
		if dist <= lookalikeThreshold(len(trusted)) {
			if c.logger != nil {
				c.logger.Warn("Lookalike sender domain",
					zap.String("domain", domain),
					zap.String("imitates", trusted),
					zap.Int("distance", dist))
			}
			return trusted, true
		}
	}

	return "", false
}

// lookalikeThreshold scales the allowed edit distance with the trusted
// domain's length.
func lookalikeThreshold(length int) int {
	switch {
	case length <= 11:
		return 1
	case length <= 15:
		return 2
	default:
		return length * 15 / 100
	}
}
