package urlrisk

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// RiskLevel buckets a per-URL risk score.
type RiskLevel string

const (
	RiskSafe   RiskLevel = "SAFE"
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Record is the scored result for a single URL.
type Record struct {
	URL       string    `json:"url"`
	RiskScore int       `json:"risk_score"`
	RiskLevel RiskLevel `json:"risk_level"`
	Issues    []string  `json:"issues"`
}

// Analysis aggregates the scored URLs of one email.
type Analysis struct {
	URLsFound         int      `json:"urls_found"`
	URLs              []Record `json:"urls"`
	HighRiskURLs      []Record `json:"high_risk_urls"`
	MediumRiskURLs    []Record `json:"medium_risk_urls"`
	OverallRisk       float64  `json:"overall_risk"`
	HasSuspiciousURLs bool     `json:"has_suspicious_urls"`
}

// Resolver resolves a shortened URL to its final destination. Implementations
// must be best-effort: returning the input unchanged is always acceptable.
type Resolver interface {
	Resolve(rawURL string) string
}

// IdentityResolver performs no resolution.
type IdentityResolver struct{}

// Resolve returns the input URL unchanged.
func (IdentityResolver) Resolve(rawURL string) string { return rawURL }

// Config holds the fixed lookup tables used by the analyzer.
type Config struct {
	Shorteners         []string
	SuspiciousTLDs     []string
	PathKeywords       []string
	SubdomainThreshold int
}

// DefaultConfig returns the stock lookup tables.
func DefaultConfig() Config {
	return Config{
		Shorteners: []string{
			"bit.ly", "t.co", "tinyurl.com", "goo.gl", "ow.ly", "is.gd", "buff.ly",
		},
		SuspiciousTLDs: []string{
			".tk", ".ml", ".ga", ".cf", ".gq", ".xyz", ".top", ".work",
		},
		PathKeywords: []string{
			"login", "signin", "verify", "account", "update",
			"confirm", "secure", "banking", "paypal", "ebay",
			"amazon", "suspended", "locked", "unusual",
		},
		SubdomainThreshold: 3,
	}
}

var (
	reAbsoluteURL = regexp.MustCompile(`(?i)http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)
	reBareWWW     = regexp.MustCompile(`(?i)www\.(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)
	reIPv4Host    = regexp.MustCompile(`^(?:[0-9]{1,3}\.){3}[0-9]{1,3}$`)
)

// Analyzer scores URLs embedded in email text.
type Analyzer struct {
	cfg      Config
	resolver Resolver
}

// NewAnalyzer creates an analyzer over the given tables. A nil resolver
// disables shortener resolution.
func NewAnalyzer(cfg Config, resolver Resolver) *Analyzer {
	if resolver == nil {
		resolver = IdentityResolver{}
	}
	if cfg.SubdomainThreshold <= 0 {
		cfg.SubdomainThreshold = 3
	}
	return &Analyzer{cfg: cfg, resolver: resolver}
}

// ExtractURLs finds every absolute URL plus bare www. references in text.
// Bare matches are normalized with an http:// prefix. The result is
// de-duplicated, preserving first appearance order.
func (a *Analyzer) ExtractURLs(text string) []string {
	var urls []string
	seen := make(map[string]struct{})
	add := func(u string) {
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	for _, u := range reAbsoluteURL.FindAllString(text, -1) {
		add(u)
	}
	for _, u := range reBareWWW.FindAllString(text, -1) {
		add("http://" + u)
	}
	return urls
}

// hostOf extracts the host portion of a URL, falling back to the first
// path segment when the input has no scheme.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if host == "" {
		host = strings.SplitN(u.Path, "/", 2)[0]
	}
	return host
}

func (a *Analyzer) isIPAddress(rawURL string) bool {
	return reIPv4Host.MatchString(hostOf(rawURL))
}

func (a *Analyzer) isShortener(rawURL string) bool {
	host := strings.ToLower(hostOf(rawURL))
	for _, s := range a.cfg.Shorteners {
		if strings.Contains(host, s) {
			return true
		}
	}
	return false
}

func (a *Analyzer) hasSuspiciousTLD(rawURL string) bool {
	host := strings.ToLower(hostOf(rawURL))
	for _, tld := range a.cfg.SuspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}
	return false
}

func (a *Analyzer) hasExcessiveSubdomains(rawURL string) bool {
	return strings.Count(hostOf(rawURL), ".") > a.cfg.SubdomainThreshold
}

func (a *Analyzer) hasSuspiciousPath(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	full := strings.ToLower(u.Path) + strings.ToLower(u.RawQuery)
	for _, kw := range a.cfg.PathKeywords {
		if strings.Contains(full, kw) {
			return true
		}
	}
	return false
}

// AnalyzeURL scores one URL. Each triggered check adds a fixed amount of
// risk; the total is capped at 100.
func (a *Analyzer) AnalyzeURL(rawURL string) Record {
	var issues []string
	score := 0

	if a.isIPAddress(rawURL) {
		issues = append(issues, "Uses IP address instead of domain name")
		score += 30
	}
	if a.isShortener(rawURL) {
		issues = append(issues, "Uses URL shortening service")
		score += 25
	}
	if a.hasSuspiciousTLD(rawURL) {
		issues = append(issues, "Uses suspicious top-level domain")
		score += 20
	}

	// Shorteners are resolved first so the homograph check sees the final
	// destination. Resolution is best-effort and may return the input.
	target := rawURL
	if resolved := a.resolver.Resolve(rawURL); resolved != "" {
		target = resolved
	}
	if detail, ok := a.isHomograph(target); ok {
		issue := "Contains lookalike characters (homograph attack)"
		if detail != "" {
			issue = fmt.Sprintf("%s: %s", issue, detail)
		}
		issues = append(issues, issue)
		score += 35
	}

	if a.hasExcessiveSubdomains(rawURL) {
		issues = append(issues, "Has excessive number of subdomains")
		score += 15
	}
	if a.hasSuspiciousPath(rawURL) {
		issues = append(issues, "Path contains suspicious keywords")
		score += 10
	}

	if score > 100 {
		score = 100
	}

	return Record{
		URL:       rawURL,
		RiskScore: score,
		RiskLevel: levelFor(score),
		Issues:    issues,
	}
}

func levelFor(score int) RiskLevel {
	switch {
	case score >= 50:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	case score >= 10:
		return RiskLow
	default:
		return RiskSafe
	}
}

// FilterURLs analyzes every URL in the email text and aggregates the
// results. Text without URLs yields the all-zero analysis.
func (a *Analyzer) FilterURLs(text string) Analysis {
	urls := a.ExtractURLs(text)
	if len(urls) == 0 {
		return Analysis{URLs: []Record{}, HighRiskURLs: []Record{}, MediumRiskURLs: []Record{}}
	}

	records := make([]Record, 0, len(urls))
	high := make([]Record, 0)
	medium := make([]Record, 0)
	total := 0
	for _, u := range urls {
		rec := a.AnalyzeURL(u)
		records = append(records, rec)
		total += rec.RiskScore
		switch rec.RiskLevel {
		case RiskHigh:
			high = append(high, rec)
		case RiskMedium:
			medium = append(medium, rec)
		}
	}

	overall := math.Round(float64(total)/float64(len(records))*100) / 100

	return Analysis{
		URLsFound:         len(urls),
		URLs:              records,
		HighRiskURLs:      high,
		MediumRiskURLs:    medium,
		OverallRisk:       overall,
		HasSuspiciousURLs: len(high) > 0 || len(medium) > 0,
	}
}

// CoarseRisk is the cheap URL signal used before the full aggregate is
// available: 1 for a shortener/suspicious-TLD/IP host, 0.7 for a
// suspicious path, 0 otherwise.
func (a *Analyzer) CoarseRisk(text string) float64 {
	risk := 0.0
	for _, u := range a.ExtractURLs(text) {
		if a.isShortener(u) || a.hasSuspiciousTLD(u) || a.isIPAddress(u) {
			return 1.0
		}
		if a.hasSuspiciousPath(u) && risk < 0.7 {
			risk = 0.7
		}
	}
	return risk
}

// Summary renders the aggregate as human-readable risk factor lines.
func Summary(a Analysis) []string {
	if a.URLsFound == 0 {
		return []string{"No URLs detected in email"}
	}

	factors := []string{fmt.Sprintf("Found %d URL(s) in email", a.URLsFound)}

	if len(a.HighRiskURLs) > 0 {
		factors = append(factors, fmt.Sprintf("%d HIGH RISK URL(s) detected", len(a.HighRiskURLs)))
		for _, rec := range a.HighRiskURLs {
			factors = append(factors, fmt.Sprintf("  - %s: %s", rec.URL, strings.Join(rec.Issues, ", ")))
		}
	}
	if len(a.MediumRiskURLs) > 0 {
		factors = append(factors, fmt.Sprintf("%d MEDIUM RISK URL(s) detected", len(a.MediumRiskURLs)))
		for _, rec := range a.MediumRiskURLs {
			factors = append(factors, fmt.Sprintf("  - %s: %s", rec.URL, strings.Join(rec.Issues, ", ")))
		}
	}
	if a.OverallRisk >= 30 {
		factors = append(factors, fmt.Sprintf("Overall URL risk score: %.2f/100", a.OverallRisk))
	}
	return factors
}

// decodePunycode renders an xn-- host in its Unicode form for issue text.
func decodePunycode(host string) string {
	decoded, err := idna.Lookup.ToUnicode(host)
	if err != nil || decoded == host {
		return ""
	}
	return decoded
}
