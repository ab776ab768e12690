package urlrisk

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// reDisplayDomain picks a bare domain out of an anchor's visible text,
// with or without a scheme prefix.
var reDisplayDomain = regexp.MustCompile(`(?i)(https?://)?([\w.-]+\.[a-zA-Z]{2,})`)

// FeatureVector produces the fixed-width numeric representation of the
// email's URL signals, in order:
//
//	[shortener, ip_host, suspicious_tld_count, homograph_count,
//	 avg_subdomains, suspicious_path_count, url_count, anchor_mismatch_count]
//
// The first two are 0/1 flags. Text without URLs yields the zero vector.
// TLD and homograph checks run on the resolved URL so a shortened link
// is judged by its final destination.
func (a *Analyzer) FeatureVector(text, htmlBody string) []float64 {
	urls := a.ExtractURLs(text)
	vec := make([]float64, 8)
	if len(urls) == 0 {
		return vec
	}

	var tldCount, homographCount, pathCount int
	var subdomainSum int
	for _, u := range urls {
		if a.isShortener(u) {
			vec[0] = 1
		}
		if a.isIPAddress(u) {
			vec[1] = 1
		}
		target := u
		if resolved := a.resolver.Resolve(u); resolved != "" {
			target = resolved
		}
		if a.hasSuspiciousTLD(target) {
			tldCount++
		}
		if _, ok := a.isHomograph(target); ok {
			homographCount++
		}
		subdomainSum += strings.Count(hostOf(u), ".")
		if a.hasSuspiciousPath(u) {
			pathCount++
		}
	}

	vec[2] = float64(tldCount)
	vec[3] = float64(homographCount)
	vec[4] = float64(subdomainSum) / float64(len(urls))
	vec[5] = float64(pathCount)
	vec[6] = float64(len(urls))
	if htmlBody != "" {
		vec[7] = float64(a.anchorMismatches(htmlBody))
	}
	return vec
}

// anchorMismatches counts anchors whose visible text names a domain
// that does not appear in the href's host, the "display trusted domain,
// link elsewhere" pattern. Malformed HTML is tolerated; the tokenizer
// stops at the first error.
func (a *Analyzer) anchorMismatches(htmlBody string) int {
	tz := html.NewTokenizer(strings.NewReader(htmlBody))
	var href string
	var inAnchor bool
	var textBuf strings.Builder
	count := 0

	check := func() bool {
		shown := strings.TrimSpace(textBuf.String())
		if href == "" || shown == "" {
			return false
		}
		parsed, err := url.Parse(href)
		if err != nil {
			return false
		}
		hrefHost := strings.ToLower(parsed.Hostname())
		m := reDisplayDomain.FindStringSubmatch(shown)
		if m == nil {
			return false
		}
		dispDomain := strings.ToLower(m[2])
		return hrefHost != "" && dispDomain != "" && !strings.Contains(hrefHost, dispDomain)
	}

	for {
		switch tz.Next() {
		case html.ErrorToken:
			return count
		case html.StartTagToken:
			tok := tz.Token()
			if tok.Data == "a" {
				inAnchor = true
				href = ""
				textBuf.Reset()
				for _, attr := range tok.Attr {
					if attr.Key == "href" {
						href = attr.Val
					}
				}
			}
		case html.TextToken:
			if inAnchor {
				textBuf.Write(tz.Text())
			}
		case html.EndTagToken:
			tok := tz.Token()
			if tok.Data == "a" && inAnchor {
				if check() {
					count++
				}
				inAnchor = false
			}
		}
	}
}
