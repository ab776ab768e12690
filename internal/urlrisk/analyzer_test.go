package urlrisk

import (
	"testing"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(DefaultConfig(), nil)
}

func TestExtractURLs(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "absolute url",
			text: "visit https://example.com/page for details",
			want: []string{"https://example.com/page"},
		},
		{
			name: "bare www normalized",
			text: "go to www.example.org today",
			want: []string{"http://www.example.org"},
		},
		{
			name: "duplicates collapsed",
			text: "http://a.com http://a.com http://b.com",
			want: []string{"http://a.com", "http://b.com"},
		},
		{
			name: "no urls",
			text: "plain text with no links",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.ExtractURLs(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractURLs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ExtractURLs()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAnalyzeURLScoring(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name      string
		url       string
		wantScore int
		wantLevel RiskLevel
	}{
		{"clean domain", "https://example.com/about", 0, RiskSafe},
		{"ip host", "http://192.168.10.25/index.html", 30, RiskMedium},
		{"shortener", "https://bit.ly/3abcde", 25, RiskLow},
		{"suspicious tld", "http://example.tk", 20, RiskLow},
		{"suspicious path", "https://example.com/account/verify", 10, RiskLow},
		{"ip plus path", "http://10.0.0.1/login", 40, RiskMedium},
		{"punycode tld path", "http://xn--pypal-4ve.tk/secure/login", 65, RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.AnalyzeURL(tt.url)
			if rec.RiskScore != tt.wantScore {
				t.Errorf("AnalyzeURL(%q).RiskScore = %d, want %d (issues: %v)",
					tt.url, rec.RiskScore, tt.wantScore, rec.Issues)
			}
			if rec.RiskLevel != tt.wantLevel {
				t.Errorf("AnalyzeURL(%q).RiskLevel = %s, want %s", tt.url, rec.RiskLevel, tt.wantLevel)
			}
		})
	}
}

func TestAnalyzeURLScoreCap(t *testing.T) {
	a := newTestAnalyzer()
	// IP check misses (punycode host) but shortener substring, TLD,
	// homograph, subdomains and path all fire.
	rec := a.AnalyzeURL("http://bit.ly.a.b.xn--pypal-4ve.tk/secure/login/verify")
	if rec.RiskScore != 100 {
		t.Errorf("RiskScore = %d, want capped at 100 (issues: %v)", rec.RiskScore, rec.Issues)
	}
	if rec.RiskLevel != RiskHigh {
		t.Errorf("RiskLevel = %s, want HIGH", rec.RiskLevel)
	}
}

func TestScoreMonotonicity(t *testing.T) {
	a := newTestAnalyzer()
	chain := []string{
		"http://example.com",
		"http://example.tk",
		"http://bit.ly.example.tk",
		"http://bit.ly.example.tk/verify",
		"http://bit.ly.sub.xn--pypal-4ve.tk/verify",
	}
	prev := -1
	for _, u := range chain {
		score := a.AnalyzeURL(u).RiskScore
		if score < prev {
			t.Errorf("score for %q = %d, below previous %d", u, score, prev)
		}
		prev = score
	}
}

func TestHomographDetection(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"pure ascii", "https://paypal.com", false},
		{"punycode prefix", "http://xn--pypal-4ve.com", true},
		{"punycode subdomain", "http://login.xn--pypal-4ve.com", true},
		{"mixed latin cyrillic", "http://pаypal.com", true}, // 'а' is Cyrillic
		{"digits and hyphens", "http://my-site-123.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, got := a.isHomograph(tt.url); got != tt.want {
				t.Errorf("isHomograph(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestFilterURLsAggregation(t *testing.T) {
	a := newTestAnalyzer()

	text := "Check http://192.168.1.1/login and http://xn--pypal-4ve.info.tk/secure/login/verify now"
	res := a.FilterURLs(text)

	if res.URLsFound != 2 {
		t.Fatalf("URLsFound = %d, want 2", res.URLsFound)
	}
	// 40 (ip+path) and 65 (homograph+tld+path) average to 52.5.
	if res.OverallRisk != 52.5 {
		t.Errorf("OverallRisk = %v, want 52.5", res.OverallRisk)
	}
	if !res.HasSuspiciousURLs {
		t.Error("HasSuspiciousURLs = false, want true")
	}
	if len(res.HighRiskURLs) != 1 || len(res.MediumRiskURLs) != 1 {
		t.Errorf("buckets = %d high / %d medium, want 1/1",
			len(res.HighRiskURLs), len(res.MediumRiskURLs))
	}
}

func TestFilterURLsEmpty(t *testing.T) {
	a := newTestAnalyzer()
	res := a.FilterURLs("nothing to see here")
	if res.URLsFound != 0 || res.OverallRisk != 0 || res.HasSuspiciousURLs {
		t.Errorf("empty analysis = %+v, want all-zero", res)
	}
}

func TestCoarseRisk(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"no urls", "hello there", 0},
		{"clean url", "see https://example.com/docs", 0},
		{"suspicious path only", "see https://example.com/account/verify", 0.7},
		{"shortener", "see https://bit.ly/x", 1},
		{"suspicious tld", "see http://example.tk", 1},
		{"ip host", "see http://10.1.1.1/", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.CoarseRisk(tt.text); got != tt.want {
				t.Errorf("CoarseRisk(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFeatureVector(t *testing.T) {
	a := newTestAnalyzer()

	t.Run("no urls", func(t *testing.T) {
		vec := a.FeatureVector("plain text", "")
		for i, v := range vec {
			if v != 0 {
				t.Errorf("vec[%d] = %v, want 0", i, v)
			}
		}
		if len(vec) != 8 {
			t.Errorf("len(vec) = %d, want 8", len(vec))
		}
	})

	t.Run("mixed signals", func(t *testing.T) {
		text := "http://bit.ly/x and http://example.tk/verify"
		vec := a.FeatureVector(text, "")
		if vec[0] != 1 {
			t.Errorf("shortener flag = %v, want 1", vec[0])
		}
		if vec[1] != 0 {
			t.Errorf("ip flag = %v, want 0", vec[1])
		}
		if vec[2] != 1 {
			t.Errorf("tld count = %v, want 1", vec[2])
		}
		if vec[5] != 1 {
			t.Errorf("path count = %v, want 1", vec[5])
		}
		if vec[6] != 2 {
			t.Errorf("url count = %v, want 2", vec[6])
		}
	})

	t.Run("anchor mismatch", func(t *testing.T) {
		text := "https://paypal.com"
		body := `<a href="http://evil.example.net">https://paypal.com</a>`
		vec := a.FeatureVector(text, body)
		if vec[7] != 1 {
			t.Errorf("anchor mismatch count = %v, want 1", vec[7])
		}
	})

	t.Run("anchor mismatch with bare display domain", func(t *testing.T) {
		text := "http://evil.example.tk/login"
		body := `<a href="http://evil.example.tk/login">paypal.com</a>`
		vec := a.FeatureVector(text, body)
		if vec[7] != 1 {
			t.Errorf("anchor mismatch count = %v, want 1", vec[7])
		}
	})

	t.Run("anchor mismatches are counted", func(t *testing.T) {
		text := "http://evil.example.tk and http://bad.example.ml"
		body := `<a href="http://evil.example.tk">paypal.com</a>` +
			`<a href="http://bad.example.ml">amazon.com</a>`
		vec := a.FeatureVector(text, body)
		if vec[7] != 2 {
			t.Errorf("anchor mismatch count = %v, want 2", vec[7])
		}
	})

	t.Run("anchor match", func(t *testing.T) {
		text := "https://example.com"
		body := `<a href="https://example.com/page">https://example.com</a>`
		vec := a.FeatureVector(text, body)
		if vec[7] != 0 {
			t.Errorf("anchor mismatch count = %v, want 0", vec[7])
		}
	})

	t.Run("display subdomain of href host matches", func(t *testing.T) {
		text := "https://login.example.com"
		body := `<a href="https://login.example.com/session">example.com</a>`
		vec := a.FeatureVector(text, body)
		if vec[7] != 0 {
			t.Errorf("anchor mismatch count = %v, want 0", vec[7])
		}
	})
}

// stubResolver maps shortened URLs to fixed destinations.
type stubResolver struct {
	targets map[string]string
}

func (r stubResolver) Resolve(rawURL string) string {
	if target, ok := r.targets[rawURL]; ok {
		return target
	}
	return rawURL
}

func TestFeatureVectorResolvesShorteners(t *testing.T) {
	resolver := stubResolver{targets: map[string]string{
		"http://bit.ly/abc": "http://xn--pypal-4ve.example.tk/login",
	}}
	a := NewAnalyzer(DefaultConfig(), resolver)

	vec := a.FeatureVector("click http://bit.ly/abc", "")
	if vec[0] != 1 {
		t.Errorf("shortener flag = %v, want 1", vec[0])
	}
	if vec[2] != 1 {
		t.Errorf("tld count on resolved URL = %v, want 1", vec[2])
	}
	if vec[3] != 1 {
		t.Errorf("homograph count on resolved URL = %v, want 1", vec[3])
	}
}

func TestSummary(t *testing.T) {
	a := newTestAnalyzer()

	t.Run("no urls", func(t *testing.T) {
		got := Summary(a.FilterURLs("no links"))
		if len(got) != 1 || got[0] != "No URLs detected in email" {
			t.Errorf("Summary = %v", got)
		}
	})

	t.Run("high risk lines", func(t *testing.T) {
		got := Summary(a.FilterURLs("http://xn--pypal-4ve.tk/secure/login"))
		if len(got) < 3 {
			t.Fatalf("Summary = %v, want count line, bucket line and detail", got)
		}
		if got[0] != "Found 1 URL(s) in email" {
			t.Errorf("Summary[0] = %q", got[0])
		}
		if got[1] != "1 HIGH RISK URL(s) detected" {
			t.Errorf("Summary[1] = %q", got[1])
		}
	})
}
