package filter

import (
	"strings"
	"testing"

	"github.com/edushield/phishing-filter/internal/core"
)

const plainEmail = "From: Alice <alice@example.com>\r\n" +
	"To: bob@example.com, carol@example.com\r\n" +
	"Subject: Lunch tomorrow\r\n" +
	"Authentication-Results: mx.example.com; spf=pass; dkim=pass; dmarc=pass\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"See you at noon.\r\n"

const htmlOnlyEmail = "From: offers@deals.example\r\n" +
	"To: bob@example.com\r\n" +
	"Subject: Weekly deals\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<html><body><p>Huge <b>savings</b> this week only.</p></body></html>\r\n"

const multipartEmail = "From: sender@example.com\r\n" +
	"To: bob@example.com\r\n" +
	"Subject: Report attached\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=\"b1\"\r\n" +
	"\r\n" +
	"--b1\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"The report is attached.\r\n" +
	"--b1\r\n" +
	"Content-Type: application/octet-stream\r\n" +
	"Content-Disposition: attachment; filename=\"report.exe\"\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"aGVsbG8=\r\n" +
	"--b1--\r\n"

func TestParseEmailSamplePlain(t *testing.T) {
	sample, err := ParseEmailSample(strings.NewReader(plainEmail))
	if err != nil {
		t.Fatalf("ParseEmailSample failed: %v", err)
	}

	if sample.From != "Alice <alice@example.com>" {
		t.Errorf("unexpected From: %q", sample.From)
	}
	if len(sample.To) != 2 || sample.To[0] != "bob@example.com" || sample.To[1] != "carol@example.com" {
		t.Errorf("unexpected To: %v", sample.To)
	}
	if sample.Subject != "Lunch tomorrow" {
		t.Errorf("unexpected Subject: %q", sample.Subject)
	}
	if !strings.Contains(sample.Body, "See you at noon.") {
		t.Errorf("unexpected Body: %q", sample.Body)
	}
	if !strings.Contains(sample.Headers["Authentication-Results"], "spf=pass") {
		t.Errorf("Authentication-Results header not captured: %v", sample.Headers)
	}
}

func TestParseEmailSampleHTMLFallback(t *testing.T) {
	sample, err := ParseEmailSample(strings.NewReader(htmlOnlyEmail))
	if err != nil {
		t.Fatalf("ParseEmailSample failed: %v", err)
	}

	if sample.HTMLBody == "" {
		t.Error("expected HTML body to be captured")
	}
	if !strings.Contains(sample.Body, "savings") {
		t.Errorf("expected text extracted from HTML, got %q", sample.Body)
	}
	if strings.Contains(sample.Body, "<b>") {
		t.Errorf("expected markup stripped from body, got %q", sample.Body)
	}
}

func TestParseEmailSampleAttachments(t *testing.T) {
	sample, err := ParseEmailSample(strings.NewReader(multipartEmail))
	if err != nil {
		t.Fatalf("ParseEmailSample failed: %v", err)
	}

	if !strings.Contains(sample.Body, "The report is attached.") {
		t.Errorf("unexpected Body: %q", sample.Body)
	}
	found := false
	for _, name := range sample.Attachments {
		if name == "report.exe" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected report.exe in attachments, got %v", sample.Attachments)
	}
}

func TestDecodeEncodedHeader(t *testing.T) {
	decoded, err := decodeEncodedHeader("=?UTF-8?Q?Caf=C3=A9_menu?=")
	if err != nil {
		t.Fatalf("decodeEncodedHeader failed: %v", err)
	}
	if decoded != "Café menu" {
		t.Errorf("unexpected decoded value: %q", decoded)
	}

	plain, err := decodeEncodedHeader("Just a subject")
	if err != nil {
		t.Fatalf("decodeEncodedHeader failed: %v", err)
	}
	if plain != "Just a subject" {
		t.Errorf("plain header should pass through, got %q", plain)
	}
}

func TestReasonFor(t *testing.T) {
	report := &core.Report{
		PredictionResult: core.PredictionResult{Classification: core.ClassPhishing},
		RiskFactors:      []string{"a", "b", "c", "d"},
	}
	if got := reasonFor(report); got != "a; b; c" {
		t.Errorf("expected first three factors, got %q", got)
	}

	empty := &core.Report{
		PredictionResult: core.PredictionResult{Classification: core.ClassLegitimate},
	}
	if got := reasonFor(empty); got != core.ClassLegitimate {
		t.Errorf("expected classification fallback, got %q", got)
	}
}
