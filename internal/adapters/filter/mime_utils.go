package filter

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/jaytaylor/html2text"
	"github.com/jhillyerd/enmime"

	"github.com/edushield/phishing-filter/internal/core"
)

// ParseEmailSample parses a raw RFC 5322 message into an EmailSample.
// The plain-text body is preferred; HTML-only messages are converted
// with html2text so the analyzers always see readable text.
func ParseEmailSample(r io.Reader) (*core.EmailSample, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIME envelope: %w", err)
	}

	sample := &core.EmailSample{
		From:     env.GetHeader("From"),
		Subject:  env.GetHeader("Subject"),
		Body:     env.Text,
		HTMLBody: env.HTML,
		Headers:  make(map[string]string),
	}

	for _, to := range strings.Split(env.GetHeader("To"), ",") {
		to = strings.TrimSpace(to)
		if to != "" {
			sample.To = append(sample.To, to)
		}
	}

	for _, key := range env.GetHeaderKeys() {
		sample.Headers[key] = env.GetHeader(key)
	}

	if strings.TrimSpace(sample.Body) == "" && sample.HTMLBody != "" {
		text, err := html2text.FromString(sample.HTMLBody, html2text.Options{TextOnly: true})
		if err == nil {
			sample.Body = text
		}
	}

	for _, att := range env.Attachments {
		if att.FileName != "" {
			sample.Attachments = append(sample.Attachments, att.FileName)
		}
	}
	for _, att := range env.OtherParts {
		if att.FileName != "" {
			sample.Attachments = append(sample.Attachments, att.FileName)
		}
	}

	return sample, nil
}

// decodeEncodedHeader decodes RFC 2047 encoded-words in a header value
func decodeEncodedHeader(value string) (string, error) {
	if !strings.Contains(value, "=?") {
		return value, nil
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value, err
	}
	return decoded, nil
}
