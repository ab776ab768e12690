package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/edushield/phishing-filter/internal/core"
)

// SMTPFilter implements a Postfix content filter speaking SMTP. It
// receives each message on a local listener, analyzes it, stamps the
// verdict headers and hands the message back to the relay address.
type SMTPFilter struct {
	service       *core.DetectorService
	logger        *zap.Logger
	listenAddr    string
	server        *smtp.Server
	blockPhishing bool
	statusHeader  string
	scoreHeader   string
	reasonHeader  string
	relayAddr     string
	subjectPrefix string
	modifySubject bool
}

// NewSMTPFilter creates a new SMTP content filter
func NewSMTPFilter(
	service *core.DetectorService,
	logger *zap.Logger,
	listenAddr string,
	blockPhishing bool,
	statusHeader string,
	scoreHeader string,
	reasonHeader string,
	relayAddr string,
	subjectPrefix string,
	modifySubject bool,
) *SMTPFilter {
	// If subject prefix is not set but modify subject is enabled, use default prefix
	if subjectPrefix == "" && modifySubject {
		subjectPrefix = "[**PHISHING**] "
	}

	return &SMTPFilter{
		service:       service,
		logger:        logger,
		listenAddr:    listenAddr,
		blockPhishing: blockPhishing,
		statusHeader:  statusHeader,
		scoreHeader:   scoreHeader,
		reasonHeader:  reasonHeader,
		relayAddr:     relayAddr,
		subjectPrefix: subjectPrefix,
		modifySubject: modifySubject,
	}
}

// Start starts the SMTP filter service
func (f *SMTPFilter) Start() error {
	// Create a new SMTP server
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	// Configure the server
	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP filter starting", zap.String("address", f.listenAddr))

	// Start the server in a goroutine
	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP filter service
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail analyzes an email and returns the report
// This is mainly used for testing or direct API calls
func (f *SMTPFilter) ProcessEmail(ctx context.Context, sample *core.EmailSample) (*core.Report, error) {
	return f.service.Analyze(ctx, sample)
}

// relay sends the processed email to the configured relay using go-smtp
func (f *SMTPFilter) relay(sender string, recipients []string, emailData []byte) error {
	// Get hostname for EHLO
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	// Connect to the server with a timeout
	conn, err := net.DialTimeout("tcp", f.relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	// Set a deadline for the connection
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	// Create a client
	c := smtp.NewClient(conn)
	defer c.Close()

	// Send EHLO
	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	// Set the sender
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	// Set the recipients
	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			// Continue with other recipients even if one fails
		} else {
			recipientOK = true
		}
	}

	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	// Send the email data
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	_, err = wc.Write(emailData)
	if err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	// Quit the connection
	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
		// Not returning an error here as the email has already been sent
	}

	return nil
}

// reasonFor condenses a report's risk factors into a single header value
func reasonFor(report *core.Report) string {
	if len(report.RiskFactors) == 0 {
		return report.Classification
	}
	factors := report.RiskFactors
	if len(factors) > 3 {
		factors = factors[:3]
	}
	return strings.Join(factors, "; ")
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for our filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data handles the email data
func (s *smtpSession) Data(r io.Reader) error {
	// Read the complete raw message data
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	// Parse the MIME structure for analysis
	sample, err := ParseEmailSample(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	// The envelope addresses take precedence over the header ones
	if s.sender != "" {
		sample.From = s.sender
	}
	if len(s.recipients) > 0 {
		sample.To = s.recipients
	}

	// Parse again with net/mail to preserve the original headers when
	// reconstructing the message for the relay
	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to read message headers", zap.Error(err))
		return err
	}

	// Extract sender domain for logging
	senderDomain := "unknown"
	if parts := strings.Split(sample.From, "@"); len(parts) == 2 {
		senderDomain = strings.TrimSuffix(parts[1], ">")
	}

	// Process the email
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Analyze the email, but handle errors gracefully
	report, analysisErr := s.filter.service.Analyze(ctx, sample)
	if analysisErr != nil {
		s.filter.logger.Error("Failed to analyze email",
			zap.Error(analysisErr),
			zap.String("sender", sample.From),
			zap.String("sender_domain", senderDomain))

		// Fall back to a pass-through verdict so a detector outage
		// never loses mail
		report = &core.Report{
			PredictionResult: core.PredictionResult{
				Classification: core.ClassLegitimate,
				Confidence:     0.0,
			},
			RiskFactors: []string{fmt.Sprintf("Error during analysis: %v", analysisErr)},
			AnalyzedAt:  time.Now(),
		}
	}

	isPhishing := report.Classification == core.ClassPhishing

	// Determine action based on the verdict
	if isPhishing && s.filter.blockPhishing && analysisErr == nil {
		// Only reject if it's phishing AND there was no error in analysis
		s.filter.logger.Info("Rejecting phishing email",
			zap.String("from", sample.From),
			zap.String("sender_domain", senderDomain),
			zap.Float64("confidence", report.Confidence),
			zap.String("reason", reasonFor(report)))
		return fmt.Errorf("550 Rejected as phishing (score: %.2f)", report.Confidence)
	}

	// Prepare the modified email with verdict headers
	var modifiedEmail bytes.Buffer

	// Add our detection headers first
	fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.filter.statusHeader, report.Classification)
	fmt.Fprintf(&modifiedEmail, "%s: %.4f\r\n", s.filter.scoreHeader, report.Confidence)
	fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.filter.reasonHeader, reasonFor(report))

	// Add error header if there was an analysis error
	if analysisErr != nil {
		fmt.Fprintf(&modifiedEmail, "X-Phishing-Analysis-Error: %s\r\n", analysisErr.Error())
	}

	// Modify the subject if it's phishing and subject modification is enabled
	rewriteSubject := isPhishing && s.filter.modifySubject && s.filter.subjectPrefix != ""
	if rewriteSubject {
		originalSubject := msg.Header.Get("Subject")

		// Decode the subject if it's encoded
		decodedSubject, err := decodeEncodedHeader(originalSubject)
		if err != nil {
			decodedSubject = originalSubject
		}

		if !strings.HasPrefix(decodedSubject, s.filter.subjectPrefix) {
			fmt.Fprintf(&modifiedEmail, "Subject: %s\r\n", s.filter.subjectPrefix+decodedSubject)
		} else {
			// Subject already carries the prefix
			rewriteSubject = false
		}
	}

	for key, values := range msg.Header {
		if rewriteSubject && strings.EqualFold(key, "Subject") {
			continue
		}
		for _, value := range values {
			fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", key, value)
		}
	}

	// End of headers
	fmt.Fprintf(&modifiedEmail, "\r\n")

	// Find where the original body starts in the raw data so that all
	// MIME parts and attachments are preserved byte for byte
	bodyStartIndex := bytes.Index(rawData, []byte("\r\n\r\n"))
	if bodyStartIndex == -1 {
		bodyStartIndex = bytes.Index(rawData, []byte("\n\n"))
		if bodyStartIndex == -1 {
			// No header separator found, forward the parsed body as is
			bodyBytes, err := io.ReadAll(msg.Body)
			if err != nil {
				s.filter.logger.Error("Failed to read message body", zap.Error(err))
				return err
			}
			modifiedEmail.Write(bodyBytes)
		} else {
			modifiedEmail.Write(rawData[bodyStartIndex+2:])
		}
	} else {
		modifiedEmail.Write(rawData[bodyStartIndex+4:])
	}

	if s.filter.relayAddr != "" {
		// Send the email on to the relay
		if err := s.filter.relay(s.sender, s.recipients, modifiedEmail.Bytes()); err != nil {
			s.filter.logger.Error("Failed to relay email",
				zap.Error(err),
				zap.String("sender", sample.From))
			return err
		}
	} else {
		s.filter.logger.Warn("Relay address not configured, message not forwarded")
	}

	s.filter.logger.Info("Processed email",
		zap.String("from", sample.From),
		zap.String("sender_domain", senderDomain),
		zap.String("classification", report.Classification),
		zap.Float64("confidence", report.Confidence),
		zap.Float64("url_risk", report.URLAnalysis.OverallRisk))

	return nil
}

// Logout handles SMTP logout (not needed for our filter)
func (s *smtpSession) Logout() error {
	return nil
}
