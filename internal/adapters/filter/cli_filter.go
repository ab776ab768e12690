package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edushield/phishing-filter/internal/core"
)

// CliFilter implements a command-line interface for phishing detection
type CliFilter struct {
	service    *core.DetectorService
	logger     *zap.Logger
	verbose    bool
	jsonOutput bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(service *core.DetectorService, logger *zap.Logger, verbose bool, jsonOutput bool) (*CliFilter, error) {
	return &CliFilter{
		service:    service,
		logger:     logger,
		verbose:    verbose,
		jsonOutput: jsonOutput,
	}, nil
}

// ProcessEmail analyzes an email and displays the results
func (f *CliFilter) ProcessEmail(ctx context.Context, sample *core.EmailSample) (*core.Report, error) {
	f.logger.Debug("Processing email", zap.String("sender", sample.From))

	if !f.jsonOutput {
		// Print email summary
		fmt.Printf("\n=== Email Summary ===\n")
		fmt.Printf("From: %s\n", sample.From)
		fmt.Printf("To: %s\n", strings.Join(sample.To, ", "))
		fmt.Printf("Subject: %s\n", sample.Subject)
		fmt.Printf("Body length: %d bytes\n", len(sample.Body))
		if len(sample.Attachments) > 0 {
			fmt.Printf("Attachments: %s\n", strings.Join(sample.Attachments, ", "))
		}

		// Print body preview if verbose
		if f.verbose {
			preview := sample.Body
			if len(preview) > 500 {
				preview = preview[:500] + "..."
			}
			fmt.Printf("\nBody preview:\n%s\n", preview)
		}

		fmt.Printf("\n=== Analysis ===\n")
		fmt.Printf("Analyzing email...\n")
	}

	startTime := time.Now()
	report, err := f.service.Analyze(ctx, sample)
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	if f.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return nil, fmt.Errorf("failed to encode report: %w", err)
		}
		return report, nil
	}

	// Print results
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Classification: %s\n", report.Classification)
	fmt.Printf("Confidence: %.4f\n", report.Confidence)
	fmt.Printf("Base confidence: %.4f\n", report.BaseConfidence)
	fmt.Printf("Ensemble score: %.4f\n", report.EnsembleScore)
	fmt.Printf("Urgency score: %.2f/10\n", report.UrgencyScore)
	fmt.Printf("Indicator score: %.2f/10\n", report.PhishingIndicatorsScore)
	fmt.Printf("Emotional manipulation: %s (%d/100)\n",
		report.EmotionalAnalysis.Risk.Level,
		report.EmotionalAnalysis.Risk.Score)
	fmt.Printf("URL risk: %.2f/100\n", report.URLAnalysis.OverallRisk)
	if report.Language != "" {
		fmt.Printf("Language: %s\n", report.Language)
	}
	fmt.Printf("Processing time: %v\n", duration)

	if len(report.Keywords) > 0 {
		fmt.Printf("\nKeywords: %s\n", strings.Join(report.Keywords, ", "))
	}

	if len(report.RiskFactors) > 0 {
		fmt.Printf("\nRisk factors:\n")
		for _, factor := range report.RiskFactors {
			fmt.Printf("  - %s\n", factor)
		}
	}

	if f.verbose && len(report.WordAnalysis) > 0 {
		fmt.Printf("\nWord-level analysis (%d tokens)\n", len(report.WordAnalysis))
	}

	return report, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
