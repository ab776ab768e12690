package ports

import (
	"context"

	"github.com/edushield/phishing-filter/internal/core"
)

// EmailFilter defines the interface for email filtering front ends
type EmailFilter interface {
	// ProcessEmail analyzes an email and returns the report
	ProcessEmail(ctx context.Context, sample *core.EmailSample) (*core.Report, error)

	// Start starts the email filter service
	Start() error

	// Stop stops the email filter service
	Stop() error
}
