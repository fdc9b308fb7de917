package usecase

import (
	"context"
	"strings"

	"manifest-service/internal/domain/entity"
)

// TemplateHandler defines the interface for email handlers
type TemplateHandler interface {
	// CanHandle determines if this handler can process the given email subject
	CanHandle(subject string) bool

	// Process processes the email
	Process(ctx context.Context, email *entity.Email) error
}

// SubjectRouter routes emails to the appropriate handler based on subject
type SubjectRouter interface {
	// Register registers a handler for specific subject patterns
	Register(handler TemplateHandler)

	// GetHandler returns the appropriate handler for a given subject
	GetHandler(subject string) TemplateHandler
}

// ManifestHandlerAdapter adapts the ManifestProcessor to the
// TemplateHandler interface
type ManifestHandlerAdapter struct {
	processor interface {
		ProcessManifestEmail(ctx context.Context, email *entity.Email) error
	}
	patterns []string
}

// NewManifestHandlerAdapter creates a new manifest handler adapter
func NewManifestHandlerAdapter(processor interface {
	ProcessManifestEmail(ctx context.Context, email *entity.Email) error
}, patterns []string) *ManifestHandlerAdapter {
	return &ManifestHandlerAdapter{
		processor: processor,
		patterns:  patterns,
	}
}

// CanHandle checks if this handler can process the email
func (a *ManifestHandlerAdapter) CanHandle(subject string) bool {
	for _, pattern := range a.patterns {
		if strings.Contains(strings.ToLower(subject), strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// Process processes the manifest email
func (a *ManifestHandlerAdapter) Process(ctx context.Context, email *entity.Email) error {
	return a.processor.ProcessManifestEmail(ctx, email)
}
