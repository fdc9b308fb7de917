package usecase

import (
	"context"
	"fmt"
	"time"

	"manifest-service/internal/domain/entity"
	"manifest-service/internal/domain/repository"
	"manifest-service/pkg/logger"
)

// EmailOrchestrator manages email processing with registered handlers
type EmailOrchestrator struct {
	emailRepo repository.EmailRepository
	router    SubjectRouter
	logger    logger.Logger
}

// NewEmailOrchestrator creates a new email orchestrator
func NewEmailOrchestrator(
	emailRepo repository.EmailRepository,
	router SubjectRouter,
	logger logger.Logger,
) *EmailOrchestrator {
	return &EmailOrchestrator{
		emailRepo: emailRepo,
		router:    router,
		logger:    logger,
	}
}

// ProcessEmail routes a single email to its handler
func (o *EmailOrchestrator) ProcessEmail(ctx context.Context, email *entity.Email) error {
	handler := o.router.GetHandler(email.Subject)
	if handler == nil {
		o.logger.Debug("No handler found for email",
			"subject", email.Subject,
			"emailId", email.EmailID)

		// Not an error, just no matching template
		return o.emailRepo.MarkAsProcessedByEmailID(
			ctx,
			email.EmailID,
			entity.StatusSkipped,
			"none",
			"No matching handler found",
			map[string]interface{}{
				"subject": email.Subject,
				"reason":  "no_matching_template",
			},
		)
	}

	handlerType := fmt.Sprintf("%T", handler)
	o.logger.Info("Processing email with handler",
		"emailId", email.EmailID,
		"handler", handlerType,
		"subject", email.Subject)

	if err := o.emailRepo.UpdateStatusByEmailID(ctx, email.EmailID, entity.StatusProcessing, time.Now()); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	if err := handler.Process(ctx, email); err != nil {
		o.logger.Error("Handler failed to process email",
			"emailId", email.EmailID,
			"handler", handlerType,
			"error", err)

		// Mark as failed but let other emails continue
		o.emailRepo.MarkAsProcessedByEmailID(
			ctx,
			email.EmailID,
			entity.StatusFailed,
			handlerType,
			err.Error(),
			nil,
		)
		return nil
	}

	return nil
}

// ProcessPendingEmails processes any emails that were missed or failed
func (o *EmailOrchestrator) ProcessPendingEmails(ctx context.Context) error {
	// Reset stale processing emails
	if err := o.emailRepo.ResetProcessingEmails(ctx); err != nil {
		o.logger.Error("Failed to reset stale emails", "error", err)
	}

	emails, err := o.emailRepo.FindUnprocessed(ctx, 100)
	if err != nil {
		return fmt.Errorf("failed to find unprocessed emails: %w", err)
	}

	if len(emails) == 0 {
		return nil
	}

	o.logger.Info("Processing pending emails", "count", len(emails))

	for _, email := range emails {
		if err := o.ProcessEmail(ctx, email); err != nil {
			o.logger.Error("Failed to process pending email",
				"emailId", email.EmailID,
				"error", err)
		}
	}

	return nil
}
