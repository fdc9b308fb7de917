package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"manifest-service/internal/domain/entity"
	"manifest-service/internal/domain/repository"
	"manifest-service/pkg/logger"
	"manifest-service/pkg/manifest"
	"manifest-service/pkg/metrics"

	"github.com/google/uuid"
)

// ManifestProcessor turns stored manifest emails into orders. Each
// parsed service carries an action that decides how it is applied:
// New creates, Change updates, Cancel marks the order cancelled.
type ManifestProcessor struct {
	emailRepo repository.EmailRepository
	orderRepo repository.OrderRepository
	parser    *manifest.Parser
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewManifestProcessor creates a new manifest processor
func NewManifestProcessor(
	emailRepo repository.EmailRepository,
	orderRepo repository.OrderRepository,
	parser *manifest.Parser,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *ManifestProcessor {
	return &ManifestProcessor{
		emailRepo: emailRepo,
		orderRepo: orderRepo,
		parser:    parser,
		metrics:   metrics,
		logger:    logger,
	}
}

// ProcessManifestEmail processes a single manifest email end to end
func (mp *ManifestProcessor) ProcessManifestEmail(ctx context.Context, email *entity.Email) error {
	start := time.Now()
	mp.logger.Info("Starting manifest processing", "emailId", email.EmailID, "subject", email.Subject)

	if err := mp.emailRepo.UpdateStatusByEmailID(ctx, email.EmailID, entity.StatusProcessing, time.Now()); err != nil {
		mp.logger.Error("Failed to update status to PROCESSING", "error", err)
		return err
	}

	batchID := uuid.NewString()
	steps := entity.ProcessSteps{}

	var services []*manifest.ParsedService
	var parseErrors, parseWarnings []string

	for _, att := range email.Attachments {
		if !isManifestDocument(att.Filename) {
			continue
		}
		steps.AttachmentsFound++

		res := mp.parser.ParseAttachment(att.Filename, bytes.NewReader(att.Data), int64(len(att.Data)))
		steps.ManifestsParsed++

		services = append(services, res.Services...)
		parseErrors = append(parseErrors, res.Errors...)
		parseWarnings = append(parseWarnings, res.Warnings...)
	}

	// Manifests occasionally arrive pasted into the email body rather
	// than attached.
	if steps.AttachmentsFound == 0 && strings.TrimSpace(email.Body) != "" {
		res := mp.parser.Parse(email.Body)
		steps.ManifestsParsed++
		services = append(services, res.Services...)
		parseErrors = append(parseErrors, res.Errors...)
		parseWarnings = append(parseWarnings, res.Warnings...)
	}

	steps.ServicesExtracted = len(services)
	steps.ParseCompleted = true
	mp.emailRepo.UpdateProcessStepsByEmailID(ctx, email.EmailID, steps)
	mp.metrics.ServicesExtracted.Add(float64(len(services)))

	ordersApplied := 0
	var applyErrors []string

	for _, svc := range services {
		warn, err := mp.applyService(ctx, email.EmailID, batchID, svc)
		if warn != "" {
			parseWarnings = append(parseWarnings, warn)
		}
		if err != nil {
			mp.logger.Error("Failed to apply service", "serviceId", svc.ServiceID, "action", svc.Action, "error", err)
			mp.metrics.ErrorsCount.WithLabelValues("apply_service").Inc()
			applyErrors = append(applyErrors, fmt.Sprintf("service %s: %v", svc.ServiceID, err))
			continue
		}
		ordersApplied++
		mp.metrics.OrdersCreated.WithLabelValues(string(svc.Action)).Inc()

		steps.OrdersApplied = ordersApplied
		mp.emailRepo.UpdateProcessStepsByEmailID(ctx, email.EmailID, steps)
	}

	allErrors := append(parseErrors, applyErrors...)

	finalStatus := entity.StatusCompleted
	errorDetail := ""

	switch {
	case len(services) == 0 && len(allErrors) > 0:
		finalStatus = entity.StatusFailed
		errorDetail = strings.Join(allErrors, "; ")
	case len(services) == 0:
		finalStatus = entity.StatusSkipped
		errorDetail = "No services found in manifest"
	case ordersApplied == 0 && len(applyErrors) > 0:
		finalStatus = entity.StatusFailed
		errorDetail = strings.Join(allErrors, "; ")
	case len(allErrors) > 0:
		errorDetail = fmt.Sprintf("Partially completed: %d/%d orders applied. Errors: %s",
			ordersApplied, len(services), strings.Join(allErrors, "; "))
	}

	extractedData := map[string]interface{}{
		"batchId":           batchID,
		"attachmentsFound":  steps.AttachmentsFound,
		"servicesExtracted": len(services),
		"ordersApplied":     ordersApplied,
		"parserErrors":      allErrors,
		"parserWarnings":    parseWarnings,
	}

	if err := mp.emailRepo.MarkAsProcessedByEmailID(ctx, email.EmailID, finalStatus, "manifest", errorDetail, extractedData); err != nil {
		mp.logger.Error("Failed to mark email as processed", "error", err)
		return err
	}

	mp.metrics.ManifestsProcessed.Inc()
	mp.metrics.ProcessingTime.Observe(time.Since(start).Seconds())

	mp.logger.Info("Manifest processing completed",
		"emailId", email.EmailID,
		"status", finalStatus,
		"services", len(services),
		"ordersApplied", ordersApplied,
		"warnings", len(parseWarnings))

	return nil
}

// applyService maps one parsed service onto the order store. The
// returned warning covers expected data-quality situations (duplicate
// creation, cancel for an unknown booking); the error covers storage
// failures.
func (mp *ManifestProcessor) applyService(ctx context.Context, emailID, batchID string, svc *manifest.ParsedService) (string, error) {
	switch svc.Action {
	case manifest.ActionNew:
		existing, err := mp.orderRepo.FindByServiceID(ctx, svc.ServiceID)
		if err != nil {
			return "", err
		}
		if existing != nil {
			// Same booking re-sent as [New]: refresh the stored fields
			// instead of duplicating the order.
			mp.updateFromService(existing, emailID, batchID, svc)
			return fmt.Sprintf("booking %s already exists, order refreshed", svc.ServiceID),
				mp.orderRepo.Update(ctx, existing)
		}
		return "", mp.orderRepo.Create(ctx, mp.orderFromService(emailID, batchID, svc))

	case manifest.ActionChange:
		existing, err := mp.orderRepo.FindByServiceID(ctx, svc.ServiceID)
		if err != nil {
			return "", err
		}
		if existing == nil {
			// A change for a booking we never saw: create it, but flag
			// for review since the original order is unknown.
			order := mp.orderFromService(emailID, batchID, svc)
			order.Status = entity.OrderStatusRequiresAttention
			order.RequiresAttention = true
			return fmt.Sprintf("change for unknown booking %s, created for review", svc.ServiceID),
				mp.orderRepo.Create(ctx, order)
		}
		mp.updateFromService(existing, emailID, batchID, svc)
		existing.Status = entity.OrderStatusModified
		return "", mp.orderRepo.Update(ctx, existing)

	case manifest.ActionCancel:
		if err := mp.orderRepo.Cancel(ctx, svc.ServiceID); err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return fmt.Sprintf("cancel for unknown booking %s ignored", svc.ServiceID), nil
			}
			return "", err
		}
		return "", nil

	default:
		return "", fmt.Errorf("unknown action %q for booking %s", svc.Action, svc.ServiceID)
	}
}

// ProcessPendingEmails processes unprocessed emails with safety checks
func (mp *ManifestProcessor) ProcessPendingEmails(ctx context.Context) error {
	// First, reset any stale processing emails
	if err := mp.emailRepo.ResetProcessingEmails(ctx); err != nil {
		mp.logger.Error("Failed to reset stale processing emails", "error", err)
	}

	emails, err := mp.emailRepo.FindUnprocessed(ctx, 100)
	if err != nil {
		mp.logger.Error("Failed to get unprocessed emails", "error", err)
		return err
	}

	if len(emails) == 0 {
		return nil
	}

	mp.logger.Info("Found unprocessed emails", "count", len(emails))

	successCount := 0
	failCount := 0

	for _, email := range emails {
		if err := mp.ProcessManifestEmail(ctx, email); err != nil {
			mp.logger.Error("Failed to process email", "emailId", email.EmailID, "error", err)
			failCount++
		} else {
			successCount++
		}
	}

	mp.logger.Info("Manifest batch completed",
		"total", len(emails),
		"success", successCount,
		"failed", failCount)

	return nil
}

func (mp *ManifestProcessor) orderFromService(emailID, batchID string, svc *manifest.ParsedService) *entity.Order {
	status := entity.OrderStatusPending
	requiresAttention := len(svc.MissingDataFlags) > 0
	if requiresAttention {
		status = entity.OrderStatusRequiresAttention
	}

	return &entity.Order{
		ServiceID:              svc.ServiceID,
		Action:                 string(svc.Action),
		ServiceDate:            svc.ServiceDate,
		ServiceType:            svc.ServiceType,
		Description:            svc.Description,
		VehicleModel:           svc.VehicleModel,
		VehicleCapacity:        svc.VehicleCapacity,
		PassengerCountAdults:   svc.PassengerCountAdults,
		PassengerCountChildren: svc.PassengerCountChildren,
		PassengerNames:         svc.PassengerNames,
		ContactPhone:           svc.ContactPhone,
		ContactEmail:           svc.ContactEmail,
		PickupLocation:         svc.PickupLocation,
		DropoffLocation:        svc.DropoffLocation,
		PickupAddress:          svc.PickupAddress,
		DropoffAddress:         svc.DropoffAddress,
		PickupTime:             svc.PickupTime,
		PickupTimeConfirmed:    svc.PickupTimeConfirmed,
		FlightNumber:           svc.FlightNumber,
		TrainDetails:           svc.TrainDetails,
		OperatorComments:       svc.OperatorComments,
		SupplierComments:       svc.SupplierComments,
		Status:                 status,
		MissingDataFlags:       svc.MissingDataFlags,
		RequiresAttention:      requiresAttention,
		SourceEmailID:          emailID,
		BatchID:                batchID,
		RawBlock:               svc.RawData["original_block"],
		ProcessedAt:            time.Now(),
	}
}

func (mp *ManifestProcessor) updateFromService(order *entity.Order, emailID, batchID string, svc *manifest.ParsedService) {
	fresh := mp.orderFromService(emailID, batchID, svc)
	fresh.ID = order.ID
	*order = *fresh
}

func isManifestDocument(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".docx")
}
