package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"manifest-service/internal/domain/entity"
	"manifest-service/internal/domain/repository"
	"manifest-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailService handles interaction with the Gmail API
type GmailService struct {
	gmailService    *gmail.Service
	emailRepo       repository.EmailRepository
	logger          logger.Logger
	pollInterval    time.Duration
	subjectKeywords []string
}

// NewGmailService creates a new Gmail service
func NewGmailService(ctx context.Context, tokenSource oauth2.TokenSource, emailRepo repository.EmailRepository, logger logger.Logger, pollInterval time.Duration, subjectKeywords []string) (*GmailService, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &GmailService{
		gmailService:    service,
		emailRepo:       emailRepo,
		logger:          logger,
		pollInterval:    pollInterval,
		subjectKeywords: subjectKeywords,
	}, nil
}

// FetchEmails fetches new manifest emails from Gmail
func (s *GmailService) FetchEmails(ctx context.Context) error {
	lastEmail, _ := s.emailRepo.GetLastEmail(ctx)
	var fetchFrom time.Time
	var hasLastEmail bool

	if lastEmail != nil && !lastEmail.ReceivedAt.IsZero() {
		fetchFrom = lastEmail.ReceivedAt
		hasLastEmail = true
		s.logger.Info("Using last received email time",
			"lastReceivedEmailTime", fetchFrom.Format("2006-01-02 15:04:05 UTC"))
	} else {
		// Default starting point
		fetchFrom = time.Now().AddDate(0, -1, 0)
		s.logger.Info("No previous emails, using default start date",
			"startDate", fetchFrom.Format("2006-01-02 15:04:05 UTC"))
	}

	queryDate := fetchFrom
	if hasLastEmail {
		// Go back 3 days to catch any emails we might have missed
		queryDate = fetchFrom.AddDate(0, 0, -3)
	}

	query := fmt.Sprintf("after:%s", queryDate.Format("2006/01/02"))
	s.logger.Info("Querying Gmail",
		"query", query,
		"actualCutoffTime", fetchFrom.Format("2006-01-02 15:04:05 UTC"))

	req := s.gmailService.Users.Messages.List("me").Q(query)
	resp, err := req.Do()
	if err != nil {
		s.logger.Error("Failed to list messages", "error", err)
		return err
	}

	if len(resp.Messages) == 0 {
		s.logger.Info("No new messages found")
		return nil
	}

	emailIDs := make([]string, len(resp.Messages))
	for i, msg := range resp.Messages {
		emailIDs[i] = msg.Id
	}

	existingEmails, err := s.emailRepo.FindByEmailIDs(ctx, emailIDs)
	if err != nil {
		s.logger.Error("Failed to batch check existing emails", "error", err)
		existingEmails = make(map[string]*entity.Email)
	}

	newEmailsCount := 0
	skippedOldCount := 0
	skippedExistingCount := 0

	for _, msg := range resp.Messages {
		// Skip if already in database
		if _, exists := existingEmails[msg.Id]; exists {
			s.logger.Debug("Email already exists in database", "emailId", msg.Id)
			skippedExistingCount++
			continue
		}

		fullMsg, err := s.gmailService.Users.Messages.Get("me", msg.Id).Do()
		if err != nil {
			s.logger.Error("Failed to get message", "emailId", msg.Id, "error", err)
			continue
		}

		messageTime := time.Unix(0, fullMsg.InternalDate*int64(time.Millisecond))

		if hasLastEmail && !messageTime.After(fetchFrom) {
			s.logger.Debug("Message timestamp not after last received email time",
				"messageId", msg.Id,
				"messageTime", messageTime.Format("2006-01-02 15:04:05 UTC"),
				"lastReceivedTime", fetchFrom.Format("2006-01-02 15:04:05 UTC"))
			skippedOldCount++
			continue
		}

		// Convert to domain entity
		email, err := s.convertToEmail(fullMsg)
		if err != nil {
			s.logger.Error("Failed to convert message", "emailId", msg.Id, "error", err)
			continue
		}

		// Apply subject filter
		if !s.FilterPattern(email.Subject) {
			s.logger.Debug("Email doesn't match subject filter", "subject", email.Subject)
			continue
		}

		s.logger.Info("Storing new manifest email",
			"subject", email.Subject,
			"emailId", email.EmailID,
			"attachments", len(email.Attachments),
			"receivedAt", email.ReceivedAt.Format("2006-01-02 15:04:05 UTC"))

		if err := s.emailRepo.Save(ctx, email); err != nil {
			s.logger.Error("Failed to save email", "emailId", msg.Id, "error", err)
			continue
		}

		newEmailsCount++
	}

	s.logger.Info("Email fetch completed",
		"totalFromGmail", len(resp.Messages),
		"alreadyInDB", skippedExistingCount,
		"skippedOld", skippedOldCount,
		"newEmails", newEmailsCount)

	return nil
}

// StartPolling starts polling Gmail for new emails
func (s *GmailService) StartPolling(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Gmail polling stopped")
			return
		case <-ticker.C:
			s.logger.Info("Polling Gmail for new emails")
			if err := s.FetchEmails(ctx); err != nil {
				s.logger.Error("Error polling Gmail", "error", err)
			}
		}
	}
}

// FilterPattern reports whether a subject looks like a manifest email
func (s *GmailService) FilterPattern(subject string) bool {
	lower := strings.ToLower(subject)
	for _, keyword := range s.subjectKeywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// convertToEmail converts a Gmail message to our domain entity
func (s *GmailService) convertToEmail(msg *gmail.Message) (*entity.Email, error) {
	email := &entity.Email{
		EmailID: msg.Id,
		Labels:  msg.LabelIds,
	}

	// Extract header information
	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			email.From = header.Value
		case "To":
			email.To = header.Value
		case "Subject":
			email.Subject = header.Value
		}
	}

	// Extract message body
	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(msg.Payload.Body.Data)
		if err != nil {
			return nil, err
		}
		email.Body = string(data)
	}

	// Handle multipart messages: text parts plus .docx attachments
	for _, part := range msg.Payload.Parts {
		switch {
		case part.MimeType == "text/plain" && part.Body != nil:
			data, err := base64.URLEncoding.DecodeString(part.Body.Data)
			if err != nil {
				continue
			}
			email.Body = string(data)
		case part.MimeType == "text/html" && part.Body != nil:
			data, err := base64.URLEncoding.DecodeString(part.Body.Data)
			if err != nil {
				continue
			}
			email.HTMLBody = string(data)
		case part.Filename != "" && part.Body != nil:
			data := part.Body.Data
			if data == "" && part.Body.AttachmentId != "" {
				att, err := s.gmailService.Users.Messages.Attachments.Get("me", msg.Id, part.Body.AttachmentId).Do()
				if err != nil {
					s.logger.Error("Failed to download attachment",
						"emailId", msg.Id,
						"filename", part.Filename,
						"error", err)
					continue
				}
				data = att.Data
			}

			decoded, err := base64.URLEncoding.DecodeString(data)
			if err != nil {
				continue
			}

			email.Attachments = append(email.Attachments, entity.Attachment{
				Filename:    part.Filename,
				ContentType: part.MimeType,
				Data:        decoded,
			})
		}
	}

	email.ReceivedAt = time.Unix(0, msg.InternalDate*int64(time.Millisecond))

	return email, nil
}
