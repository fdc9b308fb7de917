package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest-service/internal/domain/entity"
	"manifest-service/pkg/logger"
)

type recordingProcessor struct {
	processed []string
}

func (r *recordingProcessor) ProcessManifestEmail(_ context.Context, email *entity.Email) error {
	r.processed = append(r.processed, email.EmailID)
	return nil
}

func TestManifestHandlerCanHandle(t *testing.T) {
	adapter := NewManifestHandlerAdapter(&recordingProcessor{}, []string{"manifest", "classic vacations"})

	assert.True(t, adapter.CanHandle("Daily Manifest 10-Jul-25"))
	assert.True(t, adapter.CanHandle("FW: CLASSIC VACATIONS service update"))
	assert.False(t, adapter.CanHandle("Invoice for June"))
	assert.False(t, adapter.CanHandle(""))
}

type singleHandlerRouter struct {
	handler TemplateHandler
}

func (r *singleHandlerRouter) Register(handler TemplateHandler) { r.handler = handler }

func (r *singleHandlerRouter) GetHandler(subject string) TemplateHandler {
	if r.handler != nil && r.handler.CanHandle(subject) {
		return r.handler
	}
	return nil
}

func TestOrchestratorRoutesToHandler(t *testing.T) {
	emailRepo := newFakeEmailRepo()
	processor := &recordingProcessor{}

	router := &singleHandlerRouter{}
	router.Register(NewManifestHandlerAdapter(processor, []string{"manifest"}))

	orchestrator := NewEmailOrchestrator(emailRepo, router, logger.NewLogger())

	email := &entity.Email{
		EmailID:       "route-1",
		Subject:       "Daily Manifest",
		ReceivedAt:    time.Now(),
		ProcessStatus: entity.StatusPending,
	}
	emailRepo.emails[email.EmailID] = email

	require.NoError(t, orchestrator.ProcessEmail(context.Background(), email))
	assert.Equal(t, []string{"route-1"}, processor.processed)
}

func TestOrchestratorSkipsUnmatchedSubject(t *testing.T) {
	emailRepo := newFakeEmailRepo()
	processor := &recordingProcessor{}

	router := &singleHandlerRouter{}
	router.Register(NewManifestHandlerAdapter(processor, []string{"manifest"}))

	orchestrator := NewEmailOrchestrator(emailRepo, router, logger.NewLogger())

	email := &entity.Email{
		EmailID:       "route-2",
		Subject:       "Monthly newsletter",
		ReceivedAt:    time.Now(),
		ProcessStatus: entity.StatusPending,
	}
	emailRepo.emails[email.EmailID] = email

	require.NoError(t, orchestrator.ProcessEmail(context.Background(), email))

	assert.Empty(t, processor.processed)
	assert.Equal(t, entity.StatusSkipped, emailRepo.finalStatus)
	assert.Equal(t, "No matching handler found", emailRepo.errorDetail)
}
