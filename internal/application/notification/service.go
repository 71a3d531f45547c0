package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/exportdesk/backend/internal/domain/block"
	"github.com/exportdesk/backend/internal/domain/notification"
	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLogLimit caps the email log returned for one order
const DefaultLogLimit = 50

// ErrSendFailed wraps mailer failures after the attempt was logged
var ErrSendFailed = errors.New("email delivery failed")

// NotificationService sends order emails and manages templates
type NotificationService struct {
	orderRepo       order.Repository
	blockRepo       block.Repository
	templateRepo    notification.TemplateRepository
	logRepo         notification.LogRepository
	mailer          notification.Mailer
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	orderRepo order.Repository,
	blockRepo block.Repository,
	templateRepo notification.TemplateRepository,
	logRepo notification.LogRepository,
	mailer notification.Mailer,
) *NotificationService {
	return &NotificationService{
		orderRepo:    orderRepo,
		blockRepo:    blockRepo,
		templateRepo: templateRepo,
		logRepo:      logRepo,
		mailer:       mailer,
		logger:       zap.NewNop(),
	}
}

// SetBusinessMetrics sets the business metrics recorder
func (s *NotificationService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetLogger sets the logger
func (s *NotificationService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SendOrderEmail renders a template for an order and mails it to the buyer.
// Every attempt is logged; a failed send is logged as failed and the error
// is returned wrapped in ErrSendFailed.
func (s *NotificationService) SendOrderEmail(ctx context.Context, orderID uuid.UUID, req SendEmailRequest) (*EmailLogResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.templateRepo.FindByKey(ctx, req.TemplateKey)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Email template %q not found", req.TemplateKey))
		}
		return nil, err
	}

	recipient := strings.TrimSpace(req.To)
	if recipient == "" {
		recipient = o.Buyer.Email
	}
	if recipient == "" {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Order has no buyer email; pass a recipient explicitly")
	}

	var blk *block.Block
	if o.BlockID != nil {
		blk, err = s.blockRepo.FindByID(ctx, *o.BlockID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	tokens := notification.OrderTokens(o, blk)
	for k, v := range req.Tokens {
		tokens[k] = v
	}
	rendered := tmpl.Render(tokens)

	sendErr := s.mailer.Send(ctx, notification.Message{To: recipient, Subject: rendered.Subject, Body: rendered.Body})
	entry := notification.NewEmailLog(&o.ID, tmpl.Key, recipient, rendered, sendErr)
	if err := s.logRepo.Save(ctx, entry); err != nil {
		s.logger.Error("Failed to write email log",
			zap.String("order_id", o.ID.String()),
			zap.String("template", tmpl.Key),
			zap.Error(err),
		)
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordEmail(ctx, tmpl.Key, string(entry.Status))
	}

	if sendErr != nil {
		s.logger.Warn("Order email failed",
			zap.String("order_ref", o.OrderRef),
			zap.String("template", tmpl.Key),
			zap.Error(sendErr),
		)
		return nil, fmt.Errorf("%w: %w", ErrSendFailed, sendErr)
	}

	s.logger.Info("Order email sent",
		zap.String("order_ref", o.OrderRef),
		zap.String("template", tmpl.Key),
		zap.String("recipient", recipient),
	)
	response := ToEmailLogResponse(entry)
	return &response, nil
}

// ListLogs returns the most recent emails for an order
func (s *NotificationService) ListLogs(ctx context.Context, orderID uuid.UUID) ([]EmailLogResponse, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	logs, err := s.logRepo.FindByOrder(ctx, orderID, DefaultLogLimit)
	if err != nil {
		return nil, err
	}
	out := make([]EmailLogResponse, len(logs))
	for i := range logs {
		out[i] = ToEmailLogResponse(&logs[i])
	}
	return out, nil
}

// ListTemplates returns every template
func (s *NotificationService) ListTemplates(ctx context.Context) ([]TemplateResponse, error) {
	templates, err := s.templateRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TemplateResponse, len(templates))
	for i := range templates {
		out[i] = ToTemplateResponse(&templates[i])
	}
	return out, nil
}

// GetTemplate returns one template by key
func (s *NotificationService) GetTemplate(ctx context.Context, key string) (*TemplateResponse, error) {
	t, err := s.templateRepo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	response := ToTemplateResponse(t)
	return &response, nil
}

// UpsertTemplate creates or replaces the template under key.
// The boolean reports whether it was created.
func (s *NotificationService) UpsertTemplate(ctx context.Context, key string, req UpsertTemplateRequest) (*TemplateResponse, bool, error) {
	created := false
	t, err := s.templateRepo.FindByKey(ctx, key)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		t, err = notification.NewEmailTemplate(key, req.Subject, req.Body, req.Description)
		if err != nil {
			return nil, false, err
		}
		created = true
	case err != nil:
		return nil, false, err
	default:
		if err := t.Update(key, req.Subject, req.Body, req.Description); err != nil {
			return nil, false, err
		}
	}

	if err := s.templateRepo.Save(ctx, t); err != nil {
		return nil, false, err
	}
	response := ToTemplateResponse(t)
	return &response, created, nil
}

// SeedTemplates inserts the templates whose keys are not stored yet.
// Existing templates are left untouched. It returns the inserted keys.
func (s *NotificationService) SeedTemplates(ctx context.Context, seeds []notification.EmailTemplate) ([]string, error) {
	inserted := []string{}
	for i := range seeds {
		seed := &seeds[i]
		_, err := s.templateRepo.FindByKey(ctx, seed.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return inserted, err
		}
		if err := s.templateRepo.Save(ctx, seed); err != nil {
			return inserted, fmt.Errorf("seed template %s: %w", seed.Key, err)
		}
		inserted = append(inserted, seed.Key)
	}
	if len(inserted) > 0 {
		s.logger.Info("Seeded email templates", zap.Strings("keys", inserted))
	}
	return inserted, nil
}
