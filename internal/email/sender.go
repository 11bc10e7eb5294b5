package email

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gdnc/invoice-automation/internal/models"
)

// DeliveryStore records delivery attempts
type DeliveryStore interface {
	Create(d *models.Delivery) error
	MarkSent(id int64, sentAt time.Time) error
	MarkFailed(id int64, reason string) error
}

// Sender mails invoices and keeps a record of every attempt
type Sender struct {
	mailer Mailer
	store  DeliveryStore
	logger *zap.Logger
	now    func() time.Time
}

// NewSender creates a new invoice sender. store may be nil.
func NewSender(mailer Mailer, store DeliveryStore, logger *zap.Logger) *Sender {
	return &Sender{
		mailer: mailer,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Deliver sends msg for invoiceNumber. Bookkeeping failures are logged, not returned.
func (s *Sender) Deliver(ctx context.Context, invoiceNumber, runID string, msg Message) error {
	s.logger.Info("Sending invoice e-mail",
		zap.String("invoice_number", invoiceNumber),
		zap.String("to", msg.To))

	delivery := &models.Delivery{
		InvoiceNumber: invoiceNumber,
		Recipient:     msg.To,
		Subject:       msg.Subject,
		RunID:         runID,
		Status:        models.DeliveryStatusPending,
		CreatedAt:     s.now(),
	}
	if len(msg.Attachments) > 0 {
		delivery.AttachmentPath = msg.Attachments[0]
	}
	recorded := false
	if s.store != nil {
		if err := s.store.Create(delivery); err != nil {
			s.logger.Warn("Failed to record delivery attempt", zap.String("invoice_number", invoiceNumber), zap.Error(err))
		} else {
			recorded = true
		}
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("Failed to send invoice e-mail",
			zap.String("invoice_number", invoiceNumber),
			zap.Error(err))
		if recorded {
			if markErr := s.store.MarkFailed(delivery.ID, err.Error()); markErr != nil {
				s.logger.Warn("Failed to update delivery status", zap.Error(markErr))
			}
		}
		return fmt.Errorf("failed to send invoice %s: %w", invoiceNumber, err)
	}

	if recorded {
		if err := s.store.MarkSent(delivery.ID, s.now()); err != nil {
			s.logger.Warn("Failed to update delivery status", zap.Error(err))
		}
	}

	s.logger.Info("Invoice e-mail sent", zap.String("invoice_number", invoiceNumber))
	return nil
}
