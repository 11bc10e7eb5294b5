package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gdnc/invoice-automation/internal/models"
)

// DeliveryRepository handles e-mail delivery records
type DeliveryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(db *sql.DB, logger *zap.Logger) *DeliveryRepository {
	return &DeliveryRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a delivery attempt and sets its ID
func (r *DeliveryRepository) Create(d *models.Delivery) error {
	query := `
		INSERT INTO deliveries (
			invoice_number, recipient, subject, attachment_path, run_id, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	if d.Status == "" {
		d.Status = models.DeliveryStatusPending
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(query,
		d.InvoiceNumber,
		d.Recipient,
		d.Subject,
		d.AttachmentPath,
		d.RunID,
		d.Status,
		d.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create delivery", zap.String("invoice_number", d.InvoiceNumber), zap.Error(err))
		return fmt.Errorf("failed to create delivery: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	d.ID = id
	return nil
}

// MarkSent records a successful delivery
func (r *DeliveryRepository) MarkSent(id int64, sentAt time.Time) error {
	return r.updateStatus(id, models.DeliveryStatusSent, "", &sentAt)
}

// MarkFailed records a failed delivery and its reason
func (r *DeliveryRepository) MarkFailed(id int64, reason string) error {
	return r.updateStatus(id, models.DeliveryStatusFailed, reason, nil)
}

func (r *DeliveryRepository) updateStatus(id int64, status, reason string, sentAt *time.Time) error {
	query := `
		UPDATE deliveries
		SET status = ?, error_message = ?, sent_at = ?
		WHERE id = ?
	`

	var sent interface{}
	if sentAt != nil {
		sent = *sentAt
	}

	result, err := r.db.Exec(query, status, reason, sent, id)
	if err != nil {
		r.logger.Error("Failed to update delivery", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update delivery: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delivery %d not found", id)
	}
	return nil
}

// ListByInvoiceNumber returns the delivery attempts of an invoice, oldest first
func (r *DeliveryRepository) ListByInvoiceNumber(invoiceNumber string) ([]*models.Delivery, error) {
	query := `
		SELECT id, invoice_number, recipient, subject, attachment_path, run_id,
			status, error_message, sent_at, created_at
		FROM deliveries
		WHERE invoice_number = ?
		ORDER BY id
	`

	rows, err := r.db.Query(query, invoiceNumber)
	if err != nil {
		r.logger.Error("Failed to list deliveries", zap.String("invoice_number", invoiceNumber), zap.Error(err))
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*models.Delivery
	for rows.Next() {
		var d models.Delivery
		var sentAt sql.NullTime

		if err := rows.Scan(
			&d.ID,
			&d.InvoiceNumber,
			&d.Recipient,
			&d.Subject,
			&d.AttachmentPath,
			&d.RunID,
			&d.Status,
			&d.ErrorMessage,
			&sentAt,
			&d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		if sentAt.Valid {
			d.SentAt = &sentAt.Time
		}
		deliveries = append(deliveries, &d)
	}

	return deliveries, rows.Err()
}
