package models

import "time"

// InvoiceRecord is one finalized invoice as stored in the ledger
type InvoiceRecord struct {
	Date           string `json:"date"`
	InvoiceNumber  string `json:"invoice_number"`
	Payer          Payer  `json:"payer"`
	DefaultProduct string `json:"default_product"` // serialized catalog lines
	CustomProduct  string `json:"custom_product"`  // serialized custom lines
	Total          string `json:"total"`
	Comment        string `json:"comment"`
}

// JournalEntry is one row of the numbering journal
type JournalEntry struct {
	Date          time.Time
	InvoiceNumber string
	Payer         string
	Total         string
	Channel       string
}

// Journal channels
const (
	ChannelMail = "Mail"
)

// Artifact is what a successful generation leaves on disk
type Artifact struct {
	InvoiceNumber string `json:"invoice_number"`
	DocumentPath  string `json:"document_path"`
	PDFPath       string `json:"pdf_path,omitempty"`
	Total         string `json:"total"`
}

// Delivery tracks one e-mail delivery attempt of an invoice
type Delivery struct {
	ID             int64      `json:"id"`
	InvoiceNumber  string     `json:"invoice_number"`
	Recipient      string     `json:"recipient"`
	Subject        string     `json:"subject"`
	AttachmentPath string     `json:"attachment_path"`
	RunID          string     `json:"run_id,omitempty"`
	Status         string     `json:"status"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Delivery status constants
const (
	DeliveryStatusPending = "PENDING"
	DeliveryStatusSent    = "SENT"
	DeliveryStatusFailed  = "FAILED"
)

// GenerationRun summarises one batch run
type GenerationRun struct {
	RunID      string     `json:"run_id"`
	Kind       string     `json:"kind"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Generated  int        `json:"generated"`
	Failed     int        `json:"failed"`
}
