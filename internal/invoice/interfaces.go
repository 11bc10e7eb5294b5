package invoice

import (
	"context"
	"time"

	"github.com/gdnc/invoice-automation/internal/document"
	"github.com/gdnc/invoice-automation/internal/email"
	"github.com/gdnc/invoice-automation/internal/models"
)

// LedgerInterface is the durable invoice store and the source of invoice numbers
type LedgerInterface interface {
	InvoiceNumbers() ([]string, error)
	Append(rec models.InvoiceRecord) error
}

// JournalInterface records issued numbers in the numbering workbook
type JournalInterface interface {
	Append(entry models.JournalEntry) error
}

// TemplateLoaderInterface returns a fresh template for the given line count
type TemplateLoaderInterface interface {
	Load(itemCount int) (*document.Document, error)
}

// ArtifactStoreInterface writes and removes generated files
type ArtifactStoreInterface interface {
	Save(name string, content []byte) (string, error)
	Remove(paths ...string) error
}

// GeneratorInterface produces one invoice
type GeneratorInterface interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// DelivererInterface mails one invoice
type DelivererInterface interface {
	Deliver(ctx context.Context, invoiceNumber, runID string, msg email.Message) error
}

// RunStoreInterface records batch runs
type RunStoreInterface interface {
	Start(run *models.GenerationRun) error
	Finish(runID string, generated, failed int, finishedAt time.Time) error
}
