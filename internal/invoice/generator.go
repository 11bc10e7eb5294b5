package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gdnc/invoice-automation/internal/catalog"
	"github.com/gdnc/invoice-automation/internal/convert"
	"github.com/gdnc/invoice-automation/internal/document"
	"github.com/gdnc/invoice-automation/internal/models"
	"github.com/gdnc/invoice-automation/internal/numbering"
	"github.com/gdnc/invoice-automation/internal/order"
	"github.com/gdnc/invoice-automation/pkg/utils"
)

// ErrNoCatalog is returned when no catalog is configured for a payer kind
var ErrNoCatalog = errors.New("no catalog configured for payer kind")

// Request is everything needed to issue one invoice
type Request struct {
	Kind       string // models.PayerSponsor (default) or models.PayerRegistrant
	Payer      models.Payer
	Selections []order.Selection
	Comment    string
}

// Result describes an issued invoice
type Result struct {
	Artifact models.Artifact
	Record   models.InvoiceRecord
	Order    *order.Order
	Report   document.Report

	// Non-fatal step failures. The invoice is issued regardless.
	ConversionErr error
	JournalErr    error
}

// Attachment is the file to send: the PDF when conversion succeeded, else the document
func (r *Result) Attachment() string {
	if r.Artifact.PDFPath != "" {
		return r.Artifact.PDFPath
	}
	return r.Artifact.DocumentPath
}

// Settings tune dates and rendering
type Settings struct {
	PaymentTermDays   int // deadline = issue date + PaymentTermDays
	SponsorIssueDelay int // sponsor invoices are dated this many days ahead
	Render            document.Options
	Debug             bool // adds a _DEBUG suffix to artifact names
}

// DefaultSettings returns 30-day terms, sponsor invoices dated tomorrow
func DefaultSettings() Settings {
	return Settings{
		PaymentTermDays:   30,
		SponsorIssueDelay: 1,
		Render:            document.DefaultOptions(),
	}
}

// Dependencies are the collaborators of a Generator. Journal and Converter may be nil.
type Dependencies struct {
	Catalogs  map[string]*catalog.Catalog // keyed by payer kind
	Templates TemplateLoaderInterface
	Ledger    LedgerInterface
	Journal   JournalInterface
	Store     ArtifactStoreInterface
	Converter convert.Converter
}

// Generator issues invoices one at a time
type Generator struct {
	deps     Dependencies
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
	mu       sync.Mutex
}

// NewGenerator creates a new Generator
func NewGenerator(deps Dependencies, settings Settings, logger *zap.Logger) *Generator {
	if deps.Converter == nil {
		deps.Converter = convert.Noop{}
	}
	return &Generator{
		deps:     deps,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Quote validates and prices selections for kind without issuing anything
func (g *Generator) Quote(kind string, selections []order.Selection) (*order.Order, error) {
	cat, err := g.catalog(kind)
	if err != nil {
		return nil, err
	}
	return order.Build(cat, selections)
}

// NextNumber returns the number the next invoice will carry
func (g *Generator) NextNumber() (numbering.Number, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return numbering.NewAllocator(g.deps.Ledger, g.now).Next()
}

// Generate issues one invoice. Nothing is written before the payer and the
// order are valid, and the number is only consumed by the ledger append.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	kind := req.Kind
	if kind == "" {
		kind = models.PayerSponsor
	}

	// Step 1: Validate payer
	if err := ValidatePayer(kind, req.Payer); err != nil {
		return nil, err
	}

	// Step 2: Build order
	o, err := g.Quote(kind, req.Selections)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 3: Allocate number
	now := g.now()
	number, err := numbering.NewAllocator(g.deps.Ledger, func() time.Time { return now }).Next()
	if err != nil {
		g.logger.Error("Failed to allocate invoice number", zap.Error(err))
		return nil, fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	numberStr := number.String()
	log := g.logger.With(zap.String("invoice_number", numberStr))
	log.Info("Invoice number allocated",
		zap.String("payer", req.Payer.DisplayName(kind)),
		zap.Int("items", o.Len()))

	// Step 4: Render in memory
	header := g.header(kind, numberStr, now)
	data, report, err := g.render(o, header, req.Payer)
	if err != nil {
		log.Error("Failed to render invoice", zap.Error(err))
		return nil, err
	}
	log.Info("Invoice rendered",
		zap.Int("paragraphs_rewritten", report.Rewritten))

	// Step 5: Write document
	docPath, err := g.deps.Store.Save(document.OutputName(numberStr, g.settings.Debug), data)
	if err != nil {
		log.Error("Failed to write invoice document", zap.Error(err))
		return nil, fmt.Errorf("failed to write invoice %s: %w", numberStr, err)
	}

	result := &Result{
		Order:  o,
		Report: report,
		Artifact: models.Artifact{
			InvoiceNumber: numberStr,
			DocumentPath:  docPath,
			Total:         order.FormatAmount(o.Total()),
		},
	}

	// Step 6: Convert (non-fatal)
	pdfPath, err := g.deps.Converter.Convert(ctx, docPath)
	if err != nil {
		log.Warn("Invoice conversion failed, keeping the document only", zap.Error(err))
		result.ConversionErr = err
	} else if pdfPath != "" {
		result.Artifact.PDFPath = pdfPath
		log.Info("Invoice converted", zap.String("path", pdfPath))
	}

	// Step 7: Append to ledger
	record, err := g.record(kind, req, o, numberStr, now)
	if err != nil {
		g.discard(log, result.Artifact)
		return nil, err
	}
	if err := g.deps.Ledger.Append(record); err != nil {
		log.Error("Failed to append invoice to ledger", zap.Error(err))
		g.discard(log, result.Artifact)
		return nil, fmt.Errorf("failed to record invoice %s: %w", numberStr, err)
	}
	result.Record = record
	log.Info("Invoice recorded in ledger", zap.String("total", record.Total))

	// Step 8: Journal (non-fatal)
	if g.deps.Journal != nil {
		entry := models.JournalEntry{
			Date:          now,
			InvoiceNumber: numberStr,
			Payer:         req.Payer.DisplayName(kind),
			Total:         record.Total,
			Channel:       models.ChannelMail,
		}
		if err := g.deps.Journal.Append(entry); err != nil {
			log.Warn("Failed to update numbering journal", zap.Error(err))
			result.JournalErr = err
		} else {
			log.Info("Numbering journal updated")
		}
	}

	return result, nil
}

func (g *Generator) catalog(kind string) (*catalog.Catalog, error) {
	cat, ok := g.deps.Catalogs[kind]
	if !ok || cat == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCatalog, kind)
	}
	return cat, nil
}

func (g *Generator) header(kind, number string, now time.Time) document.Header {
	issued := now
	if kind == models.PayerSponsor {
		issued = now.AddDate(0, 0, g.settings.SponsorIssueDelay)
	}
	return document.Header{
		Number:   number,
		Issued:   issued,
		Deadline: issued.AddDate(0, 0, g.settings.PaymentTermDays),
	}
}

func (g *Generator) render(o *order.Order, h document.Header, p models.Payer) ([]byte, document.Report, error) {
	tmpl, err := g.deps.Templates.Load(o.Len())
	if err != nil {
		return nil, document.Report{}, err
	}

	opts := g.settings.Render
	opts.Required = document.RequiredTokens(o.Len())
	rendered, report, err := tmpl.Render(document.Placeholders(o, h, p), opts)
	if err != nil {
		return nil, report, err
	}

	data, err := rendered.Bytes()
	if err != nil {
		return nil, report, err
	}
	return data, report, nil
}

func (g *Generator) record(kind string, req Request, o *order.Order, number string, now time.Time) (models.InvoiceRecord, error) {
	catalogJSON, customJSON, err := serializeProducts(o)
	if err != nil {
		return models.InvoiceRecord{}, fmt.Errorf("failed to serialize order lines: %w", err)
	}
	return models.InvoiceRecord{
		Date:           now.Format(document.DateLayout),
		InvoiceNumber:  number,
		Payer:          req.Payer,
		DefaultProduct: catalogJSON,
		CustomProduct:  customJSON,
		Total:          order.FormatAmount(o.Total()),
		Comment:        req.Comment,
	}, nil
}

// discard removes the files of an invoice whose number was not consumed
func (g *Generator) discard(log *zap.Logger, a models.Artifact) {
	if err := g.deps.Store.Remove(a.DocumentPath, a.PDFPath); err != nil {
		log.Warn("Failed to remove unrecorded invoice files", zap.Error(err))
		return
	}
	log.Info("Removed unrecorded invoice files")
}

// ValidatePayer rejects a payer with blank required fields or a malformed e-mail
func ValidatePayer(kind string, p models.Payer) error {
	if missing := p.MissingFields(kind); len(missing) > 0 {
		return order.NewValidationError(strings.Join(missing, ", "), "required field is empty")
	}
	if err := utils.ValidateEmail(strings.TrimSpace(p.Email)); err != nil {
		return order.NewValidationError("email", err.Error())
	}
	return nil
}
