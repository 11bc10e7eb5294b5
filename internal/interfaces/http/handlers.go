package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gdnc/invoice-automation/internal/catalog"
	"github.com/gdnc/invoice-automation/internal/email"
	"github.com/gdnc/invoice-automation/internal/invoice"
	"github.com/gdnc/invoice-automation/internal/models"
	"github.com/gdnc/invoice-automation/internal/numbering"
	"github.com/gdnc/invoice-automation/internal/order"
)

// InvoiceService is the part of the invoice generator the form needs
type InvoiceService interface {
	Quote(kind string, selections []order.Selection) (*order.Order, error)
	NextNumber() (numbering.Number, error)
	Generate(ctx context.Context, req invoice.Request) (*invoice.Result, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	service  InvoiceService
	catalogs map[string]*catalog.Catalog
	sender   invoice.DelivererInterface // nil disables sending
	composer email.Composer
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	service InvoiceService,
	catalogs map[string]*catalog.Catalog,
	sender invoice.DelivererInterface,
	composer email.Composer,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		service:  service,
		catalogs: catalogs,
		sender:   sender,
		composer: composer,
		logger:   logger,
		now:      time.Now,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// CatalogEntryResponse is one selectable product
type CatalogEntryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

// FormValue accepts a JSON string or number, as typed in a form field
type FormValue string

// UnmarshalJSON keeps the raw text of numbers and the content of strings
func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	if string(data) == "null" {
		*v = ""
		return nil
	}
	*v = FormValue(data)
	return nil
}

// LineRequest is one order line. Catalog lines name a product, custom
// lines carry a description and a price.
type LineRequest struct {
	Product     string    `json:"product,omitempty"`
	Description string    `json:"description,omitempty"`
	Quantity    FormValue `json:"quantity"`
	Price       FormValue `json:"price,omitempty"`
}

// QuoteRequest prices lines without issuing an invoice
type QuoteRequest struct {
	Kind  string        `json:"kind"`
	Lines []LineRequest `json:"lines"`
}

// InvoiceRequest issues a sponsor invoice
type InvoiceRequest struct {
	Payer   models.Payer  `json:"payer"`
	Lines   []LineRequest `json:"lines"`
	Comment string        `json:"comment"`
	Send    bool          `json:"send"`
}

// InvoiceResponse describes an issued invoice
type InvoiceResponse struct {
	InvoiceNumber string      `json:"invoice_number"`
	DocumentPath  string      `json:"document_path"`
	PDFPath       string      `json:"pdf_path,omitempty"`
	Quote         order.Quote `json:"quote"`
	Sent          bool        `json:"sent"`
	Warnings      []string    `json:"warnings,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// GetCatalog handles GET /api/v1/catalog?kind=SPONSOR|REGISTRANT
func (h *Handlers) GetCatalog(c *gin.Context) {
	kind := payerKind(c.Query("kind"))
	cat, ok := h.catalogs[kind]
	if !ok || cat == nil {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "no catalog for kind " + kind,
		})
		return
	}

	entries := make([]CatalogEntryResponse, 0, cat.Len())
	for _, e := range cat.Entries() {
		entries = append(entries, CatalogEntryResponse{
			ID:    e.ID,
			Name:  e.DisplayName,
			Price: order.FormatAmount(e.UnitPrice),
		})
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    entries,
	})
}

// CreateQuote handles POST /api/v1/quotes
func (h *Handlers) CreateQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	selections, err := ToSelections(req.Lines)
	if err != nil {
		h.fail(c, err)
		return
	}

	o, err := h.service.Quote(payerKind(req.Kind), selections)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    o.Quote(),
	})
}

// NextNumber handles GET /api/v1/invoices/next-number
func (h *Handlers) NextNumber(c *gin.Context) {
	n, err := h.service.NextNumber()
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"invoice_number": n.String()},
	})
}

// CreateInvoice handles POST /api/v1/invoices
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	selections, err := ToSelections(req.Lines)
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.service.Generate(c.Request.Context(), invoice.Request{
		Kind:       models.PayerSponsor,
		Payer:      req.Payer,
		Selections: selections,
		Comment:    req.Comment,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := InvoiceResponse{
		InvoiceNumber: result.Artifact.InvoiceNumber,
		DocumentPath:  result.Artifact.DocumentPath,
		PDFPath:       result.Artifact.PDFPath,
		Quote:         result.Order.Quote(),
	}
	if result.ConversionErr != nil {
		resp.Warnings = append(resp.Warnings, "conversion failed: "+result.ConversionErr.Error())
	}
	if result.JournalErr != nil {
		resp.Warnings = append(resp.Warnings, "numbering journal not updated: "+result.JournalErr.Error())
	}

	if req.Send {
		if err := h.send(c.Request.Context(), req.Payer, result); err != nil {
			resp.Warnings = append(resp.Warnings, "e-mail not sent: "+err.Error())
		} else {
			resp.Sent = true
		}
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    resp,
	})
}

func (h *Handlers) send(ctx context.Context, p models.Payer, result *invoice.Result) error {
	if h.sender == nil {
		return errors.New("mail delivery is disabled")
	}
	number := result.Artifact.InvoiceNumber
	msg := h.composer.Sponsor(p, number, result.Attachment(), h.now())
	return h.sender.Deliver(ctx, number, "", msg)
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	h.logger.Warn("Invalid request body", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   "invalid request body: " + err.Error(),
	})
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	} else {
		h.logger.Info("Request rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, Response{
		Success: false,
		Error:   err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, order.ErrValidation),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, invoice.ErrNoCatalog):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrUnknownProduct):
		return http.StatusUnprocessableEntity
	case errors.Is(err, numbering.ErrDuplicateNumber),
		errors.Is(err, numbering.ErrNotIncreasing):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func payerKind(kind string) string {
	switch strings.ToUpper(strings.TrimSpace(kind)) {
	case models.PayerRegistrant, "SPORTS":
		return models.PayerRegistrant
	default:
		return models.PayerSponsor
	}
}

// ToSelections converts form lines, parsing quantities and prices as typed
func ToSelections(lines []LineRequest) ([]order.Selection, error) {
	selections := make([]order.Selection, 0, len(lines))
	for _, l := range lines {
		qty, err := order.ParseQuantity(string(l.Quantity))
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(l.Product) != "" {
			selections = append(selections, order.CatalogSelection(l.Product, qty))
			continue
		}
		selections = append(selections, order.CustomSelection(l.Description, qty, order.ParsePrice(string(l.Price))))
	}
	return selections, nil
}
