package document

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gdnc/invoice-automation/internal/models"
	"github.com/gdnc/invoice-automation/internal/order"
)

// Placeholder vocabulary
const (
	TokenCompany       = "[COMPANY]"
	TokenTitle         = "[TITLE]"
	TokenFirstName     = "[FIRST-NAME]"
	TokenLastName      = "[LAST-NAME]"
	TokenAddress       = "[ADDRESS]"
	TokenPostcode      = "[POSTCODE]"
	TokenCity          = "[CITY]"
	TokenInvoiceNumber = "[INVOICE-NUMBER]"
	TokenIssueDate     = "[ISSUE-DATE]"
	TokenDeadlineDate  = "[DEADLINE-DATE]"
	TokenTotal         = "[TOTAL]"
)

// DateLayout is the date format printed on invoices
const DateLayout = "02.01.2006"

// ItemDescription etc. return the per-line tokens for the 1-based index i
func ItemDescription(i int) string { return "[PRODUCT-DESCRIPTION-" + strconv.Itoa(i) + "]" }
func ItemQuantity(i int) string    { return "[QT-" + strconv.Itoa(i) + "]" }
func ItemPrice(i int) string       { return "[P-" + strconv.Itoa(i) + "]" }
func ItemTotal(i int) string       { return "[TOT-" + strconv.Itoa(i) + "]" }

// Header carries the invoice metadata printed next to the payer block
type Header struct {
	Number   string
	Issued   time.Time
	Deadline time.Time
}

// Placeholders builds the replacement map for one invoice: payer and header
// tokens first, then one group of four tokens per order line.
func Placeholders(o *order.Order, h Header, p models.Payer) *Replacements {
	r := NewReplacements()
	r.Set(TokenCompany, p.Company)
	r.Set(TokenTitle, p.Title)
	r.Set(TokenFirstName, p.FirstName)
	r.Set(TokenLastName, p.LastName)
	r.Set(TokenAddress, p.Address)
	r.Set(TokenPostcode, p.Postcode)
	r.Set(TokenCity, p.City)
	r.Set(TokenInvoiceNumber, h.Number)
	r.Set(TokenIssueDate, h.Issued.Format(DateLayout))
	r.Set(TokenDeadlineDate, h.Deadline.Format(DateLayout))
	r.Set(TokenTotal, order.FormatAmount(o.Total()))

	for i, item := range o.Items() {
		n := i + 1
		r.Set(ItemDescription(n), item.Description)
		r.Set(ItemQuantity(n), strconv.Itoa(item.Quantity))
		r.Set(ItemPrice(n), order.FormatAmount(item.UnitPrice))
		r.Set(ItemTotal(n), order.FormatAmount(item.LineTotal()))
	}
	return r
}

// RequiredTokens lists the tokens every template for itemCount lines must contain
func RequiredTokens(itemCount int) []string {
	tokens := []string{TokenInvoiceNumber, TokenTotal}
	for i := 1; i <= itemCount; i++ {
		tokens = append(tokens, ItemDescription(i), ItemQuantity(i), ItemPrice(i), ItemTotal(i))
	}
	return tokens
}

// OutputName is the file name of a rendered invoice
func OutputName(number string, debug bool) string {
	if debug {
		return fmt.Sprintf("Facture N° %s_DEBUG.docx", number)
	}
	return fmt.Sprintf("Facture N° %s.docx", number)
}
