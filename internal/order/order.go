// Package order builds priced invoice orders out of catalog and custom selections.
package order

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gdnc/invoice-automation/internal/catalog"
)

// MaxItems is the number of line slots the invoice templates provide
const MaxItems = 5

// Kind distinguishes catalog-backed lines from free-text custom lines
type Kind int

const (
	KindCatalog Kind = iota
	KindCustom
)

func (k Kind) String() string {
	if k == KindCustom {
		return "custom"
	}
	return "catalog"
}

// Selection is an unresolved order line as entered by the operator
type Selection struct {
	Kind        Kind
	Name        string // catalog display name
	Description string // printed text, defaults to Name for catalog lines
	Quantity    int
	UnitPrice   decimal.Decimal // custom lines only
}

// CatalogSelection selects a catalog product by display name
func CatalogSelection(name string, quantity int) Selection {
	return Selection{Kind: KindCatalog, Name: name, Quantity: quantity}
}

// CatalogSelectionWithDescription prices the line from the catalog but prints description
func CatalogSelectionWithDescription(name, description string, quantity int) Selection {
	return Selection{Kind: KindCatalog, Name: name, Description: description, Quantity: quantity}
}

// CustomSelection is a line whose price is supplied directly
func CustomSelection(description string, quantity int, unitPrice decimal.Decimal) Selection {
	return Selection{Kind: KindCustom, Description: description, Quantity: quantity, UnitPrice: unitPrice}
}

// LineItem is a resolved, priced order line
type LineItem struct {
	Kind        Kind
	Name        string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// LineTotal returns quantity × unit price at full precision
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is an ordered, validated set of 1..MaxItems line items
type Order struct {
	items []LineItem
}

// Build resolves selections against the catalog. No Order is returned on any error.
func Build(cat *catalog.Catalog, selections []Selection) (*Order, error) {
	if len(selections) == 0 {
		return nil, NewValidationError("items", "order has no items")
	}
	if len(selections) > MaxItems {
		return nil, NewValidationError("items", "order has "+strconv.Itoa(len(selections))+" items, at most "+strconv.Itoa(MaxItems)+" are supported")
	}

	items := make([]LineItem, 0, len(selections))
	for i, sel := range selections {
		item, err := resolve(cat, sel)
		if err != nil {
			return nil, err
		}
		if item.Quantity < 1 {
			return nil, &InvalidQuantityError{Input: strconv.Itoa(sel.Quantity)}
		}
		if strings.TrimSpace(item.Description) == "" {
			return nil, NewValidationError("items["+strconv.Itoa(i)+"].description", "description is empty")
		}
		items = append(items, item)
	}

	return &Order{items: items}, nil
}

func resolve(cat *catalog.Catalog, sel Selection) (LineItem, error) {
	switch sel.Kind {
	case KindCatalog:
		if cat == nil {
			return LineItem{}, &UnknownProductError{Name: sel.Name}
		}
		entry, ok := cat.Lookup(sel.Name)
		if !ok {
			return LineItem{}, &UnknownProductError{Name: sel.Name}
		}
		desc := strings.TrimSpace(sel.Description)
		if desc == "" {
			desc = entry.DisplayName
		}
		return LineItem{
			Kind:        KindCatalog,
			Name:        entry.DisplayName,
			Description: desc,
			Quantity:    sel.Quantity,
			UnitPrice:   entry.UnitPrice,
		}, nil
	case KindCustom:
		if sel.UnitPrice.IsNegative() {
			return LineItem{}, NewValidationError("unit_price", "price must not be negative")
		}
		return LineItem{
			Kind:        KindCustom,
			Description: strings.TrimSpace(sel.Description),
			Quantity:    sel.Quantity,
			UnitPrice:   sel.UnitPrice,
		}, nil
	default:
		return LineItem{}, NewValidationError("kind", "unknown line kind "+strconv.Itoa(int(sel.Kind)))
	}
}

// Items returns a copy of the line items in presentation order
func (o *Order) Items() []LineItem {
	out := make([]LineItem, len(o.items))
	copy(out, o.items)
	return out
}

// Len returns the number of line items
func (o *Order) Len() int {
	return len(o.items)
}

// Total sums the line totals without intermediate rounding
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// CatalogItems returns only the catalog-backed lines
func (o *Order) CatalogItems() []LineItem {
	return o.filter(KindCatalog)
}

// CustomItems returns only the custom lines
func (o *Order) CustomItems() []LineItem {
	return o.filter(KindCustom)
}

func (o *Order) filter(kind Kind) []LineItem {
	var out []LineItem
	for _, item := range o.items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}
