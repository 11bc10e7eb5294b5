package invoice

import (
	"encoding/json"
	"strconv"

	"github.com/gdnc/invoice-automation/internal/order"
)

type catalogLine struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
}

type customLine struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
}

// serializeProducts renders the catalog and custom lines of o as the two
// ledger product columns, each a JSON object keyed by line position.
// A side without lines is left empty.
func serializeProducts(o *order.Order) (catalogJSON, customJSON string, err error) {
	catalogLines := make(map[string]catalogLine)
	customLines := make(map[string]customLine)

	for i, item := range o.Items() {
		key := strconv.Itoa(i)
		switch item.Kind {
		case order.KindCatalog:
			line := catalogLine{Name: item.Name, Quantity: item.Quantity}
			if item.Description != item.Name {
				line.Description = item.Description
			}
			catalogLines[key] = line
		default:
			customLines[key] = customLine{
				Description: item.Description,
				Quantity:    item.Quantity,
				Price:       order.FormatAmount(item.UnitPrice),
			}
		}
	}

	if catalogJSON, err = marshalLines(catalogLines); err != nil {
		return "", "", err
	}
	if customJSON, err = marshalLines(customLines); err != nil {
		return "", "", err
	}
	return catalogJSON, customJSON, nil
}

func marshalLines[T any](lines map[string]T) (string, error) {
	if len(lines) == 0 {
		return "", nil
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
