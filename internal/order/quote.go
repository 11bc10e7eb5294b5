package order

// QuoteLine is the presentation of one priced line
type QuoteLine struct {
	Index       int    `json:"index"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

// Quote is a serialisable snapshot of an order and its total
type Quote struct {
	Lines []QuoteLine `json:"lines"`
	Total string      `json:"total"`
}

// Quote renders the order with presentation rounding applied
func (o *Order) Quote() Quote {
	q := Quote{Lines: make([]QuoteLine, 0, len(o.items))}
	for i, item := range o.items {
		q.Lines = append(q.Lines, QuoteLine{
			Index:       i + 1,
			Kind:        item.Kind.String(),
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   FormatAmount(item.UnitPrice),
			LineTotal:   FormatAmount(item.LineTotal()),
		})
	}
	q.Total = FormatAmount(o.Total())
	return q
}
