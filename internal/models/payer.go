package models

import "strings"

// Payer is the party an invoice is addressed to
type Payer struct {
	Company   string `json:"company"`
	Title     string `json:"title"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	Postcode  string `json:"postcode"`
	City      string `json:"city"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// Payer kinds
const (
	PayerSponsor    = "SPONSOR"
	PayerRegistrant = "REGISTRANT"
)

// MissingFields returns the names of the required fields left blank for the given payer kind.
// Sponsors must fill every field. Sports registrants have no company, title or first name.
func (p Payer) MissingFields(kind string) []string {
	fields := []struct {
		name  string
		value string
	}{
		{"company", p.Company},
		{"title", p.Title},
		{"first_name", p.FirstName},
		{"last_name", p.LastName},
		{"address", p.Address},
		{"postcode", p.Postcode},
		{"city", p.City},
		{"phone", p.Phone},
		{"email", p.Email},
	}

	var missing []string
	for _, f := range fields {
		if kind == PayerRegistrant {
			switch f.name {
			case "company", "title", "first_name", "phone":
				continue
			}
		}
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// DisplayName is the label used in the numbering journal
func (p Payer) DisplayName(kind string) string {
	if kind == PayerRegistrant {
		return strings.TrimSpace(p.LastName) + " (sports)"
	}
	return strings.TrimSpace(p.Company)
}
