package registration

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gdnc/invoice-automation/internal/models"
	"github.com/gdnc/invoice-automation/internal/order"
	"github.com/gdnc/invoice-automation/pkg/utils"
)

// SportTeams lists the teams a registrant entered in one sport
type SportTeams struct {
	Sport string
	Teams []string
}

// Registrant is one invoiceable person: every team registered with the same e-mail
type Registrant struct {
	EntryID       string
	Payer         models.Payer
	Sports        []SportTeams
	DeclaredTotal decimal.Decimal // sum of the form's Total column
}

// Sanitize groups rows by e-mail in first-seen order. Contact details come
// from the first row of each registrant.
func Sanitize(rows []Row) ([]Registrant, error) {
	var registrants []*Registrant
	byEmail := make(map[string]*Registrant)

	for _, row := range rows {
		key := strings.ToLower(strings.TrimSpace(row.Email))
		reg, ok := byEmail[key]
		if !ok {
			street, city, postcode, err := SplitAddress(row.Address)
			if err != nil {
				return nil, fmt.Errorf("registrant %s (sheet %s, row %d): %w", row.Email, row.Sheet, row.Line, err)
			}
			reg = &Registrant{
				EntryID: row.EntryID,
				Payer: models.Payer{
					LastName: utils.SanitizeString(row.Name),
					Address:  street,
					Postcode: postcode,
					City:     city,
					Phone:    utils.NormalizeSwissPhone(row.Phone),
					Email:    strings.TrimSpace(row.Email),
				},
			}
			byEmail[key] = reg
			registrants = append(registrants, reg)
		}

		reg.addTeam(row.Sport, row.Team)
		reg.DeclaredTotal = reg.DeclaredTotal.Add(order.ParsePrice(row.Total))
	}

	out := make([]Registrant, len(registrants))
	for i, r := range registrants {
		out[i] = *r
	}
	return out, nil
}

func (r *Registrant) addTeam(sport, team string) {
	for i := range r.Sports {
		if r.Sports[i].Sport == sport {
			r.Sports[i].Teams = append(r.Sports[i].Teams, team)
			return
		}
	}
	r.Sports = append(r.Sports, SportTeams{Sport: sport, Teams: []string{team}})
}

// SplitAddress splits "street, city, postcode". City and postcode are
// swapped when entered the other way round.
func SplitAddress(address string) (street, city, postcode string, err error) {
	parts := strings.Split(address, ",")
	if len(parts) < 3 {
		return "", "", "", fmt.Errorf("%w: %q", ErrAddressFormat, address)
	}
	street = strings.TrimSpace(parts[0])
	city = strings.TrimSpace(parts[1])
	postcode = strings.TrimSpace(parts[2])

	switch {
	case utils.IsLetters(postcode) && utils.IsDigits(city):
		city, postcode = postcode, city
	case utils.IsLetters(postcode) && utils.IsLetters(city):
		return "", "", "", fmt.Errorf("%w: postcode %q and city %q are both alphabetic", ErrAddressFormat, postcode, city)
	case utils.IsDigits(postcode) && utils.IsDigits(city):
		return "", "", "", fmt.Errorf("%w: postcode %q and city %q are both numeric", ErrAddressFormat, postcode, city)
	}
	return street, city, postcode, nil
}

// Description is the invoice line text for one sport
func (s SportTeams) Description() string {
	registration, team := "Inscription", "équipe"
	if len(s.Teams) > 1 {
		registration, team = "Inscriptions", "équipes"
	}
	return fmt.Sprintf("%s %s (%s: %s)", registration, s.Sport, team, strings.Join(s.Teams, ", "))
}

// Selections returns one catalog line per sport, one unit per team
func (r Registrant) Selections() []order.Selection {
	sels := make([]order.Selection, len(r.Sports))
	for i, s := range r.Sports {
		sels[i] = order.CatalogSelectionWithDescription(s.Sport, s.Description(), len(s.Teams))
	}
	return sels
}

// Descriptions returns the line texts in order
func (r Registrant) Descriptions() []string {
	out := make([]string, len(r.Sports))
	for i, s := range r.Sports {
		out[i] = s.Description()
	}
	return out
}
