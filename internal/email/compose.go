package email

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdnc/invoice-automation/internal/models"
)

// Message is a composed e-mail ready to send
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []string
}

// Greeting depends on the hour of sending
func Greeting(at time.Time) string {
	if at.Hour() < 18 {
		return "Bonjour"
	}
	return "Bonsoir"
}

var closings = map[time.Weekday]string{
	time.Monday:    "encore un bon début de semaine",
	time.Tuesday:   "encore un bon début de semaine",
	time.Wednesday: "une bonne suite de semaine",
	time.Thursday:  "une bonne suite de semaine",
	time.Friday:    "déjà une bonne fin de semaine",
	time.Saturday:  "un bon weekend",
}

// Closing returns the closing wish for the day. On Sunday sponsors get
// an end-of-weekend wish and sports registrants a start-of-week one.
func Closing(day time.Weekday, kind string) string {
	if day == time.Sunday {
		if kind == models.PayerRegistrant {
			return "déjà un bon début de semaine"
		}
		return "déjà une bonne fin de weekend"
	}
	return closings[day]
}

// Composer writes the invoice e-mails
type Composer struct {
	Event     string // e.g. "Giron du Nord 2025 à Concise"
	Signature []string
}

// SponsorSubject is the subject of a sponsoring invoice e-mail
func (c Composer) SponsorSubject(number string) string {
	return fmt.Sprintf("Facture sponsoring %s • %s", c.Event, number)
}

// SportsSubject is the subject of a sports registration invoice e-mail
func (c Composer) SportsSubject(number string) string {
	return fmt.Sprintf("%s • Facture inscription sports • %s", c.Event, number)
}

// Sponsor composes the message sent with a sponsoring invoice
func (c Composer) Sponsor(p models.Payer, number, attachment string, at time.Time) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s,\n\n", Greeting(at), p.Title, p.LastName)
	b.WriteString("Suite au contact que vous avez récemment eu avec notre organisation, nous vous envoyons la facture de sponsoring conformément au contrat que vous avez signé et que vous nous avez transmis.\n\n")
	b.WriteString("Nous restons à votre entière disposition pour toute précision. Merci encore beaucoup de votre soutien dans cette aventure!\n\n")
	fmt.Fprintf(&b, "Meilleures salutations et %s,\n\n", Closing(at.Weekday(), models.PayerSponsor))
	b.WriteString(strings.Join(c.Signature, "\n"))

	return Message{
		To:          p.Email,
		Subject:     c.SponsorSubject(number),
		Body:        b.String(),
		Attachments: attachments(attachment),
	}
}

// Sports composes the message sent with a sports registration invoice.
// registrations are the invoice line descriptions.
func (c Composer) Sports(p models.Payer, number, attachment string, registrations []string, at time.Time) Message {
	lines := make([]string, len(registrations))
	for i, r := range registrations {
		lines[i] = "    • " + r
	}

	var b strings.Builder
	b.WriteString("Salut cher sportif!\n\n\n")
	fmt.Fprintf(&b, "Merci beaucoup pour ton intérêt aux sports du %s! Suite à ta récente inscription, nous t'envoyons maintenant la facture conformément à ton enregistrement aux différentes disciplines.\n\n\n", c.Event)
	b.WriteString("Pour rappel, voici un résumé des sports auxquels tu t'es inscrits:\n\n")
	b.WriteString(strings.Join(lines, "\n\n"))
	b.WriteString("\n\n\nNous restons à ton entière disposition pour toute précision. Merci encore beaucoup pour ton enregistrement!\n\n\n")
	fmt.Fprintf(&b, "Meilleures salutations et %s,\n\n\n", Closing(at.Weekday(), models.PayerRegistrant))
	b.WriteString(strings.Join(c.Signature, "\n\n"))

	return Message{
		To:          p.Email,
		Subject:     c.SportsSubject(number),
		Body:        b.String(),
		Attachments: attachments(attachment),
	}
}

func attachments(path string) []string {
	if path == "" {
		return nil
	}
	return []string{path}
}
