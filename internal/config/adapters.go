package config

import (
	"github.com/gdnc/invoice-automation/internal/document"
	"github.com/gdnc/invoice-automation/internal/email"
	"github.com/gdnc/invoice-automation/internal/invoice"
	"github.com/gdnc/invoice-automation/pkg/database"
	"github.com/gdnc/invoice-automation/pkg/utils"
)

// ToInvoiceSettings converts the invoice section to generator settings
func (c *Config) ToInvoiceSettings() invoice.Settings {
	opts := document.DefaultOptions()
	if c.Invoice.FontFace != "" {
		opts.FontFace = c.Invoice.FontFace
	}
	if len(c.Invoice.EmphasisTokens) > 0 {
		opts.EmphasisTokens = c.Invoice.EmphasisTokens
	}
	return invoice.Settings{
		PaymentTermDays:   c.Invoice.PaymentTermDays,
		SponsorIssueDelay: c.Invoice.SponsorIssueDelay,
		Render:            opts,
		Debug:             c.Debug,
	}
}

// ToSMTPConfig converts the mail section for the SMTP mailer
func (c *Config) ToSMTPConfig() email.SMTPConfig {
	return email.SMTPConfig{
		Host:     c.Mail.Host,
		Port:     c.Mail.Port,
		Username: c.Mail.Username,
		Password: c.Mail.Password,
		From:     c.Mail.From,
		Bcc:      c.Mail.Bcc,
		Timeout:  c.Mail.Timeout,
	}
}

// ToComposer returns the e-mail composer for the configured event
func (c *Config) ToComposer() email.Composer {
	return email.Composer{Event: c.Mail.Event, Signature: c.Mail.Signature}
}

// ToDatabaseConfig converts the database section
func (c *Config) ToDatabaseConfig() database.Config {
	return database.Config{
		Path:            c.Database.Path,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
	}
}

// ToLoggerConfig converts the logger section. runName prefixes the per-run log file.
func (c *Config) ToLoggerConfig(runName string) utils.LoggerConfig {
	return utils.LoggerConfig{
		Level:      c.Logger.Level,
		OutputPath: c.Logger.OutputPath,
		Format:     c.Logger.Format,
		RunLogDir:  c.Logger.RunLogDir,
		RunName:    runName,
	}
}
