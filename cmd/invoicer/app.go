package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gdnc/invoice-automation/internal/catalog"
	"github.com/gdnc/invoice-automation/internal/config"
	"github.com/gdnc/invoice-automation/internal/convert"
	"github.com/gdnc/invoice-automation/internal/document"
	"github.com/gdnc/invoice-automation/internal/email"
	"github.com/gdnc/invoice-automation/internal/invoice"
	"github.com/gdnc/invoice-automation/internal/ledger"
	"github.com/gdnc/invoice-automation/internal/models"
	"github.com/gdnc/invoice-automation/internal/repository"
	"github.com/gdnc/invoice-automation/internal/storage"
	"github.com/gdnc/invoice-automation/pkg/database"
	"github.com/gdnc/invoice-automation/pkg/utils"
)

// app holds the wired components of one command run
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	catalogs  map[string]*catalog.Catalog
	ledger    *ledger.Ledger
	generator *invoice.Generator

	db     *database.DB
	mailer email.Mailer
	sender *email.Sender
	runs   *repository.RunRepository
}

// newApp loads the configuration and builds the invoice pipeline.
// withMail also opens the delivery database and the SMTP mailer.
func newApp(opts *rootOptions, runName string, withMail bool) (*app, error) {
	// Load configuration
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.debug {
		cfg.Debug = true
	}

	// Initialize logger
	logger, err := utils.NewLogger(cfg.ToLoggerConfig(runName))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	if cfg.Debug {
		logger.Warn("Debug mode: artifacts get a _DEBUG suffix", zap.String("ledger", cfg.LedgerPath()))
	}

	// Catalogs
	a.catalogs = make(map[string]*catalog.Catalog)
	sponsorCatalog, err := catalog.Load(cfg.Paths.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load product catalog: %w", err)
	}
	a.catalogs[models.PayerSponsor] = sponsorCatalog
	if cfg.Paths.SportsCatalog != "" {
		sportsCatalog, err := catalog.Load(cfg.Paths.SportsCatalog)
		if err != nil {
			return nil, fmt.Errorf("failed to load sports catalog: %w", err)
		}
		a.catalogs[models.PayerRegistrant] = sportsCatalog
	}

	// Templates
	templates := document.NewTemplateSet(cfg.Paths.TemplatesDir, cfg.Paths.TemplatePattern)
	if err := templates.Check(); err != nil {
		logger.Warn("Some invoice templates are missing", zap.Error(err))
	}

	// Ledger and journal
	a.ledger = ledger.New(cfg.LedgerPath(), cfg.Ledger.Sheet, logger)
	var journal invoice.JournalInterface
	if cfg.Journal.Enabled {
		journal = ledger.NewJournal(cfg.Journal.Path, cfg.Journal.Sheet, logger)
	}

	// Conversion
	var converter convert.Converter = convert.Noop{}
	if cfg.Conversion.Enabled {
		converter = convert.NewSoffice(cfg.Conversion.Binary, cfg.Paths.OutputDir, logger)
	}

	a.generator = invoice.NewGenerator(invoice.Dependencies{
		Catalogs:  a.catalogs,
		Templates: templates,
		Ledger:    a.ledger,
		Journal:   journal,
		Store:     storage.NewArtifactStore(cfg.Paths.OutputDir, logger),
		Converter: converter,
	}, cfg.ToInvoiceSettings(), logger)

	if withMail {
		if err := a.openDelivery(); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

// openDelivery opens the delivery database and the mailer
func (a *app) openDelivery() error {
	db, err := database.New(a.cfg.ToDatabaseConfig(), a.logger)
	if err != nil {
		return err
	}
	a.db = db

	if err := db.Migrate(database.Migrations); err != nil {
		return fmt.Errorf("failed to migrate delivery log: %w", err)
	}

	a.runs = repository.NewRunRepository(db.DB, a.logger)
	if !a.cfg.Mail.Enabled {
		a.logger.Info("Mail delivery disabled")
		return nil
	}
	a.mailer = email.NewSMTPMailer(a.cfg.ToSMTPConfig(), a.logger)
	a.sender = email.NewSender(a.mailer, repository.NewDeliveryRepository(db.DB, a.logger), a.logger)
	return nil
}

// probeMail fails fast when the SMTP server is unreachable
func (a *app) probeMail(ctx context.Context) error {
	smtp, ok := a.mailer.(*email.SMTPMailer)
	if !ok {
		return nil
	}
	return smtp.Probe(ctx)
}

// deliverer returns the sender, or nil when mail is disabled
func (a *app) deliverer() invoice.DelivererInterface {
	if a.sender == nil {
		return nil
	}
	return a.sender
}

// Close releases the database and flushes the logger
func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("Failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
