package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gdnc/invoice-automation/internal/document"
	"github.com/gdnc/invoice-automation/internal/email"
	"github.com/gdnc/invoice-automation/internal/ledger"
	"github.com/gdnc/invoice-automation/internal/models"
	"github.com/gdnc/invoice-automation/internal/numbering"
	"github.com/gdnc/invoice-automation/internal/order"
	"github.com/gdnc/invoice-automation/internal/registration"
)

// RunKindSports labels sports registration batch runs
const RunKindSports = "SPORTS"

// Outcome is what happened to one registrant
type Outcome struct {
	Registrant  registration.Registrant
	Result      *Result // nil when generation failed
	Err         error   // generation error
	DeliveryErr error
}

// BatchResult summarises a run
type BatchResult struct {
	RunID    string
	Outcomes []Outcome
	Aborted  error // set when the run stopped before the last registrant
}

// Generated counts the invoices issued during the run
func (r *BatchResult) Generated() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Result != nil {
			n++
		}
	}
	return n
}

// Failed counts registrants without an invoice
func (r *BatchResult) Failed() int {
	return len(r.Outcomes) - r.Generated()
}

// Batch issues and mails sports registration invoices one registrant at a time
type Batch struct {
	generator GeneratorInterface
	sender    DelivererInterface // nil disables delivery
	runs      RunStoreInterface  // nil disables run bookkeeping
	composer  email.Composer
	logger    *zap.Logger
	now       func() time.Time
}

// NewBatch creates a new Batch
func NewBatch(generator GeneratorInterface, sender DelivererInterface, runs RunStoreInterface, composer email.Composer, logger *zap.Logger) *Batch {
	return &Batch{
		generator: generator,
		sender:    sender,
		runs:      runs,
		composer:  composer,
		logger:    logger,
		now:       time.Now,
	}
}

// Run generates then delivers each registrant's invoice before moving to the
// next. Invalid registrants are skipped. Ledger and numbering failures stop
// the run since every later invoice would hit them too.
func (b *Batch) Run(ctx context.Context, registrants []registration.Registrant) (*BatchResult, error) {
	result := &BatchResult{RunID: uuid.New().String()}
	log := b.logger.With(zap.String("run_id", result.RunID))

	log.Info("Starting sports invoice batch", zap.Int("registrants", len(registrants)))
	if b.runs != nil {
		run := &models.GenerationRun{RunID: result.RunID, Kind: RunKindSports, StartedAt: b.now()}
		if err := b.runs.Start(run); err != nil {
			log.Warn("Failed to record batch run", zap.Error(err))
		}
	}

	for i, reg := range registrants {
		if err := ctx.Err(); err != nil {
			result.Aborted = err
			break
		}

		outcome := b.process(ctx, log, result.RunID, reg)
		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.Err != nil && fatal(outcome.Err) {
			log.Error("Stopping batch",
				zap.Int("processed", i+1),
				zap.Int("remaining", len(registrants)-i-1),
				zap.Error(outcome.Err))
			result.Aborted = outcome.Err
			break
		}
	}

	if b.runs != nil {
		if err := b.runs.Finish(result.RunID, result.Generated(), result.Failed(), b.now()); err != nil {
			log.Warn("Failed to close batch run", zap.Error(err))
		}
	}

	log.Info("Sports invoice batch finished",
		zap.Int("generated", result.Generated()),
		zap.Int("failed", result.Failed()))

	if result.Aborted != nil {
		return result, fmt.Errorf("batch %s aborted: %w", result.RunID, result.Aborted)
	}
	return result, nil
}

func (b *Batch) process(ctx context.Context, log *zap.Logger, runID string, reg registration.Registrant) Outcome {
	outcome := Outcome{Registrant: reg}
	log = log.With(zap.String("registrant", reg.Payer.Email))

	res, err := b.generator.Generate(ctx, Request{
		Kind:       models.PayerRegistrant,
		Payer:      reg.Payer,
		Selections: reg.Selections(),
	})
	if err != nil {
		log.Error("Failed to generate registration invoice", zap.Error(err))
		outcome.Err = err
		return outcome
	}
	outcome.Result = res
	number := res.Artifact.InvoiceNumber

	if !reg.DeclaredTotal.IsZero() && !reg.DeclaredTotal.Equal(res.Order.Total()) {
		log.Warn("Registration form total differs from invoice total",
			zap.String("invoice_number", number),
			zap.String("declared", order.FormatAmount(reg.DeclaredTotal)),
			zap.String("invoiced", res.Artifact.Total))
	}

	if b.sender == nil {
		return outcome
	}
	msg := b.composer.Sports(reg.Payer, number, res.Attachment(), reg.Descriptions(), b.now())
	if err := b.sender.Deliver(ctx, number, runID, msg); err != nil {
		outcome.DeliveryErr = err
	}
	return outcome
}

// fatal errors would repeat for every remaining registrant: a broken ledger,
// numbering or template, or a cancelled run
func fatal(err error) bool {
	return errors.Is(err, ledger.ErrLedgerIO) ||
		errors.Is(err, ledger.ErrSchemaMismatch) ||
		errors.Is(err, numbering.ErrDuplicateNumber) ||
		errors.Is(err, numbering.ErrNotIncreasing) ||
		errors.Is(err, numbering.ErrMalformedNumber) ||
		errors.Is(err, numbering.ErrFutureYear) ||
		errors.Is(err, numbering.ErrSequenceExhausted) ||
		errors.Is(err, document.ErrTemplateNotFound) ||
		errors.Is(err, document.ErrInvalidDocument) ||
		errors.Is(err, document.ErrTemplateMismatch) ||
		errors.Is(err, document.ErrUnsupportedContent) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
