// Package batch orchestrates serialized print runs: per label it expands the
// template, dispatches the payload, and commits a ledger entry only after a
// confirmed dispatch.
package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/avikko/labelrun-go/internal/datastore"
	"github.com/avikko/labelrun-go/internal/dialect"
	"github.com/avikko/labelrun-go/internal/errors"
	"github.com/avikko/labelrun-go/internal/logging"
	"github.com/avikko/labelrun-go/internal/printer"
	"github.com/avikko/labelrun-go/internal/tokens"
	"github.com/google/uuid"
)

// Request describes one batch: a design, a serial range and a target device.
type Request struct {
	DesignID    uint
	Markup      string
	StartSerial int
	Quantity    int
	Device      string
	Reprint     bool
}

// Result reports how far a batch got. Printed equals Quantity on the
// completed path; on abort it is the number of labels both dispatched and
// committed to the ledger.
type Result struct {
	BatchID uuid.UUID
	Dialect dialect.Dialect
	Printed int
}

// Orchestrator composes the template engine, the device transport and the
// serial ledger. Collaborators are injected once at construction; the
// orchestrator itself keeps no mutable state between runs. Callers must not
// run two batches concurrently against the same device or design ledger.
type Orchestrator struct {
	store     datastore.Interface
	transport printer.Transport
	log       *slog.Logger
	now       func() time.Time
}

// New creates an orchestrator with the given collaborators.
func New(store datastore.Interface, transport printer.Transport) *Orchestrator {
	log := logging.ForService("batch")
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		store:     store,
		transport: transport,
		log:       log,
		now:       time.Now,
	}
}

// Run executes one batch. Units are strictly sequential: each label's
// expand, dispatch and ledger commit completes before the next begins. The
// first failed dispatch aborts the batch; no entry is written for the failed
// unit or any later unit. Context cancellation is honored between units,
// never mid-unit.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	res := Result{BatchID: uuid.New()}

	if err := validate(&req); err != nil {
		return res, err
	}

	res.Dialect = dialect.Detect(req.Markup)
	if res.Dialect == dialect.Unknown {
		// Informational only, the printer firmware decides what it accepts.
		o.log.Warn("markup dialect not recognized",
			"batch_id", res.BatchID, "design_id", req.DesignID)
	}

	o.log.Info("batch started",
		"batch_id", res.BatchID,
		"design_id", req.DesignID,
		"start_serial", req.StartSerial,
		"quantity", req.Quantity,
		"device", req.Device,
		"reprint", req.Reprint,
		"dialect", res.Dialect.String())

	for i := 0; i < req.Quantity; i++ {
		if err := ctx.Err(); err != nil {
			o.log.Warn("batch canceled", "batch_id", res.BatchID, "printed", res.Printed)
			return res, err
		}

		serial := req.StartSerial + i
		now := o.now()
		payload := tokens.Expand(req.Markup, tokens.Context{
			Serial:    serial,
			Timestamp: now,
			Mode:      tokens.ModeFull,
		})

		if err := o.transport.Send(req.Device, []byte(payload)); err != nil {
			o.log.Error("dispatch failed, aborting batch",
				"batch_id", res.BatchID,
				"serial", serial,
				"printed", res.Printed,
				"error", err)
			return res, err
		}

		entry := &datastore.PrintLog{
			DesignID: req.DesignID,
			Serial:   serial,
			IssuedAt: now.UTC(),
			Reprint:  req.Reprint,
		}
		if err := o.store.Append(entry); err != nil {
			// The label already left for the device; losing its ledger row
			// breaks the audit guarantee, so this aborts just as loudly.
			o.log.Error("ledger append failed after confirmed dispatch",
				"batch_id", res.BatchID,
				"serial", serial,
				"printed", res.Printed,
				"error", err)
			return res, err
		}

		res.Printed++
	}

	o.log.Info("batch completed", "batch_id", res.BatchID, "printed", res.Printed)
	return res, nil
}

// ResumeSerial returns the next serial a fresh batch should start from.
func (o *Orchestrator) ResumeSerial(designID uint) (int, error) {
	last, err := o.store.LastIssued(designID)
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

func validate(req *Request) error {
	if req.Markup == "" {
		return errors.Newf("markup must not be empty").
			Category(errors.CategoryValidation).
			Build()
	}
	if req.StartSerial < 0 {
		return errors.Newf("start serial must be non-negative, got %d", req.StartSerial).
			Category(errors.CategoryValidation).
			Build()
	}
	if req.Quantity < 1 {
		return errors.Newf("quantity must be at least 1, got %d", req.Quantity).
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}
