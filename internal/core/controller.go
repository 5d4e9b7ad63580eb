package core

// controller.go drives one form through its lifecycle.
//
// The Controller serializes events for a single form and performs the submit
// effect: encode the attachment, assemble the payload, transmit it. The
// lock is released while the effect runs, so edits that arrive mid-submit are
// reduced against the Submitting phase and the outcome is applied to
// whatever state exists when the transmission settles.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JonMunkholm/proposals/internal/logging"
)

const tracerName = "github.com/JonMunkholm/proposals/internal/core"

// Controller owns the state of one form.
type Controller struct {
	id      uuid.UUID
	reducer Reducer
	codec   Codec
	tx      Transmitter
	limiter *SubmitLimiter
	obs     Observer
	tracer  trace.Tracer
	now     func() time.Time
	logger  *slog.Logger

	mu   sync.Mutex
	form Form
}

// Option configures a Controller.
type Option func(*Controller)

// WithLimiter bounds concurrent submissions across controllers.
func WithLimiter(l *SubmitLimiter) Option {
	return func(c *Controller) { c.limiter = l }
}

// WithObserver reports outcomes to o.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.obs = o }
}

// WithClock overrides the payload timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the base logger. Request-scoped fields are still added
// from the submit context.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithPolicy overrides the attachment selection policy.
func WithPolicy(p AttachmentPolicy) Option {
	return func(c *Controller) { c.reducer.Policy = p }
}

// WithID fixes the form ID.
func WithID(id uuid.UUID) Option {
	return func(c *Controller) { c.id = id }
}

// NewController returns a controller for a fresh form.
func NewController(tx Transmitter, opts ...Option) *Controller {
	c := &Controller{
		id:      uuid.New(),
		reducer: Reducer{Policy: DefaultAttachmentPolicy()},
		tx:      tx,
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
		form:    NewForm(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the form ID.
func (c *Controller) ID() uuid.UUID {
	return c.id
}

// State returns a copy of the current form.
func (c *Controller) State() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Clone()
}

// Dispatch applies an edit event and returns the resulting state.
// SubmitRequested is routed through Submit so its effect runs.
func (c *Controller) Dispatch(ctx context.Context, ev Event) Form {
	if _, ok := ev.(SubmitRequested); ok {
		return c.Submit(ctx)
	}

	c.mu.Lock()
	next, _ := c.reducer.Reduce(c.form, ev)
	c.form = next
	out := c.form.Clone()
	c.mu.Unlock()

	if out.Phase == PhaseFailed && c.obs != nil {
		c.obs.ObserveRejection(out.Message.Code)
	}
	return out
}

// SetField edits a top-level field.
func (c *Controller) SetField(ctx context.Context, field TopLevelField, value string) Form {
	return c.Dispatch(ctx, SetField{Field: field, Value: value})
}

// SelectAttachment picks the form's file.
func (c *Controller) SelectAttachment(ctx context.Context, a Attachment) Form {
	return c.Dispatch(ctx, SelectAttachment{Attachment: a})
}

// ClearAttachment removes the selected file.
func (c *Controller) ClearAttachment(ctx context.Context) Form {
	return c.Dispatch(ctx, ClearAttachment{})
}

// AddRecord appends an empty project.
func (c *Controller) AddRecord(ctx context.Context) Form {
	return c.Dispatch(ctx, AddRecord{})
}

// RemoveRecord deletes a project.
func (c *Controller) RemoveRecord(ctx context.Context, id int) Form {
	return c.Dispatch(ctx, RemoveRecord{ID: id})
}

// UpdateRecord edits one field of a project.
func (c *Controller) UpdateRecord(ctx context.Context, id int, field RecordField, value string) Form {
	return c.Dispatch(ctx, UpdateRecord{ID: id, Field: field, Value: value})
}

// Submit validates the form and, if valid, transmits it. It blocks until the
// transmission settles and returns the final state. A submit requested while
// another is running returns the current state unchanged.
//
// Cancellation of ctx does not abort a running submission; ctx only carries
// request-scoped values.
func (c *Controller) Submit(ctx context.Context) Form {
	c.mu.Lock()
	next, effect := c.reducer.Reduce(c.form, SubmitRequested{})
	c.form = next
	snapshot := c.form.Clone()
	c.mu.Unlock()

	if effect != EffectSubmit {
		if snapshot.Phase == PhaseFailed && c.obs != nil {
			c.obs.ObserveRejection(snapshot.Message.Code)
		}
		return snapshot
	}

	ctx = context.WithoutCancel(ctx)
	c.log(ctx).Debug("submission started", "form_id", c.id.String(), "records", snapshot.Records.Len())
	result := c.run(ctx, snapshot)

	outcome := Event(SubmitSucceeded{})
	if result.Err != nil {
		outcome = SubmitFailed{Err: result.Err}
	}

	c.mu.Lock()
	next, _ = c.reducer.Reduce(c.form, outcome)
	c.form = next
	out := c.form.Clone()
	c.mu.Unlock()

	result.Phase = out.Phase
	c.report(ctx, result)
	return out
}

// run performs the submit effect against a snapshot of the form.
func (c *Controller) run(ctx context.Context, snapshot Form) (result SubmissionResult) {
	start := time.Now()
	result = SubmissionResult{
		SubmissionID: uuid.NewString(),
		Records:      snapshot.Records.Len(),
	}
	if snapshot.Attachment != nil {
		result.AttachmentBytes = snapshot.Attachment.Size
	}

	ctx, span := c.tracer.Start(ctx, "form.submit", trace.WithAttributes(
		attribute.String("form.id", c.id.String()),
		attribute.String("submission.id", result.SubmissionID),
		attribute.Int("form.records", result.Records),
		attribute.Int64("attachment.bytes", result.AttachmentBytes),
	))
	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("submit panicked: %v", r)
		}
		result.Duration = time.Since(start)
		if result.Err != nil {
			span.RecordError(result.Err)
			span.SetStatus(codes.Error, result.Err.Error())
		}
		span.End()
	}()

	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx); err != nil {
			result.Err = err
			return result
		}
		defer c.limiter.Release()
	}

	file, err := c.encode(ctx, snapshot.Attachment)
	if err != nil {
		result.Err = err
		return result
	}

	payload := AssemblePayload(snapshot.Fields, file, snapshot.Records.List(), c.now())
	result.Err = c.transmit(ctx, payload)
	return result
}

// encode returns a nil file when no attachment is selected.
func (c *Controller) encode(ctx context.Context, a *Attachment) (*EncodedAttachment, error) {
	if a == nil {
		return nil, nil
	}
	ctx, span := c.tracer.Start(ctx, "attachment.encode")
	defer span.End()

	enc, err := c.codec.Encode(ctx, *a)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &enc, nil
}

func (c *Controller) transmit(ctx context.Context, p Payload) error {
	ctx, span := c.tracer.Start(ctx, "payload.transmit",
		trace.WithAttributes(attribute.Int("payload.projects", len(p.Projects))))
	defer span.End()

	if c.tx == nil {
		return fmt.Errorf("%w: no transmitter configured", ErrTransmit)
	}
	if err := c.tx.Send(ctx, p); err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrTransmit) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrTransmit, err)
	}
	return nil
}

func (c *Controller) report(ctx context.Context, result SubmissionResult) {
	if c.obs != nil {
		c.obs.ObserveSubmission(result)
	}

	logger := c.log(ctx)
	args := append([]any{
		"form_id", c.id.String(),
		"submission_id", result.SubmissionID,
		"records", result.Records,
		"attachment_bytes", result.AttachmentBytes,
		"duration_ms", result.Duration.Milliseconds(),
	}, submitLogFields(ctx)...)

	if result.Err != nil {
		logger.Error("submission failed", append(args, "error", result.Err)...)
		return
	}
	logger.Info("submission completed", args...)
}

func (c *Controller) log(ctx context.Context) *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return logging.FromContext(ctx)
}
