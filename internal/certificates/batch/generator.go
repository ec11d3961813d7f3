package batch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"attendex/event-portal-backend/internal/certificates/render"
	"attendex/event-portal-backend/internal/certificates/template"
)

// Status tags a per-recipient outcome
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// FailureKind identifies which step failed for a recipient
type FailureKind string

const (
	FailNone      FailureKind = ""
	FailRecipient FailureKind = "recipient" // unusable context record (no stable key)
	FailRaster    FailureKind = "raster"
	FailPersist   FailureKind = "persist"
	FailDeliver   FailureKind = "deliver"
)

// Outcome records one recipient's attempt. A batch run produces exactly one
// outcome per recipient, in input order.
type Outcome struct {
	Index        int         `json:"index"`
	RecipientKey string      `json:"recipient_key,omitempty"`
	Status       Status      `json:"status"`
	Location     string      `json:"location,omitempty"`
	Generated    bool        `json:"generated"`
	FailureKind  FailureKind `json:"failure_kind,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// ArtifactStore persists a raster artifact under a recipient key and
// returns a retrievable location.
type ArtifactStore interface {
	Persist(ctx context.Context, artifact *render.Artifact, key string) (string, error)
}

// Deliverer hands an artifact location (plus recipient metadata) to the
// downstream delivery channel.
type Deliverer interface {
	Deliver(ctx context.Context, recipient template.ContextRecord, location string, artifact *render.Artifact) error
}

// Options tunes a batch run.
type Options struct {
	// SettleDelay is the bounded wait between presenting a resolved
	// document and rasterizing it, giving the rendering surface time to
	// reflect the update.
	SettleDelay time.Duration

	// OnProgress is invoked once per recipient iteration with
	// (processed, total). Optional.
	OnProgress func(current, total int)

	// OnOutcome is invoked as each recipient's attempt concludes. Optional.
	OnOutcome func(index int, outcome Outcome)
}

// Generator runs certificate batches: for each recipient it resolves the
// captured design, presents it on the stage, rasterizes, persists and
// delivers, then restores the original design. One recipient's failure
// never aborts the run; only losing the stage itself is fatal.
type Generator struct {
	stage    *Stage
	renderer render.Renderer
	store    ArtifactStore
	deliver  Deliverer
	logger   *zap.Logger
}

// NewGenerator creates a batch generator over the given stage and
// collaborators.
func NewGenerator(stage *Stage, renderer render.Renderer, store ArtifactStore, deliver Deliverer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		stage:    stage,
		renderer: renderer,
		store:    store,
		deliver:  deliver,
		logger:   logger,
	}
}

// Run executes one batch over recipients, in order, strictly sequentially.
// It returns exactly len(recipients) outcomes in input order. The stage is
// restored to the captured document before Run returns, regardless of
// per-recipient failures or cancellation.
func (g *Generator) Run(ctx context.Context, recipients []template.ContextRecord, opts Options) ([]Outcome, error) {
	release, err := g.stage.Acquire()
	if err != nil {
		return nil, fmt.Errorf("capture rendering stage: %w", err)
	}
	defer release()

	original := g.stage.Current()
	defer g.stage.Present(original)

	total := len(recipients)
	outcomes := make([]Outcome, 0, total)

	g.logger.Info("Starting certificate batch run", zap.Int("recipients", total))

	cancelled := false
	for i, recipient := range recipients {
		if !cancelled && ctx.Err() != nil {
			cancelled = true
			g.logger.Warn("Batch run cancelled", zap.Int("processed", i), zap.Int("total", total))
		}
		if cancelled {
			outcome := Outcome{Index: i, Status: StatusCancelled, Error: "batch cancelled before processing"}
			outcomes = append(outcomes, outcome)
			g.emit(opts, i, total, outcome)
			continue
		}

		outcome := g.processRecipient(ctx, original, recipient, i, opts.SettleDelay)
		outcomes = append(outcomes, outcome)
		g.emit(opts, i, total, outcome)
	}

	g.logger.Info("Certificate batch run completed",
		zap.Int("total", total),
		zap.Int("succeeded", countStatus(outcomes, StatusSuccess)),
		zap.Int("failed", countStatus(outcomes, StatusFailed)),
		zap.Int("cancelled", countStatus(outcomes, StatusCancelled)))

	return outcomes, nil
}

// GenerateOne is the single-recipient path. The stage is still captured
// and restored around the attempt.
func (g *Generator) GenerateOne(ctx context.Context, recipient template.ContextRecord, opts Options) (Outcome, error) {
	outcomes, err := g.Run(ctx, []template.ContextRecord{recipient}, opts)
	if err != nil {
		return Outcome{}, err
	}
	return outcomes[0], nil
}

func (g *Generator) processRecipient(ctx context.Context, original template.Document, recipient template.ContextRecord, index int, settle time.Duration) Outcome {
	outcome := Outcome{Index: index}

	key, err := recipient.RecipientKey()
	if err != nil {
		outcome.Status = StatusFailed
		outcome.FailureKind = FailRecipient
		outcome.Error = err.Error()
		g.logger.Warn("Skipping recipient without stable key", zap.Int("index", index), zap.Error(err))
		return outcome
	}
	outcome.RecipientKey = key

	// Resolve + Present: install the recipient's variant on the stage
	working := template.ResolveDocument(original, recipient)
	g.stage.Present(working)

	// Settle: let the rendering surface catch up before capture.
	// Cancellation is only honored at recipient boundaries, so this is a
	// plain bounded wait rather than a ctx-aware one.
	if settle > 0 {
		time.Sleep(settle)
	}

	// Rasterize from the currently-presented document
	artifact, err := g.renderer.Render(ctx, g.stage.Current())
	if err != nil {
		outcome.Status = StatusFailed
		outcome.FailureKind = FailRaster
		outcome.Error = err.Error()
		g.logger.Warn("Rasterization failed", zap.Int("index", index), zap.String("recipient", key), zap.Error(err))
		return outcome
	}
	outcome.Generated = true

	location, err := g.store.Persist(ctx, artifact, key)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.FailureKind = FailPersist
		outcome.Error = err.Error()
		g.logger.Warn("Artifact persist failed", zap.Int("index", index), zap.String("recipient", key), zap.Error(err))
		return outcome
	}
	outcome.Location = location

	if err := g.deliver.Deliver(ctx, recipient, location, artifact); err != nil {
		// The artifact still counts as generated and persisted
		outcome.Status = StatusFailed
		outcome.FailureKind = FailDeliver
		outcome.Error = err.Error()
		g.logger.Warn("Delivery failed", zap.Int("index", index), zap.String("recipient", key), zap.Error(err))
		return outcome
	}

	outcome.Status = StatusSuccess
	return outcome
}

func (g *Generator) emit(opts Options, index, total int, outcome Outcome) {
	if opts.OnOutcome != nil {
		opts.OnOutcome(index, outcome)
	}
	if opts.OnProgress != nil {
		opts.OnProgress(index+1, total)
	}
}

func countStatus(outcomes []Outcome, s Status) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}
