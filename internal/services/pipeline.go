package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// Pipeline runs one upload: parse, validate, ask for approval, open the
// tunnel, insert the batch and close the tunnel.
// Thread-Safety: NOT safe for concurrent Run() calls on the same instance.
type Pipeline struct {
	config   pgnc.UploadConfig
	checker  *Checker
	opener   pgnc.TunnelOpener
	gateway  pgnc.Gateway
	approver pgnc.Approver
	logger   pgnc.Logger

	state   State
	onState func(State)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStateHook registers fn to be called on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(p *Pipeline) {
		p.onState = fn
	}
}

// NewPipeline creates a Pipeline with all dependencies injected.
// Panics on nil dependencies; runtime problems are reported in the result.
func NewPipeline(
	config pgnc.UploadConfig,
	reader FileReader,
	opener pgnc.TunnelOpener,
	gateway pgnc.Gateway,
	approver pgnc.Approver,
	logger pgnc.Logger,
	opts ...Option,
) *Pipeline {
	if opener == nil {
		panic("opener cannot be nil")
	}
	if gateway == nil {
		panic("gateway cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}

	p := &Pipeline{
		config:   config,
		checker:  NewChecker(reader, logger),
		opener:   opener,
		gateway:  gateway,
		approver: approver,
		logger:   logger,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the stage the last Run reached.
func (p *Pipeline) State() State {
	return p.state
}

// Run uploads the file at path. Nothing is sent to the database unless every
// row validates and the operator approves. The tunnel, once opened, is
// closed before Run returns on every path.
func (p *Pipeline) Run(ctx context.Context, path string) pgnc.UploadResult {
	result := pgnc.UploadResult{RunID: uuid.NewString()}
	p.state = StateIdle
	p.logger.Verbose("Run %s: uploading %s", result.RunID, path)

	defer p.enter(StateReporting)

	records, ok := p.checker.check(ctx, path, &result, p.enter)
	if !ok {
		return result
	}

	if p.config.DryRun {
		result.DryRun = true
		p.logger.Info("Dry run: %d rows valid, nothing written", len(records))
		return result
	}

	if err := ctx.Err(); err != nil {
		result.Failure = pgnc.Interrupted(err)
		return result
	}

	if err := p.config.Validate(); err != nil {
		result.Failure = err
		return result
	}

	approved, err := p.approver.RequestApproval(ctx, p.config.DB.Name, len(records))
	if err != nil {
		result.Failure = fmt.Errorf("approval: %w: %w", pgnc.ErrApprovalDenied, err)
		return result
	}
	if !approved {
		result.Failure = fmt.Errorf("upload of %d rows into %q declined: %w", len(records), p.config.DB.Name, pgnc.ErrApprovalDenied)
		return result
	}

	p.insert(ctx, records, &result)
	return result
}

// insert covers TunnelOpening and Inserting. The deferred Close runs before
// the caller moves to Reporting.
func (p *Pipeline) insert(ctx context.Context, records []pgnc.GeneRecord, result *pgnc.UploadResult) {
	p.enter(StateTunnelOpening)
	tunnel, err := p.opener.Open(ctx, p.config.Tunnel)
	if err != nil {
		result.Failure = err
		return
	}
	defer func() {
		if err := tunnel.Close(); err != nil {
			p.logger.Error("Closing tunnel: %v", err)
		}
	}()

	p.enter(StateInserting)
	batch := p.gateway.InsertBatch(ctx, p.config.DB, tunnel.LocalPort(), records)
	result.Inserted = batch.Inserted
	result.Records = batch.Records
	result.Failure = batch.Failure
	if batch.Failure != nil && ctx.Err() != nil {
		result.Failure = fmt.Errorf("%w: %w", pgnc.Interrupted(ctx.Err()), batch.Failure)
	}
}

func (p *Pipeline) enter(s State) {
	p.state = s
	p.logger.Verbose("State: %s", s)
	if p.onState != nil {
		p.onState(s)
	}
}
