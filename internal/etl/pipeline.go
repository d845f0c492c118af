package etl

import (
	"context"
	"fmt"

	"github.com/dvloznov/txn-etl/internal/logger"
)

// Step represents a single stage in the ETL pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State holds the shared state across all pipeline steps.
type State struct {
	Path    string
	Records []Record
	Summary Summary
}

// Summary carries per-run counts for reporting.
type Summary struct {
	RowsLoaded    int `json:"rows_loaded"`
	ValidRows     int `json:"valid_rows"`
	InvalidRows   int `json:"invalid_rows"`
	AnomalousRows int `json:"anomalous_rows"`
}

// LoadStep parses the CSV source into records. It is the only step that
// can fail; a structural defect aborts the run before any record flows.
type LoadStep struct{}

func (s *LoadStep) Execute(ctx context.Context, state *State) error {
	records, err := Load(ctx, state.Path)
	if err != nil {
		return err
	}
	state.Records = records
	state.Summary.RowsLoaded = len(records)
	return nil
}

// ValidateStep attaches a verdict to every record and tallies the
// summary counts. Defective rows are kept, not dropped.
type ValidateStep struct{}

func (s *ValidateStep) Execute(ctx context.Context, state *State) error {
	state.Records = ValidateAll(ctx, state.Records)

	for _, rec := range state.Records {
		if rec.Validation == nil {
			continue
		}
		if rec.Validation.Valid {
			state.Summary.ValidRows++
		} else {
			state.Summary.InvalidRows++
		}
		if len(rec.Validation.Anomalies) > 0 {
			state.Summary.AnomalousRows++
		}
	}
	return nil
}

// CleanStep normalizes every record.
type CleanStep struct{}

func (s *CleanStep) Execute(ctx context.Context, state *State) error {
	state.Records = CleanAll(ctx, state.Records)
	return nil
}

// TransformStep types the cleaned fields and derives features.
type TransformStep struct{}

func (s *TransformStep) Execute(ctx context.Context, state *State) error {
	state.Records = TransformAll(ctx, state.Records)
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a pipeline with the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially, stopping at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewTransactionPipeline creates the standard load → validate → clean →
// transform pipeline.
func NewTransactionPipeline() *Pipeline {
	return NewPipeline(
		&LoadStep{},
		&ValidateStep{},
		&CleanStep{},
		&TransformStep{},
	)
}

// Run executes the full pipeline over one file and returns the
// transformed records with a run summary. Output order matches input
// order and every data row yields exactly one record.
func Run(ctx context.Context, path string) ([]Record, Summary, error) {
	state := &State{Path: path}

	if err := NewTransactionPipeline().Execute(ctx, state); err != nil {
		return nil, state.Summary, err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Int("rows", state.Summary.RowsLoaded).
		Int("valid", state.Summary.ValidRows).
		Int("invalid", state.Summary.InvalidRows).
		Int("anomalous", state.Summary.AnomalousRows).
		Str("path", path).
		Msg("Pipeline run completed")

	return state.Records, state.Summary, nil
}
