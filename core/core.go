// Package core has core logic for scoring indicators: the scorer, the
// per-owner calculators and hub, batch scoring and the command entry points.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/indiscore/core/formula"
	"github.com/huangsam/indiscore/core/numeric"
	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/internal/outwriter"
	"github.com/huangsam/indiscore/schema"
)

// ErrCheckFailed is returned by ExecuteCheck when any formula fails to compile.
var ErrCheckFailed = errors.New("formula check failed")

// NewScorerFromConfig builds a Scorer honoring the configured locale and
// evaluation bounds.
func NewScorerFromConfig(cfg *contract.Config) *Scorer {
	ev := formula.NewEvaluator(cfg.EvaluatorOptions())
	return NewScorer(ev, numeric.NewFormatter(cfg.Locale))
}

// GetBatchResults loads every record from src and scores it.
func GetBatchResults(ctx context.Context, cfg *contract.Config, src contract.ValuesSource) ([]schema.IndicatorResult, time.Duration, error) {
	start := time.Now()
	records, err := src.Load(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load %s: %w", src.Describe(), err)
	}
	if cfg.Verbose {
		contract.LogInfo("loaded %d records from %s", len(records), src.Describe())
	}

	values, err := ScoreBatch(ctx, NewScorerFromConfig(cfg), records, cfg.Workers)
	if err != nil {
		return nil, 0, err
	}
	results := schema.EnrichResults(records, values)
	if cfg.Verbose {
		for _, r := range results {
			if r.Result.CalculateFailed {
				contract.LogWarn(fmt.Sprintf("Formula for %s failed", r.ID), errors.New(r.Result.CalculateFailureReason))
			}
		}
	}
	return results, time.Since(start), nil
}

// ExecuteBatch scores every record in src and writes the results.
// It serves as the main entry point for the 'batch' command.
func ExecuteBatch(ctx context.Context, cfg *contract.Config, src contract.ValuesSource) error {
	results, duration, err := GetBatchResults(ctx, cfg, src)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteResults(results, cfg, duration)
}

// GetCheckResult loads every record from src and compiles its formula.
func GetCheckResult(ctx context.Context, src contract.ValuesSource) (schema.CheckResult, time.Duration, error) {
	start := time.Now()
	records, err := src.Load(ctx)
	if err != nil {
		return schema.CheckResult{}, 0, fmt.Errorf("failed to load %s: %w", src.Describe(), err)
	}
	return schema.NewCheckResult(CheckFormulas(records)), time.Since(start), nil
}

// ExecuteCheck compiles every formula in src for CI gating. It writes the
// check report and returns ErrCheckFailed if any formula is broken.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, src contract.ValuesSource) error {
	result, duration, err := GetCheckResult(ctx, src)
	if err != nil {
		return err
	}
	if err := outwriter.NewOutWriter().WriteChecks(result, cfg, duration); err != nil {
		return err
	}
	if !result.Passed {
		return fmt.Errorf("%w: %d of %d formulas", ErrCheckFailed, result.Failed, result.Total)
	}
	return nil
}

// ExecuteScore scores one current/previous pair against script.
// Raw readings go through the same normalization as source records.
func ExecuteScore(ctx context.Context, cfg *contract.Config, script string, current, previous any) error {
	values := schema.IndicatorValues{
		Loaded:   true,
		Current:  numeric.Optional(current),
		Previous: numeric.Optional(previous),
	}
	result := NewScorerFromConfig(cfg).Recompute(ctx, script, values)
	return outwriter.NewOutWriter().WriteScore(result, cfg)
}

// ExecuteFunctions lists the names visible to formulas.
func ExecuteFunctions(_ context.Context, cfg *contract.Config) error {
	return outwriter.NewOutWriter().WriteFunctions(formula.Symbols(), cfg)
}
