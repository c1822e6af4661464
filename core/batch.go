package core

import (
	"context"
	"sync"

	"github.com/huangsam/indiscore/core/formula"
	"github.com/huangsam/indiscore/schema"
)

// ScoreBatch recomputes every record using a pool of workers. Records are
// independent, so the result order matches the input order regardless of
// which worker handled them.
func ScoreBatch(ctx context.Context, scorer *Scorer, records []schema.IndicatorRecord, workers int) ([]schema.CalculatedIndicatorValues, error) {
	if scorer == nil {
		scorer = defaultScorer
	}
	if workers < 1 {
		workers = 1
	}
	results := make([]schema.CalculatedIndicatorValues, len(records))
	if len(records) == 0 {
		return results, nil
	}

	indexCh := make(chan int, len(records))
	var wg sync.WaitGroup

	// Start worker pool
	for range min(workers, len(records)) {
		wg.Go(func() {
			for i := range indexCh {
				if ctx.Err() != nil {
					continue // drain
				}
				r := records[i]
				// each worker writes to a unique index
				results[i] = scorer.Recompute(ctx, r.Formula, r.Values())
			}
		})
	}

	for i := range records {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// CheckFormulas compiles every record's formula without running it.
// Records without a formula pass and are marked Empty.
func CheckFormulas(records []schema.IndicatorRecord) []schema.FormulaCheck {
	checks := make([]schema.FormulaCheck, len(records))
	for i, r := range records {
		check := schema.FormulaCheck{ID: r.ID, Name: r.Name, Formula: r.Formula, Passed: true}
		if !formula.ShouldEvaluate(r.Formula) {
			check.Empty = true
		} else if err := formula.Check(r.Formula); err != nil {
			check.Passed = false
			check.Error = err.Error()
		}
		checks[i] = check
	}
	return checks
}
