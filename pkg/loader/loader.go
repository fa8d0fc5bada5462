// Package loader ranks indexed skills against a query and selects as many
// top-ranked records as fit a byte and item budget. Returned bodies are
// always complete; a record that does not fit is skipped, never truncated.
package loader

import (
	"fmt"
	"sort"

	"github.com/parchment-ai/skillreg/pkg/index"
	"github.com/parchment-ai/skillreg/pkg/match"
	"github.com/parchment-ai/skillreg/pkg/skill"
)

// BudgetExceededError is returned when the single best-matching skill is
// itself larger than the whole byte budget. It distinguishes "no match"
// from "match found but too large" so callers can retry with a bigger
// budget.
type BudgetExceededError struct {
	ID            string
	SizeBytes     int
	MaxTotalBytes int
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("top-ranked skill %q (%d bytes) exceeds the %d byte budget",
		e.ID, e.SizeBytes, e.MaxTotalBytes)
}

// Selection is the outcome of one budgeted selection pass.
type Selection struct {
	// Records are the accepted skills in ranked order.
	Records []*skill.Record
	// TotalBytes is the summed body size of the accepted records.
	TotalBytes int
	// Truncated is true iff at least one positively scored record was
	// excluded by the byte or item budget.
	Truncated bool
}

// Loader selects skills for a query within a budget.
type Loader struct {
	scorer match.Scorer
}

// Option is a function that configures a Loader
type Option func(*Loader)

// WithScorer replaces the default token-overlap scorer.
func WithScorer(scorer match.Scorer) Option {
	return func(l *Loader) {
		l.scorer = scorer
	}
}

// New creates a Loader, defaulting to match.NewOverlapScorer().
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.scorer == nil {
		l.scorer = match.NewOverlapScorer()
	}
	return l
}

type ranked struct {
	rec   *skill.Record
	score float64
}

// Select scores every indexed record, drops zero scores, and greedily
// accepts records in rank order while the running totals stay within
// maxTotalBytes and maxItems. It is a pure function of its arguments and
// the immutable index, so identical calls yield identical selections.
func (l *Loader) Select(query string, idx *index.Index, maxTotalBytes, maxItems int) (*Selection, error) {
	candidates := make([]ranked, 0, idx.Len())
	for _, rec := range idx.All() {
		if score := l.scorer.Score(query, rec); score > 0 {
			candidates = append(candidates, ranked{rec: rec, score: score})
		}
	}

	// Descending score, ties broken by ascending id for reproducibility.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].rec.ID < candidates[j].rec.ID
	})

	if len(candidates) == 0 {
		return &Selection{}, nil
	}

	if top := candidates[0].rec; top.SizeBytes > maxTotalBytes {
		return nil, &BudgetExceededError{
			ID:            top.ID,
			SizeBytes:     top.SizeBytes,
			MaxTotalBytes: maxTotalBytes,
		}
	}

	sel := &Selection{}
	for _, candidate := range candidates {
		if len(sel.Records) >= maxItems {
			sel.Truncated = true
			break
		}
		if sel.TotalBytes+candidate.rec.SizeBytes > maxTotalBytes {
			sel.Truncated = true
			continue
		}
		sel.Records = append(sel.Records, candidate.rec)
		sel.TotalBytes += candidate.rec.SizeBytes
	}

	return sel, nil
}
