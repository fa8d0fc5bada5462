// Package registry composes the document source, parser, index, matcher
// and budgeted loader behind a single Load(query) entry point. The index
// is built on first use and shared read-only across concurrent loads;
// rebuilds happen off to the side and are swapped in atomically.
package registry

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/parchment-ai/skillreg/pkg/index"
	"github.com/parchment-ai/skillreg/pkg/loader"
	"github.com/parchment-ai/skillreg/pkg/logger"
	"github.com/parchment-ai/skillreg/pkg/match"
	"github.com/parchment-ai/skillreg/pkg/skill"
	"github.com/parchment-ai/skillreg/pkg/source"
	"github.com/parchment-ai/skillreg/pkg/telemetry"
)

// Payload is the bounded context assembled for one query.
type Payload struct {
	// Skills are the selected records in ranked order.
	Skills []*skill.Record
	// TotalBytes is the summed body size of the selected skills.
	TotalBytes int
	// Truncated reports that more relevant material exists but was
	// withheld by the budget.
	Truncated bool
}

// Content concatenates the selected bodies in ranked order.
func (p *Payload) Content() string {
	bodies := make([]string, 0, len(p.Skills))
	for _, rec := range p.Skills {
		bodies = append(bodies, rec.Body)
	}
	return strings.Join(bodies, "\n\n")
}

// IDs returns the selected skill ids in ranked order.
func (p *Payload) IDs() []string {
	ids := make([]string, 0, len(p.Skills))
	for _, rec := range p.Skills {
		ids = append(ids, rec.ID)
	}
	return ids
}

// Registry is the facade external callers use. It is safe for concurrent
// use: the index pointer is swapped atomically and every published index
// is immutable.
type Registry struct {
	cfg     Config
	scanner *source.Scanner
	ldr     *loader.Loader

	buildMu sync.Mutex // serializes index builds
	idx     atomic.Pointer[index.Index]
}

// Option is a function that configures a Registry
type Option func(*Registry) error

// WithScanner replaces the default document scanner.
func WithScanner(scanner *source.Scanner) Option {
	return func(r *Registry) error {
		r.scanner = scanner
		return nil
	}
}

// WithScorer replaces the default token-overlap scorer.
func WithScorer(scorer match.Scorer) Option {
	return func(r *Registry) error {
		r.ldr = loader.New(loader.WithScorer(scorer))
		return nil
	}
}

// New creates a Registry. The index is not built until the first Load or
// an explicit Rebuild.
func New(cfg Config, opts ...Option) (*Registry, error) {
	r := &Registry{cfg: cfg.withDefaults()}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if r.scanner == nil {
		var scannerOpts []source.Option
		if len(r.cfg.SkillDirs) > 0 {
			scannerOpts = append(scannerOpts, source.WithDirs(r.cfg.SkillDirs...))
		}
		scanner, err := source.NewScanner(scannerOpts...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create document scanner")
		}
		r.scanner = scanner
	}
	if r.ldr == nil {
		r.ldr = loader.New()
	}

	return r, nil
}

// Load scores every indexed skill against the query and returns as much
// relevant content as fits the configured budget. Budget overflow on the
// top match is reported as loader.BudgetExceededError, which is
// recoverable: retry with a larger budget or fewer items.
func (r *Registry) Load(ctx context.Context, query string) (*Payload, error) {
	idx, err := r.activeIndex(ctx)
	if err != nil {
		return nil, err
	}

	var payload *Payload
	err = telemetry.WithSpan(ctx, "skills.load", func(ctx context.Context) error {
		sel, err := r.ldr.Select(query, idx, r.cfg.MaxTotalBytes, r.cfg.MaxItems)
		if err != nil {
			return err
		}

		payload = &Payload{
			Skills:     sel.Records,
			TotalBytes: sel.TotalBytes,
			Truncated:  sel.Truncated,
		}

		telemetry.SetAttributes(ctx,
			attribute.Int("skills.indexed", idx.Len()),
			attribute.Int("skills.selected", len(payload.Skills)),
			attribute.Int("skills.total_bytes", payload.TotalBytes),
			attribute.Bool("skills.truncated", payload.Truncated),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"selected":    payload.IDs(),
		"total_bytes": payload.TotalBytes,
		"truncated":   payload.Truncated,
	}).Debug("assembled skill payload")

	return payload, nil
}

// Get looks up a single indexed skill by id, building the index on first
// use like Load does.
func (r *Registry) Get(ctx context.Context, id string) (*skill.Record, error) {
	idx, err := r.activeIndex(ctx)
	if err != nil {
		return nil, err
	}

	rec, ok := idx.Get(id)
	if !ok {
		return nil, errors.Errorf("skill %q not found", id)
	}
	return rec, nil
}

// All enumerates every indexed skill in ascending id order.
func (r *Registry) All(ctx context.Context) ([]*skill.Record, error) {
	idx, err := r.activeIndex(ctx)
	if err != nil {
		return nil, err
	}
	return idx.All(), nil
}

// Rebuild scans the sources and replaces the active index. The new index
// is built in full before the swap, so in-flight loads keep reading the
// previous one and never observe a mixed state. A failed rebuild leaves
// the previous index active.
func (r *Registry) Rebuild(ctx context.Context) error {
	r.buildMu.Lock()
	defer r.buildMu.Unlock()
	return r.rebuildLocked(ctx)
}

func (r *Registry) activeIndex(ctx context.Context) (*index.Index, error) {
	if idx := r.idx.Load(); idx != nil {
		return idx, nil
	}

	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	if idx := r.idx.Load(); idx != nil {
		return idx, nil
	}
	if err := r.rebuildLocked(ctx); err != nil {
		return nil, err
	}
	return r.idx.Load(), nil
}

func (r *Registry) rebuildLocked(ctx context.Context) error {
	return telemetry.WithSpan(ctx, "skills.rebuild", func(ctx context.Context) error {
		docs, err := r.scanner.Scan(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to scan skill documents")
		}

		records, err := index.ParseDocuments(docs)
		if err != nil {
			return errors.Wrap(err, "skill corpus contains malformed documents")
		}

		records = skill.FilterByAllowlist(records, r.cfg.Allowed)
		records, err = skill.FilterByTools(records, r.cfg.ToolPatterns)
		if err != nil {
			return err
		}

		if r.cfg.IncludeBuiltin {
			records, err = appendBuiltin(records, r.cfg)
			if err != nil {
				return err
			}
		}

		idx, err := index.Build(records)
		if err != nil {
			return errors.Wrap(err, "failed to build skill index")
		}

		r.idx.Store(idx)
		logger.G(ctx).WithField("skills", idx.Len()).Info("skill index built")
		telemetry.SetAttributes(ctx, attribute.Int("skills.indexed", idx.Len()))
		return nil
	})
}

// appendBuiltin adds embedded default skills, skipping any whose id is
// already taken by an on-disk document so user skills keep precedence.
func appendBuiltin(records []*skill.Record, cfg Config) ([]*skill.Record, error) {
	docs, err := source.Builtin()
	if err != nil {
		return nil, err
	}

	builtin, err := index.ParseDocuments(docs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse builtin skills")
	}

	builtin = skill.FilterByAllowlist(builtin, cfg.Allowed)
	builtin, err = skill.FilterByTools(builtin, cfg.ToolPatterns)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]struct{}, len(records))
	for _, rec := range records {
		taken[rec.ID] = struct{}{}
	}
	for _, rec := range builtin {
		if _, exists := taken[rec.ID]; exists {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
