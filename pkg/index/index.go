// Package index holds parsed skill records in an immutable in-memory
// index. An index is built wholesale and never mutated afterwards, so it
// can be shared across concurrent readers without locking; any update is a
// fresh build swapped in by the caller.
package index

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/parchment-ai/skillreg/pkg/skill"
	"github.com/parchment-ai/skillreg/pkg/source"
)

// DuplicateIDError indicates two input records resolving to the same id.
// It aborts the whole build; no partial index is ever returned.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate skill id %q", e.ID)
}

// Index is a read-only mapping from skill id to record.
type Index struct {
	records map[string]*skill.Record
	ordered []*skill.Record
}

// Build constructs an index from parsed records. It fails with
// DuplicateIDError when two records share an id.
func Build(records []*skill.Record) (*Index, error) {
	byID := make(map[string]*skill.Record, len(records))
	ordered := make([]*skill.Record, 0, len(records))

	for _, rec := range records {
		if _, exists := byID[rec.ID]; exists {
			return nil, &DuplicateIDError{ID: rec.ID}
		}
		byID[rec.ID] = rec
		ordered = append(ordered, rec)
	}

	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ID < ordered[j].ID
	})

	return &Index{records: byID, ordered: ordered}, nil
}

// ParseDocuments parses every raw document, collecting all per-document
// parse errors so a malformed corpus reports every problem at once instead
// of one build attempt per fix.
func ParseDocuments(docs []source.Document) ([]*skill.Record, error) {
	var parseErrs *multierror.Error
	records := make([]*skill.Record, 0, len(docs))

	for _, doc := range docs {
		rec, err := skill.Parse(doc.Raw)
		if err != nil {
			parseErrs = multierror.Append(parseErrs, errors.Wrapf(err, "parsing %s", doc.Path))
			continue
		}
		records = append(records, rec)
	}

	if err := parseErrs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return records, nil
}

// BuildDocuments parses raw documents and builds the index in one step,
// failing closed on any parse error or duplicate id.
func BuildDocuments(docs []source.Document) (*Index, error) {
	records, err := ParseDocuments(docs)
	if err != nil {
		return nil, err
	}
	return Build(records)
}

// Get looks up a record by id.
func (ix *Index) Get(id string) (*skill.Record, bool) {
	rec, ok := ix.records[id]
	return rec, ok
}

// All enumerates every record in ascending id order. The returned slice is
// a copy; the records themselves are shared and must not be mutated.
func (ix *Index) All() []*skill.Record {
	all := make([]*skill.Record, len(ix.ordered))
	copy(all, ix.ordered)
	return all
}

// Len returns the number of indexed records.
func (ix *Index) Len() int {
	return len(ix.ordered)
}
