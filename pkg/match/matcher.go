package match

import (
	"sync"

	"github.com/parchment-ai/skillreg/pkg/skill"
)

// Scorer rates how applicable a skill is to a query. Scores are
// non-negative; zero means "not applicable at all" and excludes the record
// from selection regardless of remaining budget.
type Scorer interface {
	Score(query string, rec *skill.Record) float64
}

// OverlapScorer is the default Scorer: a Dice-style token overlap between
// the query and the skill's name plus description, scaled to [0, 1].
// It is stateless apart from a single-entry query-token cache, so one
// selection pass tokenizes its query only once.
type OverlapScorer struct {
	mu          sync.Mutex
	cachedQuery string
	cachedSet   TokenSet
}

// NewOverlapScorer creates the default token-overlap scorer.
func NewOverlapScorer() *OverlapScorer {
	return &OverlapScorer{}
}

// Score computes 2*|intersection| / (|queryTokens| + |skillTokens|).
// A record sharing no token with the query scores exactly 0.
func (s *OverlapScorer) Score(query string, rec *skill.Record) float64 {
	queryTokens := s.queryTokens(query)
	recTokens := RecordTokens(rec)

	if len(queryTokens) == 0 || len(recTokens) == 0 {
		return 0
	}

	overlap := intersectionSize(queryTokens, recTokens)
	if overlap == 0 {
		return 0
	}

	return 2 * float64(overlap) / float64(len(queryTokens)+len(recTokens))
}

// RecordTokens tokenizes the matchable text of a record: its name and
// description. The body is never consulted.
func RecordTokens(rec *skill.Record) TokenSet {
	return Tokenize(rec.Name + " " + rec.Description)
}

func (s *OverlapScorer) queryTokens(query string) TokenSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	if query != s.cachedQuery || s.cachedSet == nil {
		s.cachedQuery = query
		s.cachedSet = Tokenize(query)
	}
	return s.cachedSet
}
