// Package setcatalog serves the list of card sets for set pickers and
// preferred-set validation.
//
// The [Service] is a read-through cache over a [Loader]. It keeps only sets
// that contain cards, sorted newest first, and reloads after its TTL or an
// explicit [Service.Invalidate]. The loader and clock are injected so the
// service can be shared by the CLI and the HTTP server and tested without
// the network.
package setcatalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/matzehuels/decksmith/pkg/scryfall"
)

// DefaultLimit is the number of suggestions returned by Search and Recent.
const DefaultLimit = 20

// Set is one card collection.
type Set struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Type       string `json:"set_type,omitempty"`
	ReleasedAt string `json:"released_at,omitempty"` // YYYY-MM-DD
	CardCount  int    `json:"card_count"`
}

// Loader fetches the full set list.
type Loader interface {
	LoadSets(ctx context.Context) ([]Set, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) ([]Set, error)

func (f LoaderFunc) LoadSets(ctx context.Context) ([]Set, error) { return f(ctx) }

// FromClient loads sets through a catalog client.
func FromClient(c *scryfall.Client) Loader {
	return LoaderFunc(func(ctx context.Context) ([]Set, error) {
		raw, err := c.Sets(ctx)
		if err != nil {
			return nil, err
		}
		sets := make([]Set, len(raw))
		for i, s := range raw {
			sets[i] = Set{Code: strings.ToLower(s.Code), Name: s.Name, Type: s.SetType, ReleasedAt: s.ReleasedAt, CardCount: s.CardCount}
		}
		return sets, nil
	})
}

// Service caches the set list.
type Service struct {
	loader Loader
	now    func() time.Time
	ttl    time.Duration

	mu       sync.Mutex
	sets     []Set
	loadedAt time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTTL reloads the list once it is older than ttl. Zero keeps it for the
// life of the process.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// New creates a Service.
func New(loader Loader, opts ...Option) *Service {
	s := &Service{loader: loader, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Sets returns the sets with cards, newest first. The first call loads the
// list; later calls reuse it until it expires or is invalidated.
func (s *Service) Sets(ctx context.Context) ([]Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sets != nil && (s.ttl <= 0 || s.now().Sub(s.loadedAt) < s.ttl) {
		return s.sets, nil
	}
	raw, err := s.loader.LoadSets(ctx)
	if err != nil {
		return nil, err
	}
	sets := make([]Set, 0, len(raw))
	for _, set := range raw {
		if set.CardCount > 0 {
			set.Code = strings.ToLower(set.Code)
			sets = append(sets, set)
		}
	}
	sort.SliceStable(sets, func(i, j int) bool { return sets[i].ReleasedAt > sets[j].ReleasedAt })
	s.sets = sets
	s.loadedAt = s.now()
	return sets, nil
}

// Invalidate drops the cached list so the next call reloads it. Loaders
// with their own cache are invalidated too.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets = nil
	s.loadedAt = time.Time{}
	if inv, ok := s.loader.(interface{ Invalidate() error }); ok {
		_ = inv.Invalidate()
	}
}

// Recent returns the limit most recently released sets.
func (s *Service) Recent(ctx context.Context, limit int) ([]Set, error) {
	sets, err := s.Sets(ctx)
	if err != nil {
		return nil, err
	}
	return head(sets, limit), nil
}

// Find returns the set with the given code.
func (s *Service) Find(ctx context.Context, code string) (Set, bool, error) {
	sets, err := s.Sets(ctx)
	if err != nil {
		return Set{}, false, err
	}
	code = strings.ToLower(code)
	for _, set := range sets {
		if set.Code == code {
			return set, true, nil
		}
	}
	return Set{}, false, nil
}

// Search suggests sets for query. An empty query returns the most recent
// sets. Otherwise an exact code match comes first, then sets whose name or
// code contains the query, then looser fuzzy matches; ties keep release order.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Set, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Recent(ctx, limit)
	}
	sets, err := s.Sets(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	matches := fuzzy.FindFrom(q, source(sets))
	rank := func(m fuzzy.Match) int {
		set := sets[m.Index]
		switch {
		case set.Code == q:
			return 0
		case strings.Contains(strings.ToLower(set.Name), q), strings.Contains(set.Code, q):
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		ri, rj := rank(matches[i]), rank(matches[j])
		if ri != rj {
			return ri < rj
		}
		if ri == 1 {
			return matches[i].Index < matches[j].Index
		}
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Index < matches[j].Index
	})

	out := make([]Set, 0, len(matches))
	for _, m := range matches {
		out = append(out, sets[m.Index])
	}
	return head(out, limit), nil
}

// source exposes sets to the fuzzy matcher as "name code".
type source []Set

func (s source) String(i int) string { return strings.ToLower(s[i].Name) + " " + s[i].Code }
func (s source) Len() int            { return len(s) }

func head(sets []Set, limit int) []Set {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(sets) > limit {
		return sets[:limit]
	}
	return sets
}
