// Package scoring computes online scores and looks up client interests through the store.
package scoring

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Overland-East-Bay/scoring-api/internal/domain"
	"github.com/Overland-East-Bay/scoring-api/internal/ports/out/store"
)

// ScoreTTL is how long a computed score stays in the local cache.
const ScoreTTL = time.Hour

// lookupLimit bounds concurrent interest lookups per request.
const lookupLimit = 8

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Score returns the cached score for the profile or computes and caches a new one.
// The cache is best-effort, so Score never fails.
func (s *Service) Score(ctx context.Context, p domain.Profile) float64 {
	key := ScoreKey(p)
	if b, ok := s.store.CacheGet(ctx, key); ok {
		if v, err := strconv.ParseFloat(string(b), 64); err == nil && v != 0 {
			return v
		}
	}

	var score float64
	if p.Phone != nil {
		score += 1.5
	}
	if p.Email != nil {
		score += 1.5
	}
	if p.Birthday != nil && p.Gender != nil {
		score += 1.5
	}
	if p.FirstName != nil && p.LastName != nil {
		score += 0.5
	}

	s.store.CacheSet(ctx, key, []byte(strconv.FormatFloat(score, 'f', -1, 64)), ScoreTTL)
	return score
}

// ScoreKey is the cache key of a profile: its name, phone and birthday digested.
func ScoreKey(p domain.Profile) string {
	var b strings.Builder
	for _, part := range []*string{p.FirstName, p.LastName, p.Phone} {
		if part != nil {
			b.WriteString(*part)
		}
	}
	if p.Birthday != nil {
		b.WriteString(p.Birthday.Format("20060102"))
	}
	sum := md5.Sum([]byte(b.String()))
	return "uid:" + hex.EncodeToString(sum[:])
}

// Interests reads the interest list of one client. An unknown client has none.
func (s *Service) Interests(ctx context.Context, id domain.ClientID) ([]string, error) {
	raw, ok, err := s.store.Get(ctx, domain.InterestsKey(id))
	if err != nil {
		return nil, err
	}
	if !ok || len(raw) == 0 {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode interests of client %s: %w", id, err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// ClientsInterests looks up every id concurrently. The result is keyed by the decimal
// id; repeated ids collapse into one entry.
func (s *Service) ClientsInterests(ctx context.Context, ids []domain.ClientID) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupLimit)
	seen := make(map[domain.ClientID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		g.Go(func() error {
			interests, err := s.Interests(ctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			out[id.String()] = interests
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
