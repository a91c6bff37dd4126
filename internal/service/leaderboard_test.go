package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"timeguesser/internal/domain"
)

type fakeLeaderboard struct {
	top, accuracy int
	err           error
}

func (f *fakeLeaderboard) TopScore(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	f.top++
	if f.err != nil {
		return nil, f.err
	}
	return []domain.LeaderboardEntry{{Rank: 1, CanonicalUserID: "0xaaa", Score: 4800}}, nil
}

func (f *fakeLeaderboard) BestAccuracy(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	f.accuracy++
	avg := 1.5
	return []domain.LeaderboardEntry{{Rank: 1, CanonicalUserID: "0xbbb", Score: 4900, AvgDelta: &avg}}, nil
}

type memCache struct {
	data        map[string][]byte
	invalidated int
}

func (m *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memCache) Invalidate(ctx context.Context) error {
	m.invalidated++
	m.data = map[string][]byte{}
	return nil
}

func TestLeaderboardCachesUntilScore(t *testing.T) {
	source := &fakeLeaderboard{}
	cache := &memCache{data: map[string][]byte{}}
	s := NewLeaderboardService(source, cache, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		entries, err := s.Get(ctx, domain.LeaderboardTopScore, 10)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(entries) != 1 || entries[0].Score != 4800 {
			t.Fatalf("entries = %+v", entries)
		}
	}
	if source.top != 1 {
		t.Fatalf("source queried %d times; want 1", source.top)
	}

	s.ScorePersisted(ctx, domain.ScoreEvent{GameID: "g"})
	if cache.invalidated != 1 {
		t.Fatalf("cache not invalidated on score")
	}

	if _, err := s.Get(ctx, domain.LeaderboardTopScore, 10); err != nil {
		t.Fatalf("get: %v", err)
	}
	if source.top != 2 {
		t.Fatalf("source queried %d times after invalidation; want 2", source.top)
	}
}

func TestLeaderboardBestAccuracy(t *testing.T) {
	source := &fakeLeaderboard{}
	s := NewLeaderboardService(source, nil, 0)

	entries, err := s.Get(context.Background(), domain.LeaderboardBestAccuracy, 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if source.accuracy != 1 || entries[0].AvgDelta == nil {
		t.Fatalf("best accuracy not served: %+v", entries)
	}
}

func TestLeaderboardErrors(t *testing.T) {
	if _, err := NewLeaderboardService(nil, nil, 0).Get(context.Background(), domain.LeaderboardTopScore, 10); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v; want NotConfigured", err)
	}

	s := NewLeaderboardService(&fakeLeaderboard{err: errors.New("relation does not exist")}, nil, 0)
	_, err := s.Get(context.Background(), domain.LeaderboardTopScore, 10)
	if !errors.Is(err, ErrPersistenceFailure) || PublicMessage(err) != "relation does not exist" {
		t.Fatalf("err = %v", err)
	}
}

func TestLeaderboardParams(t *testing.T) {
	if ParseLeaderboardType("best_accuracy") != domain.LeaderboardBestAccuracy {
		t.Fatalf("best_accuracy not parsed")
	}
	for _, in := range []string{"", "top_score", "bogus"} {
		if ParseLeaderboardType(in) != domain.LeaderboardTopScore {
			t.Fatalf("ParseLeaderboardType(%q) should fall back to top_score", in)
		}
	}

	limits := map[string]int{"": 10, "abc": 10, "0": 10, "-3": 10, "7": 7, "50": 50, "500": 50}
	for in, want := range limits {
		if got := ClampLeaderboardLimit(in); got != want {
			t.Fatalf("ClampLeaderboardLimit(%q) = %d; want %d", in, got, want)
		}
	}
}
