package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"timeguesser/internal/domain"
	"timeguesser/internal/logger"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 50
)

// LeaderboardSource reads the ranking views.
type LeaderboardSource interface {
	TopScore(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	BestAccuracy(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// LeaderboardCache is satisfied by *cache.Cache.
type LeaderboardCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type LeaderboardService struct {
	source LeaderboardSource
	cache  LeaderboardCache
	ttl    time.Duration
}

// NewLeaderboardService builds the read API. cache may be nil.
func NewLeaderboardService(source LeaderboardSource, cache LeaderboardCache, ttl time.Duration) *LeaderboardService {
	return &LeaderboardService{source: source, cache: cache, ttl: ttl}
}

// ParseLeaderboardType falls back to top_score for anything unknown.
func ParseLeaderboardType(s string) domain.LeaderboardType {
	if domain.LeaderboardType(s) == domain.LeaderboardBestAccuracy {
		return domain.LeaderboardBestAccuracy
	}
	return domain.LeaderboardTopScore
}

// ClampLeaderboardLimit returns the default for unset or invalid values and caps at 50.
func ClampLeaderboardLimit(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return DefaultLeaderboardLimit
	}
	if n > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return n
}

// Get returns up to limit ranked rows, served from cache when possible.
func (s *LeaderboardService) Get(ctx context.Context, typ domain.LeaderboardType, limit int) ([]domain.LeaderboardEntry, error) {
	if s.source == nil {
		return nil, newError(ErrNotConfigured, "leaderboard store not configured", nil)
	}

	key := string(typ) + ":" + strconv.Itoa(limit)
	if entries, ok := s.cached(ctx, key); ok {
		return entries, nil
	}

	var (
		entries []domain.LeaderboardEntry
		err     error
	)
	if typ == domain.LeaderboardBestAccuracy {
		entries, err = s.source.BestAccuracy(ctx, limit)
	} else {
		entries, err = s.source.TopScore(ctx, limit)
	}
	if err != nil {
		return nil, newError(ErrPersistenceFailure, err.Error(), err)
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}

	if s.cache != nil {
		if b, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
				logger.Warn("leaderboard cache write failed", "error", err)
			}
		}
	}
	return entries, nil
}

func (s *LeaderboardService) cached(ctx context.Context, key string) ([]domain.LeaderboardEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	b, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("leaderboard cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// ScorePersisted drops cached rankings so the new score shows up.
func (s *LeaderboardService) ScorePersisted(ctx context.Context, _ domain.ScoreEvent) {
	s.Invalidate(ctx)
}

// Invalidate clears every cached ranking.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("leaderboard cache invalidation failed", "error", err)
	}
}
