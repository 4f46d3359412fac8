package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/pkg/clock"
	"crm-engagement/internal/repository"
	"crm-engagement/internal/service/window"
)

const (
	statsCacheKey = "crm:dashboard:stats"
	statsCacheTTL = 5 * time.Minute
)

// Cache is the subset of the Redis client the dashboard uses.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Service interface {
	GetStats(ctx context.Context) (*domain.EngagementStats, error)
	// Record drops the cached stats after any engine pass so the next read
	// reflects it.
	Record(ctx context.Context, input domain.RecordRunInput) error
}

type service struct {
	statsRepo repository.StatsRepository
	runRepo   repository.EngineRunRepository
	cache     Cache
	clock     clock.Clock
	loc       *time.Location
	log       logrus.FieldLogger
}

// NewService builds the dashboard. cache may be nil.
func NewService(statsRepo repository.StatsRepository, runRepo repository.EngineRunRepository, cache Cache, clk clock.Clock, loc *time.Location, log logrus.FieldLogger) Service {
	return &service{
		statsRepo: statsRepo,
		runRepo:   runRepo,
		cache:     cache,
		clock:     clk,
		loc:       loc,
		log:       log,
	}
}

func (s *service) GetStats(ctx context.Context) (*domain.EngagementStats, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, statsCacheKey).Result(); err == nil {
			var stats domain.EngagementStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	now := s.clock.Now()
	th := window.NewThresholds(now, s.loc)

	stats, err := s.statsRepo.Engagement(ctx, th.TwoDay, th.FiveDay)
	if err != nil {
		return nil, err
	}
	stats.GeneratedAt = now

	runs, _, err := s.runRepo.List(ctx, domain.RunKindFull, domain.PaginationParams{Page: 1, PageSize: 1})
	if err != nil {
		s.log.WithError(err).Warn("failed to load last full run")
	} else if len(runs) > 0 {
		stats.LastFullRun = &runs[0]
	}

	if s.cache != nil {
		if statsJSON, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, statsJSON, statsCacheTTL).Err(); err != nil {
				s.log.WithError(err).Debug("failed to cache dashboard stats")
			}
		}
	}

	return stats, nil
}

func (s *service) Record(ctx context.Context, input domain.RecordRunInput) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Del(ctx, statsCacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate dashboard stats: %w", err)
	}
	return nil
}
