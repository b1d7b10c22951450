package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prepstack/prepcore-backend/internal/config"
	"github.com/prepstack/prepcore-backend/internal/model"
	"github.com/prepstack/prepcore-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrChapterNotFound is returned when a chapter id resolves to nothing.
var ErrChapterNotFound = errors.New("chapter not found")

// PolicyService resolves chapter policies with a Redis read-through cache.
// Chapter rows are mutated by the course management service, so cached
// policies carry a TTL instead of explicit invalidation.
type PolicyService struct {
	chapterRepo *repository.ChapterRepository
	rdb         *redis.Client
	ttl         time.Duration
	log         zerolog.Logger
}

// NewPolicyService creates a new PolicyService.
func NewPolicyService(chapterRepo *repository.ChapterRepository, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *PolicyService {
	return &PolicyService{
		chapterRepo: chapterRepo,
		rdb:         rdb,
		ttl:         cfg.PolicyCacheTTL,
		log:         log.With().Str("component", "policy_service").Logger(),
	}
}

// GetPolicy returns the submission policy for a chapter. Cache misses and
// Redis failures fall back to PostgreSQL; a fetched policy is written back
// so the next submission is fast.
func (s *PolicyService) GetPolicy(ctx context.Context, chapterID uuid.UUID) (*model.ChapterPolicy, error) {
	cacheKey := config.CacheKey.ChapterPolicyKey(chapterID)

	val, err := s.rdb.Get(ctx, cacheKey).Result()
	if err == nil {
		var policy model.ChapterPolicy
		if jsonErr := json.Unmarshal([]byte(val), &policy); jsonErr == nil {
			return &policy, nil
		}
		// Corrupt cache entry: drop it and fall through to the database.
		_ = s.rdb.Del(ctx, cacheKey).Err()
	} else if !errors.Is(err, redis.Nil) {
		// Redis being down must not block submissions.
		s.log.Warn().Err(err).Msg("Policy cache read failed, falling back to database")
	}

	policy, err := s.chapterRepo.GetPolicy(ctx, chapterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("get chapter policy: %w", err)
	}

	if raw, jsonErr := json.Marshal(policy); jsonErr == nil {
		if err := s.rdb.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Policy cache write failed")
		}
	}

	return policy, nil
}
