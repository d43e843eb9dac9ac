package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"stayflo/internal/planner"
	"stayflo/pkg/metrics"
)

const placesCachePrefix = "places:search:"

var _ planner.CandidateSource = (*CachedCandidateSource)(nil)

// CachedCandidateSource keeps successful searches in Redis so repeated
// requests within the TTL skip the provider. Redis failures fall through
// to the wrapped source.
type CachedCandidateSource struct {
	next    planner.CandidateSource
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewCachedCandidateSource wraps next. A nil client returns next unchanged.
func NewCachedCandidateSource(next planner.CandidateSource, client *redis.Client, ttl time.Duration, m *metrics.Metrics, log *zap.Logger) planner.CandidateSource {
	if client == nil {
		return next
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedCandidateSource{next: next, client: client, ttl: ttl, metrics: m, log: log.Named("PlacesCache")}
}

func (s *CachedCandidateSource) SearchText(ctx context.Context, req planner.SearchRequest) ([]planner.PlaceCandidate, error) {
	key := searchCacheKey(req)

	raw, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []planner.PlaceCandidate
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			s.metrics.Cache("places", true)
			return cached, nil
		}
		s.log.Warn("Dropping unreadable cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		s.log.Warn("Redis get failed", zap.String("key", key), zap.Error(err))
	}
	s.metrics.Cache("places", false)

	found, err := s.next.SearchText(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(found); err == nil {
		if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.log.Warn("Redis set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return found, nil
}

func searchCacheKey(req planner.SearchRequest) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x1f%.2f\x1f%d", req.TextQuery, req.MinRating, req.MaxResults)
	if req.Bias != nil {
		fmt.Fprintf(h, "\x1f%.5f,%.5f,%.0f", req.Bias.Center.Lat, req.Bias.Center.Lng, req.Bias.RadiusMeters)
	}
	return fmt.Sprintf("%s%016x", placesCachePrefix, h.Sum64())
}
