package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/providers"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/repositories"
	"github.com/rehabnet/rehabtracking/backend/internal/infrastructure/observability"
)

// progressLogListTTL is how long a history window stays cached. Short
// because a fresh set completion must show up on the dashboard quickly
// even if invalidation is delayed.
const progressLogListTTL = 120

// CachedProgressLogAdapter wraps a ProgressLogRepository with caching for
// the read-heavy history window queries. Writes go straight through and
// invalidate the patient's cached windows.
type CachedProgressLogAdapter struct {
	adapter repositories.ProgressLogRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedProgressLogAdapter creates a new cached progress log adapter
func NewCachedProgressLogAdapter(adapter repositories.ProgressLogRepository, cache providers.CacheProvider, metrics *observability.Metrics) repositories.ProgressLogRepository {
	return &CachedProgressLogAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
	}
}

func progressLogListCacheKey(rehabPatientID string, since time.Time) string {
	return fmt.Sprintf("progress:logs:%s:%s", rehabPatientID, since.Format("2006-01-02"))
}

func progressLogPatientPattern(rehabPatientID string) string {
	return fmt.Sprintf("progress:logs:%s:*", rehabPatientID)
}

// GetByPatientAndDay always reads through. The day log is mutated by every
// set completion, so caching it would only serve stale documents.
func (a *CachedProgressLogAdapter) GetByPatientAndDay(ctx context.Context, rehabPatientID string, day time.Time) (*entities.ProgressLog, error) {
	return a.adapter.GetByPatientAndDay(ctx, rehabPatientID, day)
}

// Upsert writes through and invalidates the patient's cached windows
func (a *CachedProgressLogAdapter) Upsert(ctx context.Context, progressLog *entities.ProgressLog) error {
	if err := a.adapter.Upsert(ctx, progressLog); err != nil {
		return err
	}
	a.invalidatePatient(progressLog.RehabPatientID)
	return nil
}

// ListSince retrieves the patient's logs since a day, cached
func (a *CachedProgressLogAdapter) ListSince(ctx context.Context, rehabPatientID string, since time.Time) ([]*entities.ProgressLog, error) {
	cacheKey := progressLogListCacheKey(rehabPatientID, since)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var logs []*entities.ProgressLog
		unmarshalErr := json.Unmarshal(cached, &logs)
		if unmarshalErr == nil {
			observability.RecordCacheHit(ctx, a.metrics, "progress:logs")
			return logs, nil
		}
		log.Warn().Str("key", cacheKey).Err(unmarshalErr).Msg("failed to unmarshal cached progress logs")
	}

	observability.RecordCacheMiss(ctx, a.metrics, "progress:logs")

	logs, err := a.adapter.ListSince(ctx, rehabPatientID, since)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(logs); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, progressLogListTTL); err != nil {
				log.Warn().Str("key", cacheKey).Err(err).Msg("failed to cache progress logs")
			}
		}
	}()

	return logs, nil
}

// DeleteByPatient deletes through and invalidates the patient's cached windows
func (a *CachedProgressLogAdapter) DeleteByPatient(ctx context.Context, rehabPatientID string) error {
	if err := a.adapter.DeleteByPatient(ctx, rehabPatientID); err != nil {
		return err
	}
	a.invalidatePatient(rehabPatientID)
	return nil
}

func (a *CachedProgressLogAdapter) invalidatePatient(rehabPatientID string) {
	go func() {
		bgCtx := context.Background()
		if err := a.cache.DeletePattern(bgCtx, progressLogPatientPattern(rehabPatientID)); err != nil {
			log.Warn().Str("patient", rehabPatientID).Err(err).Msg("failed to invalidate progress log cache")
		}
	}()
}
