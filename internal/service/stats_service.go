package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lead-service/internal/domain"
	"lead-service/internal/repository"
	"lead-service/internal/store"

	"go.uber.org/zap"
)

const statsCacheTTL = 30 * time.Second

// StatsService serves the seller dashboard counts. Reads are point-in-time
// and may trail the store by the cache TTL; this is a dashboard, not a
// ledger.
type StatsService interface {
	SellerStats(ctx context.Context, sellerID string) (*domain.LeadStats, error)
	// InvalidateSellerStats drops the cached counts after a mutation so the
	// next dashboard read sees it immediately. Best-effort: a failed delete
	// only extends staleness up to the TTL.
	InvalidateSellerStats(ctx context.Context, sellerID string)
}

type statsService struct {
	leads  repository.LeadsRepository
	kv     store.KV
	logger *zap.Logger
}

// NewStatsService wires the aggregator. kv may be nil to disable caching.
func NewStatsService(leads repository.LeadsRepository, kv store.KV, logger *zap.Logger) StatsService {
	return &statsService{
		leads:  leads,
		kv:     kv,
		logger: logger,
	}
}

func statsCacheKey(sellerID string) string {
	return "lead-stats:" + sellerID
}

func (s *statsService) SellerStats(ctx context.Context, sellerID string) (*domain.LeadStats, error) {
	if s.kv != nil {
		cached, err := s.kv.Get(ctx, statsCacheKey(sellerID))
		if err == nil {
			var stats domain.LeadStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		} else if !errors.Is(err, store.ErrMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	stats, err := s.leads.SellerStats(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	if s.kv != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.kv.Set(ctx, statsCacheKey(sellerID), string(payload), statsCacheTTL); err != nil {
				s.logger.Warn("stats cache write failed", zap.Error(err))
			}
		}
	}

	return stats, nil
}

func (s *statsService) InvalidateSellerStats(ctx context.Context, sellerID string) {
	if s.kv == nil || sellerID == "" {
		return
	}
	if err := s.kv.Delete(ctx, statsCacheKey(sellerID)); err != nil {
		s.logger.Warn("stats cache invalidation failed",
			zap.String("seller_id", sellerID),
			zap.Error(err),
		)
	}
}
