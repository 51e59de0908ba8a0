package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/guttosm/spimexpulse/internal/domain/models"
	"github.com/guttosm/spimexpulse/internal/logger"
	"github.com/guttosm/spimexpulse/internal/metrics"
	"github.com/guttosm/spimexpulse/internal/storage"
)

var (
	ErrInvalidDateRange = errors.New("start date is after end date")
	ErrInvalidCount     = errors.New("count must be positive")
)

// Cache is the read-through store used for query results.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// TradingService defines the read side of stored trading results.
type TradingService interface {
	GetTradingResults(ctx context.Context, filter models.TradingFilter, page models.Page) ([]models.TradingResult, error)
	GetDynamics(ctx context.Context, rng models.DateRange, filter models.TradingFilter, page models.Page) ([]models.TradingResult, error)
	GetLastTradingDates(ctx context.Context, count int) ([]time.Time, error)
}

type tradingService struct {
	repo  storage.TradingResultsRepository
	cache Cache
	log   zerolog.Logger
}

// NewTradingService builds the service. cache may be nil, which disables caching.
func NewTradingService(repo storage.TradingResultsRepository, cache Cache) TradingService {
	return &tradingService{repo: repo, cache: cache, log: logger.Component("trading_service")}
}

// GetTradingResults returns the newest records matching filter.
func (s *tradingService) GetTradingResults(ctx context.Context, filter models.TradingFilter, page models.Page) ([]models.TradingResult, error) {
	page = page.Normalize()
	key := fmt.Sprintf("get_trading_results:%s:%s:%s:%d:%d",
		keyPart(filter.OilID), keyPart(filter.DeliveryTypeID), keyPart(filter.DeliveryBasisID), page.Limit, page.Offset)

	return readThrough(ctx, s, key, func() ([]models.TradingResult, error) {
		return s.repo.ListTradingResults(ctx, filter, page)
	})
}

// GetDynamics returns records traded within rng (inclusive) matching filter, newest first.
func (s *tradingService) GetDynamics(ctx context.Context, rng models.DateRange, filter models.TradingFilter, page models.Page) ([]models.TradingResult, error) {
	if rng.Start.After(rng.End) {
		return nil, ErrInvalidDateRange
	}
	page = page.Normalize()
	key := fmt.Sprintf("get_dynamics:%s:%s:%s:%s:%s:%d:%d",
		rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02"),
		keyPart(filter.OilID), keyPart(filter.DeliveryTypeID), keyPart(filter.DeliveryBasisID), page.Limit, page.Offset)

	return readThrough(ctx, s, key, func() ([]models.TradingResult, error) {
		return s.repo.ListDynamics(ctx, rng, filter, page)
	})
}

// GetLastTradingDates returns up to count distinct trading dates, newest first.
func (s *tradingService) GetLastTradingDates(ctx context.Context, count int) ([]time.Time, error) {
	if count < 1 {
		return nil, ErrInvalidCount
	}
	key := fmt.Sprintf("last_trading_dates:%d", count)

	return readThrough(ctx, s, key, func() ([]time.Time, error) {
		return s.repo.LastTradingDates(ctx, count)
	})
}

// readThrough serves key from the cache or loads and stores it.
// Cache failures never fail the request; they are logged and the repository is used.
func readThrough[T any](ctx context.Context, s *tradingService, key string, load func() (T, error)) (T, error) {
	var out T
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, key, &out)
		switch {
		case err != nil:
			s.log.Warn().Str("key", key).Err(err).Msg("cache read failed")
		case hit:
			metrics.RecordCacheHit()
			return out, nil
		default:
			metrics.RecordCacheMiss()
		}
	}

	out, err := load()
	if err != nil {
		var zero T
		return zero, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out); err != nil {
			s.log.Warn().Str("key", key).Err(err).Msg("cache write failed")
		}
	}
	return out, nil
}

// keyPart encodes one optional filter field of a cache key. An absent field is "-" and a
// present one is "=" followed by its query-escaped value, so no value can spell another
// field's state or contain the ":" separator.
func keyPart(v *string) string {
	if v == nil {
		return "-"
	}
	return "=" + url.QueryEscape(*v)
}
