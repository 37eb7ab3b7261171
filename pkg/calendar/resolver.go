// Package calendar computes the hard return-by deadline for a hiking date:
// a fixed evening hour on weekdays, candle lighting minus a safety margin on
// Fridays, and exception-service windows (or no service at all) on
// Saturdays.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shvilbus/shvilbus/pkg/htdf"
)

// ErrTimesUnavailable is returned by a CandleSource that has no published or
// estimated time for the requested date.
var ErrTimesUnavailable = errors.New("shabbat times unavailable")

type ConfigError struct {
	Detail string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("calendar configuration error: %s", e.Detail)
}

// CandleSource supplies candle-lighting and havdalah times for a date. The
// estimated flag marks values derived from a fallback rather than a
// published time.
type CandleSource interface {
	CandleLighting(ctx context.Context, date time.Time) (value time.Time, estimated bool, err error)
	Havdalah(ctx context.Context, date time.Time) (value time.Time, estimated bool, err error)
}

var DefaultLatestReturn = htdf.NewClockTime(18, 0)

// Resolver derives Deadlines. It is constructed per planning run so the
// query's safety margin is fixed for the lifetime of its cache.
type Resolver struct {
	Candles CandleSource

	SafetyMargin time.Duration
	LatestReturn htdf.ClockTime

	Saturday *SaturdayService

	cache *Cache
}

func NewResolver(candles CandleSource, saturday *SaturdayService, safetyMargin time.Duration) *Resolver {
	return &Resolver{
		Candles:      candles,
		SafetyMargin: safetyMargin,
		LatestReturn: DefaultLatestReturn,
		Saturday:     saturday,
		cache:        NewCache(),
	}
}

// Resolve computes (or returns the cached) deadline for a date and region.
// The computation is a pure function of supplied calendar facts, so a lost
// cache race is harmless.
func (r *Resolver) Resolve(ctx context.Context, date time.Time, region string) (htdf.Deadline, error) {
	key := deadlineKey(date, region)

	if deadline, exists := r.cache.fetch(key); exists {
		return deadline, nil
	}

	deadline, err := r.resolve(ctx, date, region)
	if err != nil {
		return htdf.Deadline{}, err
	}

	return r.cache.store(key, deadline), nil
}

func (r *Resolver) resolve(ctx context.Context, date time.Time, region string) (htdf.Deadline, error) {
	switch date.Weekday() {
	case time.Saturday:
		return r.resolveSaturday(ctx, date, region)
	case time.Friday:
		return r.resolveFriday(ctx, date, region)
	default:
		return htdf.Deadline{
			Time:   r.LatestReturn.On(date),
			Rule:   htdf.DeadlineRuleWeekday,
			Region: region,
		}, nil
	}
}

func (r *Resolver) resolveFriday(ctx context.Context, date time.Time, region string) (htdf.Deadline, error) {
	candles, estimated, err := r.Candles.CandleLighting(ctx, date)
	if err != nil {
		return htdf.Deadline{}, ConfigError{
			Detail: fmt.Sprintf("no candle-lighting time for %s: %s", date.Format("2006-01-02"), err),
		}
	}

	return htdf.Deadline{
		Time:      candles.Add(-r.SafetyMargin),
		Rule:      htdf.DeadlineRuleFridayMargin,
		Region:    region,
		Estimated: estimated,
	}, nil
}

func (r *Resolver) resolveSaturday(ctx context.Context, date time.Time, region string) (htdf.Deadline, error) {
	window, exists := r.Saturday.Lookup(region)
	if !exists {
		return htdf.Deadline{
			Rule:   htdf.DeadlineRuleNoService,
			Region: region,
		}, nil
	}

	end, estimated, err := window.EndOn(ctx, date, r.Candles)
	if err != nil {
		return htdf.Deadline{}, ConfigError{
			Detail: fmt.Sprintf("no exception window end for %s on %s: %s", region, date.Format("2006-01-02"), err),
		}
	}

	return htdf.Deadline{
		Time:      end,
		Rule:      htdf.DeadlineRuleSaturdayException,
		Region:    region,
		Estimated: estimated,
	}, nil
}

func deadlineKey(date time.Time, region string) string {
	return fmt.Sprintf("%s:%s", date.Format("2006-01-02"), region)
}
