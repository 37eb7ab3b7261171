package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shvilbus/shvilbus/pkg/htdf"
)

type stubCandles struct {
	candleTime   time.Time
	havdalahTime time.Time
	estimated    bool
	err          error

	calls int
}

func (s *stubCandles) CandleLighting(ctx context.Context, date time.Time) (time.Time, bool, error) {
	s.calls++
	return s.candleTime, s.estimated, s.err
}

func (s *stubCandles) Havdalah(ctx context.Context, date time.Time) (time.Time, bool, error) {
	s.calls++
	return s.havdalahTime, s.estimated, s.err
}

func mustLoadSaturdayService(t *testing.T) *SaturdayService {
	t.Helper()

	service, err := LoadSaturdayService()
	if err != nil {
		t.Fatalf("Failed to load saturday service table: %v", err)
	}
	return service
}

func TestResolveWeekday(t *testing.T) {
	wednesday := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

	resolver := NewResolver(&stubCandles{}, mustLoadSaturdayService(t), 2*time.Hour)

	deadline, err := resolver.Resolve(context.Background(), wednesday, "jerusalem")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if deadline.Rule != htdf.DeadlineRuleWeekday {
		t.Errorf("Expected weekday rule, got %s", deadline.Rule)
	}
	if deadline.Time != htdf.NewClockTime(18, 0).On(wednesday) {
		t.Errorf("Expected 18:00 deadline, got %s", deadline.Time)
	}
}

func TestResolveFriday(t *testing.T) {
	friday := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	candleTime := time.Date(2025, 6, 13, 19, 4, 0, 0, time.UTC)

	t.Run("SubtractsSafetyMargin", func(t *testing.T) {
		resolver := NewResolver(&stubCandles{candleTime: candleTime}, mustLoadSaturdayService(t), 2*time.Hour)

		deadline, err := resolver.Resolve(context.Background(), friday, "jerusalem")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if deadline.Rule != htdf.DeadlineRuleFridayMargin {
			t.Errorf("Expected friday rule, got %s", deadline.Rule)
		}
		expected := time.Date(2025, 6, 13, 17, 4, 0, 0, time.UTC)
		if !deadline.Time.Equal(expected) {
			t.Errorf("Expected 17:04 deadline, got %s", deadline.Time)
		}
		if deadline.Estimated {
			t.Error("Expected a published time, got estimated")
		}
	})

	t.Run("EstimatedFlagPropagates", func(t *testing.T) {
		resolver := NewResolver(&stubCandles{candleTime: candleTime, estimated: true}, mustLoadSaturdayService(t), time.Hour)

		deadline, err := resolver.Resolve(context.Background(), friday, "jerusalem")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !deadline.Estimated {
			t.Error("Expected the estimated flag to propagate")
		}
	})

	t.Run("SourceErrorBecomesConfigError", func(t *testing.T) {
		resolver := NewResolver(&stubCandles{err: ErrTimesUnavailable}, mustLoadSaturdayService(t), time.Hour)

		_, err := resolver.Resolve(context.Background(), friday, "jerusalem")

		var configError ConfigError
		if !errors.As(err, &configError) {
			t.Fatalf("Expected ConfigError, got %v", err)
		}
	})
}

func TestResolveSaturday(t *testing.T) {
	saturday := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	t.Run("NoServiceOutsideExceptionRegions", func(t *testing.T) {
		resolver := NewResolver(&stubCandles{}, mustLoadSaturdayService(t), time.Hour)

		deadline, err := resolver.Resolve(context.Background(), saturday, "jerusalem")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if !deadline.NoService() {
			t.Errorf("Expected no-service deadline, got rule %s", deadline.Rule)
		}
		if !deadline.Time.IsZero() {
			t.Errorf("Expected zero time on a no-service deadline, got %s", deadline.Time)
		}
	})

	t.Run("FixedWindowRegion", func(t *testing.T) {
		resolver := NewResolver(&stubCandles{}, mustLoadSaturdayService(t), time.Hour)

		deadline, err := resolver.Resolve(context.Background(), saturday, "Haifa")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if deadline.Rule != htdf.DeadlineRuleSaturdayException {
			t.Errorf("Expected saturday exception rule, got %s", deadline.Rule)
		}
		if deadline.Time != htdf.NewClockTime(17, 0).On(saturday) {
			t.Errorf("Expected 17:00 window end, got %s", deadline.Time)
		}
	})

	t.Run("HavdalahWindowRegion", func(t *testing.T) {
		havdalahTime := time.Date(2025, 6, 14, 20, 21, 0, 0, time.UTC)
		resolver := NewResolver(&stubCandles{havdalahTime: havdalahTime}, mustLoadSaturdayService(t), time.Hour)

		deadline, err := resolver.Resolve(context.Background(), saturday, "tel aviv")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if deadline.Rule != htdf.DeadlineRuleSaturdayException {
			t.Errorf("Expected saturday exception rule, got %s", deadline.Rule)
		}
		if !deadline.Time.Equal(havdalahTime) {
			t.Errorf("Expected havdalah window end, got %s", deadline.Time)
		}
	})
}

func TestResolveCaches(t *testing.T) {
	friday := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	candles := &stubCandles{candleTime: time.Date(2025, 6, 13, 19, 4, 0, 0, time.UTC)}

	resolver := NewResolver(candles, mustLoadSaturdayService(t), time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := resolver.Resolve(context.Background(), friday, "jerusalem"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if candles.calls != 1 {
		t.Errorf("Expected one candle lookup across repeated resolves, got %d", candles.calls)
	}

	// A different region is a separate cache entry
	if _, err := resolver.Resolve(context.Background(), friday, "haifa"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if candles.calls != 2 {
		t.Errorf("Expected a fresh lookup for a new region, got %d calls", candles.calls)
	}
}
