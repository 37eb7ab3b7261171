package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/rs/zerolog/log"
)

const defaultHebcalURL = "https://www.hebcal.com/shabbat"

// Jerusalem is used as the default reference point: candle-lighting variance
// across the country is around five minutes, well inside the safety margin.
const (
	defaultLatitude  = 31.7683
	defaultLongitude = 35.2137
)

// Conservative fallback estimates when Hebcal is unreachable. Winter sunsets
// (Oct-Mar) are early, summer ones late; havdalah follows the next evening.
var (
	fallbackWinterCandles  = clockDuration(16, 30)
	fallbackSummerCandles  = clockDuration(19, 0)
	fallbackWinterHavdalah = clockDuration(17, 30)
	fallbackSummerHavdalah = clockDuration(20, 0)
)

// HebcalClient fetches Shabbat times from the Hebcal API, retrying with
// exponential backoff and falling back to a conservative seasonal estimate
// when the API stays unreachable. Responses are cached (when a cache is
// configured) so one planning run fetches each date at most once.
type HebcalClient struct {
	URL        string
	Latitude   float64
	Longitude  float64
	HTTPClient *http.Client

	Cache *cache.Cache[string]
}

func NewHebcalClient(responseCache *cache.Cache[string]) *HebcalClient {
	return &HebcalClient{
		URL:       defaultHebcalURL,
		Latitude:  defaultLatitude,
		Longitude: defaultLongitude,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Cache: responseCache,
	}
}

type hebcalResponse struct {
	Items []hebcalItem `json:"items"`
}

type hebcalItem struct {
	Category string `json:"category"`
	Date     string `json:"date"`
}

func (h *HebcalClient) CandleLighting(ctx context.Context, date time.Time) (time.Time, bool, error) {
	return h.lookup(ctx, date, "candles", fallbackWinterCandles, fallbackSummerCandles)
}

func (h *HebcalClient) Havdalah(ctx context.Context, date time.Time) (time.Time, bool, error) {
	return h.lookup(ctx, date, "havdalah", fallbackWinterHavdalah, fallbackSummerHavdalah)
}

func (h *HebcalClient) lookup(ctx context.Context, date time.Time, category string, winterFallback time.Duration, summerFallback time.Duration) (time.Time, bool, error) {
	items, err := h.fetch(ctx, date)
	if err == nil {
		for _, item := range items {
			if item.Category != category {
				continue
			}

			parsed, parseErr := time.Parse(time.RFC3339, item.Date)
			if parseErr != nil {
				log.Warn().Err(parseErr).Str("category", category).Msg("Failed to parse Hebcal time")
				break
			}

			// Everything downstream works in naive local time
			local := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), parsed.Hour(), parsed.Minute(), parsed.Second(), 0, date.Location())

			return local, false, nil
		}

		log.Warn().
			Str("category", category).
			Str("date", date.Format("2006-01-02")).
			Msg("Hebcal response missing expected category, using fallback estimate")
	} else {
		log.Warn().Err(err).Str("date", date.Format("2006-01-02")).Msg("Hebcal request failed, using fallback estimate")
	}

	fallback := summerFallback
	if isWinterMonth(date.Month()) {
		fallback = winterFallback
	}

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	return midnight.Add(fallback), true, nil
}

func (h *HebcalClient) fetch(ctx context.Context, date time.Time) ([]hebcalItem, error) {
	cacheKey := fmt.Sprintf("hebcal:%s", date.Format("2006-01-02"))

	if h.Cache != nil {
		if cached, err := h.Cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var response hebcalResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				return response.Items, nil
			}
		}
	}

	query := url.Values{}
	query.Set("cfg", "json")
	query.Set("geo", "pos")
	query.Set("latitude", fmt.Sprintf("%f", h.Latitude))
	query.Set("longitude", fmt.Sprintf("%f", h.Longitude))
	query.Set("tzid", "Asia/Jerusalem")
	query.Set("M", "on")
	query.Set("b", "18")
	query.Set("gy", fmt.Sprintf("%d", date.Year()))
	query.Set("gm", fmt.Sprintf("%d", int(date.Month())))
	query.Set("gd", fmt.Sprintf("%d", date.Day()))

	requestURL := fmt.Sprintf("%s?%s", h.URL, query.Encode())

	var body []byte
	operation := func() error {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		response, err := h.HTTPClient.Do(request)
		if err != nil {
			return err
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return fmt.Errorf("hebcal returned status %d", response.StatusCode)
		}

		body, err = io.ReadAll(response.Body)
		return err
	}

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(retryBackoff, ctx)); err != nil {
		return nil, err
	}

	var response hebcalResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}

	if h.Cache != nil {
		if err := h.Cache.Set(ctx, cacheKey, string(body)); err != nil {
			log.Debug().Err(err).Msg("Failed to cache Hebcal response")
		}
	}

	return response.Items, nil
}

func isWinterMonth(month time.Month) bool {
	switch month {
	case time.January, time.February, time.March, time.October, time.November, time.December:
		return true
	}
	return false
}

func clockDuration(hour int, minute int) time.Duration {
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute
}
