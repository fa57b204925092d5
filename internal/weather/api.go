package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	oneHour            = 60 * 60
	weatherCacheExpire = oneHour * 1 // cache expire in seconds
)

// Api is the OpenWeatherMap client. Responses are cached for an hour so the
// home screen can refresh freely without burning through the API quota.
type Api struct {
	cache      *freecache.Cache
	apiURL     string // e.g. https://api.openweathermap.org/data/2.5
	apiKey     string
	httpClient *http.Client
}

func NewApi(apiURL, apiKey string, httpClient *http.Client) *Api {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	megabyte := 1024 * 1024
	return &Api{
		apiURL:     apiURL,
		apiKey:     apiKey,
		cache:      freecache.NewCache(10 * megabyte),
		httpClient: httpClient,
	}
}

// CurrentByCity returns the current weather for a city name, metric units.
func (w *Api) CurrentByCity(ctx context.Context, city string) (*Report, error) {
	cacheKey := fmt.Sprintf("current::city::%s", city)
	query := url.Values{}
	query.Set("q", city)
	return w.current(ctx, cacheKey, query)
}

// CurrentByCoordinates returns the current weather for a lat/lon pair.
func (w *Api) CurrentByCoordinates(ctx context.Context, lat, lon float64) (*Report, error) {
	cacheKey := fmt.Sprintf("current::coords::%.3f::%.3f", lat, lon)
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%f", lat))
	query.Set("lon", fmt.Sprintf("%f", lon))
	return w.current(ctx, cacheKey, query)
}

func (w *Api) current(ctx context.Context, cacheKey string, query url.Values) (*Report, error) {
	// must initialize it, otherwise json.Unmarshal(...) below fails
	apiResponse := &ApiResponse{}

	if cached, err := w.cache.Get([]byte(cacheKey)); err == nil {
		if err = json.Unmarshal(cached, apiResponse); err == nil {
			return reportFromResponse(apiResponse), nil
		}
		log.Errorf("failed to unmarshal cached weather for %s: %s", cacheKey, err)
	}

	query.Set("appid", w.apiKey)
	query.Set("units", "metric")
	weatherURL := fmt.Sprintf("%s/weather?%s", w.apiURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, weatherURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read weather api response bytes: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather api returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBytes, apiResponse); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weather api response bytes: %w", err)
	}

	if err = w.cache.Set([]byte(cacheKey), respBytes, weatherCacheExpire); err != nil {
		log.Errorf("failed to write weather cache for %s: %s", cacheKey, err)
	}

	return reportFromResponse(apiResponse), nil
}
