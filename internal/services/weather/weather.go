package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
)

// Report is the current weather for a resolved city.
type Report struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	WeatherCode int     `json:"weatherCode"`
}

// ErrCityNotFound is returned when geocoding yields no match.
var ErrCityNotFound = fmt.Errorf("city not found")

// Client fetches current weather from the Open-Meteo APIs.
type Client struct {
	httpClient   *http.Client
	geocodingURL string
	forecastURL  string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURLs overrides the API endpoints, mainly for tests.
func WithBaseURLs(geocodingURL, forecastURL string) Option {
	return func(c *Client) {
		c.geocodingURL = geocodingURL
		c.forecastURL = forecastURL
	}
}

// NewClient creates a weather client with a bounded request timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		geocodingURL: defaultGeocodingURL,
		forecastURL:  defaultForecastURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature      float64 `json:"temperature_2m"`
		RelativeHumidity float64 `json:"relative_humidity_2m"`
		WeatherCode      int     `json:"weather_code"`
		WindSpeed        float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

// Current resolves a city name and returns its current weather.
func (c *Client) Current(ctx context.Context, city string) (*Report, error) {
	if city == "" {
		return nil, fmt.Errorf("city cannot be empty")
	}

	name, lat, lon, err := c.geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%g", lat))
	query.Set("longitude", fmt.Sprintf("%g", lon))
	query.Set("current", "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m")

	var forecast forecastResponse
	if err := c.getJSON(ctx, c.forecastURL+"?"+query.Encode(), &forecast); err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	return &Report{
		City:        name,
		Temperature: forecast.Current.Temperature,
		Humidity:    forecast.Current.RelativeHumidity,
		WindSpeed:   forecast.Current.WindSpeed,
		WeatherCode: forecast.Current.WeatherCode,
	}, nil
}

func (c *Client) geocode(ctx context.Context, city string) (string, float64, float64, error) {
	query := url.Values{}
	query.Set("name", city)
	query.Set("count", "1")

	var geo geocodingResponse
	if err := c.getJSON(ctx, c.geocodingURL+"?"+query.Encode(), &geo); err != nil {
		return "", 0, 0, fmt.Errorf("failed to geocode city: %w", err)
	}
	if len(geo.Results) == 0 {
		return "", 0, 0, ErrCityNotFound
	}

	r := geo.Results[0]
	return r.Name, r.Latitude, r.Longitude, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
