// Package weather queries the WeatherAPI current-conditions endpoint for a
// zone location, given either as "lat,lon" or a free-text place name.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/LeeinUITk17/fwserver/pkg/models"
)

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type currentResponse struct {
	Current struct {
		TempC    float64 `json:"temp_c"`
		Humidity float64 `json:"humidity"`
	} `json:"current"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) GetCurrent(ctx context.Context, query string) (*models.WeatherConditions, error) {
	endpoint := fmt.Sprintf("%s/current.json?key=%s&q=%s&aqi=no",
		c.BaseURL, url.QueryEscape(c.APIKey), url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if body.Error != nil {
			return nil, fmt.Errorf("weather API returned %d: %s", resp.StatusCode, body.Error.Message)
		}
		return nil, fmt.Errorf("weather API returned status code %d", resp.StatusCode)
	}

	return &models.WeatherConditions{
		TempC:       body.Current.TempC,
		HumidityPct: body.Current.Humidity,
	}, nil
}
