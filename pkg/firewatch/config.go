package firewatch

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/LeeinUITk17/fwserver/pkg/common"
)

const (
	DefaultScanInterval       = 30 * time.Minute
	DefaultDetectionThreshold = 0.7
	DefaultBreachChance       = 0.05
	DefaultCallTimeout        = 15 * time.Second
	DefaultCaptureTimeout     = 60 * time.Second
)

// Config is the runtime configuration of the orchestration core. Values are
// environment-supplied; missing optional values fall back to defaults, and
// missing collaborator credentials degrade the owning pipeline instead of
// failing startup.
type Config struct {
	ScanInterval       time.Duration
	DetectionThreshold float64
	BreachChance       float64
	CallTimeout        time.Duration
	CaptureTimeout     time.Duration

	WeatherAPIKey     string
	WeatherAPIBaseURL string
	AIServiceURL      string
}

func LoadConfigFromEnv() (*Config, error) {
	cfg := &Config{
		ScanInterval:       DefaultScanInterval,
		DetectionThreshold: DefaultDetectionThreshold,
		BreachChance:       DefaultBreachChance,
		CallTimeout:        DefaultCallTimeout,
		CaptureTimeout:     DefaultCaptureTimeout,

		WeatherAPIKey:     os.Getenv(common.EnvKeyWeatherAPIKey),
		WeatherAPIBaseURL: os.Getenv(common.EnvKeyWeatherAPIBaseURL),
		AIServiceURL:      os.Getenv(common.EnvKeyAIServiceURL),
	}

	if cfg.WeatherAPIBaseURL == "" {
		cfg.WeatherAPIBaseURL = "https://api.weatherapi.com/v1"
	}
	if cfg.AIServiceURL == "" {
		cfg.AIServiceURL = "http://localhost:5001/predict"
	}

	var err error
	if cfg.ScanInterval, err = envDuration(common.EnvKeyFWScanInterval, DefaultScanInterval); err != nil {
		return nil, err
	}
	if cfg.DetectionThreshold, err = envFloat(common.EnvKeyFWDetectionThreshold, DefaultDetectionThreshold); err != nil {
		return nil, err
	}
	if cfg.BreachChance, err = envFloat(common.EnvKeyFWBreachChance, DefaultBreachChance); err != nil {
		return nil, err
	}
	if cfg.CallTimeout, err = envDuration(common.EnvKeyFWCallTimeout, DefaultCallTimeout); err != nil {
		return nil, err
	}
	if cfg.CaptureTimeout, err = envDuration(common.EnvKeyFWCaptureTimeout, DefaultCaptureTimeout); err != nil {
		return nil, err
	}

	if cfg.DetectionThreshold < 0 || cfg.DetectionThreshold > 1 {
		return nil, fmt.Errorf("%s must be in [0,1], got %v", common.EnvKeyFWDetectionThreshold, cfg.DetectionThreshold)
	}

	return cfg, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, found := os.LookupEnv(key)
	if !found || raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	raw, found := os.LookupEnv(key)
	if !found || raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
