package datasource

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DefaultWeatherBaseURL = "http://api.openweathermap.org/data/2.5"
	DefaultIconBaseURL    = "http://openweathermap.org/img/w"
	DefaultChunkSize      = 40960

	// APIKeyEnv overrides the API key from the configuration file
	APIKeyEnv = "OPENWEATHERMAP_API_KEY"
)

// Duration is a time.Duration written as a string ("30s") in the config file
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	if s == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Config represents the application configuration
type Config struct {
	APIKey         string `json:"apiKey"`
	WeatherBaseURL string `json:"weatherBaseURL"`
	IconBaseURL    string `json:"iconBaseURL"`

	// City is fetched once on startup when set
	City string `json:"city"`

	// ChunkSize is the read size between progress reports
	ChunkSize int `json:"chunkSize"`

	// RequestTimeout of zero means requests may run indefinitely
	RequestTimeout Duration `json:"requestTimeout"`

	RateLimit struct {
		RequestsPerSecond float64 `json:"requestsPerSecond"`
		Burst             int     `json:"burst"`
	} `json:"rateLimit"`
}

// LoadConfig loads configuration from a JSON file on top of DefaultConfig
// and applies environment overrides
func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := DefaultConfig()
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	config.ApplyEnv()
	return config, nil
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	config := &Config{
		WeatherBaseURL: DefaultWeatherBaseURL,
		IconBaseURL:    DefaultIconBaseURL,
		ChunkSize:      DefaultChunkSize,
	}
	config.RateLimit.RequestsPerSecond = 1.0
	config.RateLimit.Burst = 5
	return config
}

// ApplyEnv overrides file values with environment variables
func (c *Config) ApplyEnv() {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		c.APIKey = key
	}
}

// Validate reports configuration that cannot produce a working client
func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, fmt.Errorf("no API key provided (set %s or apiKey)", APIKeyEnv))
	}
	if c.WeatherBaseURL == "" {
		errs = append(errs, errors.New("weatherBaseURL is empty"))
	}
	if c.IconBaseURL == "" {
		errs = append(errs, errors.New("iconBaseURL is empty"))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunkSize must be positive, got %d", c.ChunkSize))
	}
	if c.RequestTimeout.Duration < 0 {
		errs = append(errs, errors.New("requestTimeout must not be negative"))
	}
	return errors.Join(errs...)
}
