// Package widget holds the display state of the weather widget and the policy that
// turns provider payloads into it.
package widget

import (
	"context"
	"log"
	"time"

	"weather-widget/datasource"
	"weather-widget/models"
	"weather-widget/observable"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DownloadFailed is the notification shown for every failed fetch
const DownloadFailed = "data could not be downloaded"

// Snapshot is a read-only copy of the display state
type Snapshot struct {
	Current      models.CurrentWeatherReading `json:"current"`
	Forecast     models.Forecast              `json:"forecast"`
	Notification string                       `json:"notification"`
}

// Model owns the current reading, the forecast and the notification.
// Apply* and the fetch callbacks must run on the goroutine of the dispatcher
// the fetcher was built with.
type Model struct {
	fetcher      datasource.Fetcher
	current      *observable.Value[models.CurrentWeatherReading]
	forecast     *observable.Value[models.Forecast]
	notification *observable.Value[string]
	printer      *message.Printer
	now          func() time.Time
}

// NewModel creates a model with every reading field set to models.Unknown
func NewModel(fetcher datasource.Fetcher) *Model {
	return &Model{
		fetcher:      fetcher,
		current:      observable.NewValue(models.UnknownReading()),
		forecast:     observable.NewValue(models.Forecast{Entries: []models.ForecastEntry{}}),
		notification: observable.NewValue(""),
		printer:      message.NewPrinter(language.English),
		now:          time.Now,
	}
}

// SetClock replaces the time source used when a payload carries no timestamp
func (m *Model) SetClock(now func() time.Time) {
	m.now = now
}

func (m *Model) Current() *observable.Value[models.CurrentWeatherReading] {
	return m.current
}

func (m *Model) Forecast() *observable.Value[models.Forecast] {
	return m.forecast
}

func (m *Model) Notification() *observable.Value[string] {
	return m.notification
}

// Snapshot returns the current display state
func (m *Model) Snapshot() Snapshot {
	return Snapshot{
		Current:      m.current.Get(),
		Forecast:     m.forecast.Get(),
		Notification: m.notification.Get(),
	}
}

// ApplyCurrentWeather publishes the reading built from p and clears the notification.
// Optional fields missing from p read as models.NotProvided. A *StructuralError is
// returned, and nothing is published, when sys, main, main.temp, wind or weather[0]
// is missing.
func (m *Model) ApplyCurrentWeather(p models.CurrentWeatherPayload) (models.CurrentWeatherReading, error) {
	reading, err := normalizeCurrent(p, m.fetcher.IconURL, m.now())
	if err != nil {
		return models.CurrentWeatherReading{}, err
	}
	m.current.Set(reading)
	m.notification.Set("")
	return reading, nil
}

// ApplyForecast replaces the whole forecast with the entries of p and clears the
// notification. If any entry is malformed the previous forecast stays in place.
func (m *Model) ApplyForecast(p models.ForecastPayload) (models.Forecast, error) {
	forecast, err := normalizeForecast(p, m.fetcher.IconURL, m.now())
	if err != nil {
		return models.Forecast{}, err
	}
	m.forecast.Set(forecast)
	m.notification.Set("")
	return forecast, nil
}

// FetchCurrent starts a current-weather download for city
func (m *Model) FetchCurrent(ctx context.Context, city string) (*datasource.Request, error) {
	return m.fetcher.FetchCurrent(ctx, city, datasource.Callbacks[models.CurrentWeatherPayload]{
		OnProgress: m.progress,
		OnError:    m.downloadError,
		OnSuccess: func(req *datasource.Request, p models.CurrentWeatherPayload) {
			if _, err := m.ApplyCurrentWeather(p); err != nil {
				m.downloadError(req, err)
			}
		},
	})
}

// FetchForecast starts a forecast download for city
func (m *Model) FetchForecast(ctx context.Context, city string) (*datasource.Request, error) {
	return m.fetcher.FetchForecast(ctx, city, datasource.Callbacks[models.ForecastPayload]{
		OnProgress: m.progress,
		OnError:    m.downloadError,
		OnSuccess: func(req *datasource.Request, p models.ForecastPayload) {
			if _, err := m.ApplyForecast(p); err != nil {
				m.downloadError(req, err)
			}
		},
	})
}

// ProgressMessage describes a transfer in progress, e.g.
// "Downloading data: 2,048 bytes of 8,192 bytes"
func (m *Model) ProgressMessage(received, total int64) string {
	if total == datasource.UnknownSize {
		return m.printer.Sprintf("Downloading data: %d bytes of unknown size", received)
	}
	return m.printer.Sprintf("Downloading data: %d bytes of %d bytes", received, total)
}

func (m *Model) progress(_ *datasource.Request, received, total int64) {
	m.notification.Set(m.ProgressMessage(received, total))
}

func (m *Model) downloadError(req *datasource.Request, err error) {
	log.Printf("[%s] %s for %s not applied: %v", req.ID, req.Kind, req.City, err)
	m.notification.Set(DownloadFailed)
}
