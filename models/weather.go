package models

import (
	"time"
)

// Placeholder values shown for reading fields.
const (
	// Unknown marks a field that has not been fetched yet
	Unknown = "--"
	// NotProvided marks a field the provider left out of an otherwise valid payload
	NotProvided = "nn"
)

// CurrentWeatherReading is the display form of the current conditions for one city
type CurrentWeatherReading struct {
	City          string    `json:"city"`
	Country       string    `json:"country"`
	Temperature   string    `json:"temperature"`   // in Celsius, rounded
	Humidity      string    `json:"humidity"`      // percentage
	Pressure      string    `json:"pressure"`      // in hPa
	WindSpeed     string    `json:"windSpeed"`     // as reported
	WindDirection string    `json:"windDirection"` // in degrees
	Icon          string    `json:"icon"`          // icon URL
	LastUpdate    string    `json:"lastUpdate"`    // observation time, UTC
	ObservedAt    time.Time `json:"observedAt"`
}

// UnknownReading returns the reading shown before the first successful fetch
func UnknownReading() CurrentWeatherReading {
	return CurrentWeatherReading{
		City:          Unknown,
		Country:       Unknown,
		Temperature:   Unknown,
		Humidity:      Unknown,
		Pressure:      Unknown,
		WindSpeed:     Unknown,
		WindDirection: Unknown,
		Icon:          Unknown,
		LastUpdate:    Unknown,
	}
}
