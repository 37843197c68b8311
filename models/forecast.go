package models

import (
	"time"
)

// ForecastEntry is one time bucket of the forecast, ready for display
type ForecastEntry struct {
	Time        time.Time `json:"time"`
	Label       string    `json:"label"`       // weekday and time, UTC
	Temperature string    `json:"temperature"` // e.g. "12°C"
	Icon        string    `json:"icon"`        // icon URL
}

// Forecast is the full ordered forecast, replaced as a whole on every fetch
type Forecast struct {
	Entries []ForecastEntry `json:"entries"`
	Updated time.Time       `json:"updated"`
}
