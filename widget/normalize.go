package widget

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"weather-widget/models"
)

const (
	kelvinOffset = 273.15

	// LastUpdateLayout renders the observation time of the current reading
	LastUpdateLayout = "Mon 15:04, 02 Jan 2006 UTC"
	// ForecastLabelLayout renders the time of a forecast entry
	ForecastLabelLayout = "Mon 15:04"
)

// StructuralError reports a payload missing an element every reading depends on
type StructuralError struct {
	Field string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("payload is missing required element %q", e.Field)
}

// Celsius converts Kelvin to whole degrees Celsius for display
func Celsius(kelvin float64) string {
	return strconv.FormatFloat(kelvin-kelvinOffset, 'f', 0, 64)
}

func stringOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

func numberOr(n *json.Number, def string) string {
	if n == nil {
		return def
	}
	return n.String()
}

func normalizeCurrent(p models.CurrentWeatherPayload, iconURL func(string) string, now time.Time) (models.CurrentWeatherReading, error) {
	switch {
	case p.Sys == nil:
		return models.CurrentWeatherReading{}, &StructuralError{Field: "sys"}
	case p.Main == nil:
		return models.CurrentWeatherReading{}, &StructuralError{Field: "main"}
	case p.Main.Temp == nil:
		return models.CurrentWeatherReading{}, &StructuralError{Field: "main.temp"}
	case len(p.Weather) == 0:
		return models.CurrentWeatherReading{}, &StructuralError{Field: "weather[0]"}
	case p.Wind == nil:
		return models.CurrentWeatherReading{}, &StructuralError{Field: "wind"}
	}

	observed := now.UTC()
	if p.Dt != nil {
		observed = time.Unix(*p.Dt, 0).UTC()
	}

	return models.CurrentWeatherReading{
		City:          stringOr(p.Name, models.NotProvided),
		Country:       stringOr(p.Sys.Country, models.NotProvided),
		Temperature:   Celsius(*p.Main.Temp),
		Humidity:      numberOr(p.Main.Humidity, models.NotProvided),
		Pressure:      numberOr(p.Main.Pressure, models.NotProvided),
		Icon:          iconURL(p.Weather[0].Icon),
		WindSpeed:     numberOr(p.Wind.Speed, models.NotProvided),
		WindDirection: numberOr(p.Wind.Deg, models.NotProvided),
		LastUpdate:    observed.Format(LastUpdateLayout),
		ObservedAt:    observed,
	}, nil
}

func normalizeForecast(p models.ForecastPayload, iconURL func(string) string, now time.Time) (models.Forecast, error) {
	if p.List == nil {
		return models.Forecast{}, &StructuralError{Field: "list"}
	}

	entries := make([]models.ForecastEntry, 0, len(p.List))
	for i, item := range p.List {
		switch {
		case item.Dt == nil:
			return models.Forecast{}, &StructuralError{Field: fmt.Sprintf("list[%d].dt", i)}
		case item.Main == nil || item.Main.Temp == nil:
			return models.Forecast{}, &StructuralError{Field: fmt.Sprintf("list[%d].main.temp", i)}
		case len(item.Weather) == 0:
			return models.Forecast{}, &StructuralError{Field: fmt.Sprintf("list[%d].weather[0]", i)}
		}

		at := time.Unix(*item.Dt, 0).UTC()
		entries = append(entries, models.ForecastEntry{
			Time:        at,
			Label:       at.Format(ForecastLabelLayout),
			Temperature: Celsius(*item.Main.Temp) + "°C",
			Icon:        iconURL(item.Weather[0].Icon),
		})
	}

	return models.Forecast{Entries: entries, Updated: now}, nil
}
