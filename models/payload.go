package models

import "encoding/json"

// Payloads mirror the OpenWeatherMap JSON. Pointer fields may be absent upstream;
// numbers are kept as json.Number so they can be shown exactly as sent.

// CurrentWeatherPayload is the body of GET /weather
type CurrentWeatherPayload struct {
	Name    *string        `json:"name"`
	Dt      *int64         `json:"dt"`
	Sys     *SysBlock      `json:"sys"`
	Main    *MainBlock     `json:"main"`
	Wind    *WindBlock     `json:"wind"`
	Weather []WeatherBlock `json:"weather"`
}

// ForecastPayload is the body of GET /forecast
type ForecastPayload struct {
	List []ForecastItem `json:"list"`
	City *struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
}

// ForecastItem is one 3-hour step of the forecast payload
type ForecastItem struct {
	Dt      *int64         `json:"dt"`
	Main    *MainBlock     `json:"main"`
	Weather []WeatherBlock `json:"weather"`
}

type SysBlock struct {
	Country *string `json:"country"`
}

type MainBlock struct {
	Temp     *float64     `json:"temp"` // Kelvin
	Humidity *json.Number `json:"humidity"`
	Pressure *json.Number `json:"pressure"`
}

type WindBlock struct {
	Speed *json.Number `json:"speed"`
	Deg   *json.Number `json:"deg"`
}

type WeatherBlock struct {
	Icon string `json:"icon"`
}
