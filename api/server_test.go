package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"weather-widget/datasource"
	"weather-widget/models"
	"weather-widget/widget"
)

type fakeFetcher struct {
	cities []string
}

func (f *fakeFetcher) Name() string               { return "fake" }
func (f *fakeFetcher) IconURL(code string) string { return "http://icons.test/" + code + ".png" }

func (f *fakeFetcher) FetchCurrent(ctx context.Context, city string, cb datasource.Callbacks[models.CurrentWeatherPayload]) (*datasource.Request, error) {
	if city == "" {
		return nil, datasource.ErrEmptyCity
	}
	f.cities = append(f.cities, city)
	return datasource.NewRequest(datasource.KindCurrent, city, "fake://weather"), nil
}

func (f *fakeFetcher) FetchForecast(ctx context.Context, city string, cb datasource.Callbacks[models.ForecastPayload]) (*datasource.Request, error) {
	if city == "" {
		return nil, datasource.ErrEmptyCity
	}
	f.cities = append(f.cities, city)
	return datasource.NewRequest(datasource.KindForecast, city, "fake://forecast"), nil
}

func TestSnapshotStartsUnknown(t *testing.T) {
	s := NewServer(widget.NewModel(&fakeFetcher{}), 0)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	var snap widget.Snapshot
	if err := json.NewDecoder(rr.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Current.City != models.Unknown || snap.Current.Temperature != models.Unknown {
		t.Fatalf("expected unknown reading, got %+v", snap.Current)
	}
	if snap.Notification != "" || len(snap.Forecast.Entries) != 0 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestCurrentReflectsModel(t *testing.T) {
	model := widget.NewModel(&fakeFetcher{})
	temp := 300.15
	if _, err := model.ApplyCurrentWeather(models.CurrentWeatherPayload{
		Sys:     &models.SysBlock{},
		Main:    &models.MainBlock{Temp: &temp},
		Wind:    &models.WindBlock{},
		Weather: []models.WeatherBlock{{Icon: "10d"}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := NewServer(model, 0)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/weather/current", nil))

	var reading models.CurrentWeatherReading
	if err := json.NewDecoder(rr.Body).Decode(&reading); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reading.Temperature != "27" || reading.City != models.NotProvided || reading.Icon != "http://icons.test/10d.png" {
		t.Fatalf("unexpected reading %+v", reading)
	}
}

func TestFetchTriggers(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := NewServer(widget.NewModel(fetcher), 0)
	defer s.Shutdown(context.Background())

	for _, path := range []string{"/api/weather/fetch?city=Paris", "/api/forecast/fetch?city=Paris"} {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
		if rr.Code != http.StatusAccepted {
			t.Fatalf("%s: expected 202, got %d", path, rr.Code)
		}
		var req struct {
			ID      string    `json:"id"`
			Kind    string    `json:"kind"`
			City    string    `json:"city"`
			Started time.Time `json:"started"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.ID == "" || req.City != "Paris" {
			t.Fatalf("unexpected request %+v", req)
		}
	}
	if len(fetcher.cities) != 2 {
		t.Fatalf("expected 2 fetches, got %v", fetcher.cities)
	}
}

func TestFetchRejectsEmptyCityAndWrongMethod(t *testing.T) {
	s := NewServer(widget.NewModel(&fakeFetcher{}), 0)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/weather/fetch", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/weather/fetch?city=Paris", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
