package widget

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"weather-widget/datasource"
	"weather-widget/eventloop"
	"weather-widget/models"
	"weather-widget/providers/openweathermap"
)

func newPipeline(t *testing.T, handler http.HandlerFunc) (*Model, *eventloop.Loop) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	loop := eventloop.New(64)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(cancel)

	client := openweathermap.NewClient("key", loop,
		openweathermap.WithBaseURL(server.URL),
		openweathermap.WithIconBaseURL("http://openweathermap.org/img/w"),
		openweathermap.WithChunkSize(16),
	)
	return NewModel(client), loop
}

func waitDone(t *testing.T, req *datasource.Request) {
	t.Helper()
	select {
	case <-req.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("request did not finish")
	}
}

func TestPipelineCurrentWeather(t *testing.T) {
	model, _ := newPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Berlin","dt":0,"sys":{"country":"DE"},` +
			`"main":{"temp":300.15,"pressure":1009},"wind":{"speed":5,"deg":270},` +
			`"weather":[{"icon":"10d"}]}`))
	})

	var mu sync.Mutex
	var notifications []string
	model.Notification().Subscribe(func(s string) {
		mu.Lock()
		notifications = append(notifications, s)
		mu.Unlock()
	})

	req, err := model.FetchCurrent(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitDone(t, req)

	got := model.Current().Get()
	if got.City != "Berlin" || got.Country != "DE" || got.Temperature != "27" ||
		got.Humidity != models.NotProvided || got.Pressure != "1009" ||
		got.WindSpeed != "5" || got.WindDirection != "270" ||
		got.Icon != "http://openweathermap.org/img/w/10d.png" ||
		got.LastUpdate != "Thu 00:00, 01 Jan 1970 UTC" {
		t.Fatalf("unexpected reading %+v", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(notifications) < 2 {
		t.Fatalf("expected progress then clear, got %q", notifications)
	}
	if !strings.HasPrefix(notifications[0], "Downloading data: ") {
		t.Fatalf("expected progress notification first, got %q", notifications[0])
	}
	if notifications[len(notifications)-1] != "" {
		t.Fatalf("expected notification cleared last, got %q", notifications[len(notifications)-1])
	}
}

func TestPipelineForecastFailureKeepsState(t *testing.T) {
	model, _ := newPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	before := model.Snapshot()

	req, err := model.FetchForecast(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitDone(t, req)

	after := model.Snapshot()
	if after.Notification != DownloadFailed {
		t.Fatalf("expected %q, got %q", DownloadFailed, after.Notification)
	}
	if after.Current != before.Current || len(after.Forecast.Entries) != 0 {
		t.Fatalf("state changed on failure: %+v", after)
	}
}

func TestPipelineForecast(t *testing.T) {
	model, _ := newPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list":[` +
			`{"dt":0,"main":{"temp":273.15},"weather":[{"icon":"01d"}]},` +
			`{"dt":10800,"main":{"temp":275.15},"weather":[{"icon":"02d"}]}]}`))
	})

	req, err := model.FetchForecast(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitDone(t, req)

	entries := model.Forecast().Get().Entries
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", entries)
	}
	if entries[0].Label != "Thu 00:00" || entries[0].Temperature != "0°C" ||
		entries[1].Label != "Thu 03:00" || entries[1].Temperature != "2°C" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if n := model.Notification().Get(); n != "" {
		t.Fatalf("expected cleared notification, got %q", n)
	}
}
