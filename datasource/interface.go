package datasource

import (
	"context"
	"sync"
	"time"

	"weather-widget/models"

	"github.com/google/uuid"
)

// UnknownSize is reported as the total when the response length is not known
const UnknownSize int64 = -1

// Kind identifies which endpoint a request targets
type Kind string

const (
	KindCurrent  Kind = "current"
	KindForecast Kind = "forecast"
)

// Dispatcher delivers callbacks on the goroutine that owns display state
type Dispatcher interface {
	Post(fn func()) bool
}

// Callbacks receive the outcome of one request. Exactly one of OnSuccess or OnError
// is invoked per request, after zero or more OnProgress calls. Nil fields are skipped.
type Callbacks[T any] struct {
	OnProgress func(req *Request, received, total int64)
	OnSuccess  func(req *Request, payload T)
	OnError    func(req *Request, err error)
}

// Fetcher is a weather service client that issues asynchronous requests
type Fetcher interface {
	// FetchCurrent starts a current-weather request for city and returns immediately
	FetchCurrent(ctx context.Context, city string, cb Callbacks[models.CurrentWeatherPayload]) (*Request, error)

	// FetchForecast starts a forecast request for city and returns immediately
	FetchForecast(ctx context.Context, city string, cb Callbacks[models.ForecastPayload]) (*Request, error)

	// IconURL returns the image URL for an icon code
	IconURL(code string) string

	// Name returns the provider's name
	Name() string
}

// Request is the handle of one in-flight fetch
type Request struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	City    string    `json:"city"`
	URL     string    `json:"-"` // API key redacted
	Started time.Time `json:"started"`

	done chan struct{}
	once sync.Once
}

// NewRequest creates a request handle with a fresh ID
func NewRequest(kind Kind, city, url string) *Request {
	return &Request{
		ID:      uuid.NewString(),
		Kind:    kind,
		City:    city,
		URL:     url,
		Started: time.Now(),
		done:    make(chan struct{}),
	}
}

// Done is closed once the terminal callback has run
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Finish marks the request complete. Safe to call more than once.
func (r *Request) Finish() {
	r.once.Do(func() {
		close(r.done)
	})
}
