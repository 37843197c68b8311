package openweathermap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weather-widget/datasource"
	"weather-widget/models"
)

// Client implements datasource.Fetcher against the OpenWeatherMap 2.5 API.
// Requests run on their own goroutine; every callback is handed to the dispatcher.
type Client struct {
	apiKey      string
	baseURL     string
	iconBaseURL string
	httpClient  *http.Client
	dispatcher  datasource.Dispatcher
	chunkSize   int
	timeout     time.Duration
	throttle    *datasource.Throttle
}

// Ensure Client implements datasource.Fetcher
var _ datasource.Fetcher = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client, which has no timeout
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithIconBaseURL(iconBaseURL string) Option {
	return func(c *Client) { c.iconBaseURL = strings.TrimRight(iconBaseURL, "/") }
}

// WithChunkSize sets how many bytes are read between progress reports
func WithChunkSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithTimeout bounds each request. Zero leaves requests unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

func WithThrottle(throttle *datasource.Throttle) Option {
	return func(c *Client) { c.throttle = throttle }
}

// NewClient creates a new OpenWeatherMap client
func NewClient(apiKey string, dispatcher datasource.Dispatcher, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		baseURL:     datasource.DefaultWeatherBaseURL,
		iconBaseURL: datasource.DefaultIconBaseURL,
		httpClient:  &http.Client{},
		dispatcher:  dispatcher,
		chunkSize:   datasource.DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig creates a client from the application configuration
func NewClientFromConfig(config *datasource.Config, dispatcher datasource.Dispatcher, throttle *datasource.Throttle) *Client {
	return NewClient(config.APIKey, dispatcher,
		WithBaseURL(config.WeatherBaseURL),
		WithIconBaseURL(config.IconBaseURL),
		WithChunkSize(config.ChunkSize),
		WithTimeout(config.RequestTimeout.Duration),
		WithThrottle(throttle),
	)
}

// Name returns the provider name
func (c *Client) Name() string {
	return "OpenWeatherMap"
}

// IconURL returns the image URL for an icon code such as "10d"
func (c *Client) IconURL(code string) string {
	return c.iconBaseURL + "/" + code + ".png"
}

// FetchCurrent requests GET /weather for city
func (c *Client) FetchCurrent(ctx context.Context, city string, cb datasource.Callbacks[models.CurrentWeatherPayload]) (*datasource.Request, error) {
	return start(ctx, c, datasource.KindCurrent, "weather", city, cb)
}

// FetchForecast requests GET /forecast for city
func (c *Client) FetchForecast(ctx context.Context, city string, cb datasource.Callbacks[models.ForecastPayload]) (*datasource.Request, error) {
	return start(ctx, c, datasource.KindForecast, "forecast", city, cb)
}

func (c *Client) endpointURL(endpoint, city, key string) string {
	return fmt.Sprintf("%s/%s?q=%s&APPID=%s", c.baseURL, endpoint, url.QueryEscape(city), url.QueryEscape(key))
}

func start[T any](ctx context.Context, c *Client, kind datasource.Kind, endpoint, city string, cb datasource.Callbacks[T]) (*datasource.Request, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, datasource.ErrEmptyCity
	}

	req := datasource.NewRequest(kind, city, c.endpointURL(endpoint, city, "REDACTED"))
	target := c.endpointURL(endpoint, city, c.apiKey)

	go run(ctx, c, req, target, cb)
	return req, nil
}

// run performs the request and delivers exactly one terminal callback
func run[T any](ctx context.Context, c *Client, req *datasource.Request, target string, cb datasource.Callbacks[T]) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	log.Printf("[%s] %s request to %s", req.ID, req.Kind, req.URL)

	var payload T
	err := download(ctx, c, req, target, &payload, cb.OnProgress)
	if err != nil {
		log.Printf("[%s] %s request for %s failed after %s: %v",
			req.ID, req.Kind, req.City, time.Since(req.Started).Round(time.Millisecond), err)
		c.finish(req, func() {
			if cb.OnError != nil {
				cb.OnError(req, err)
			}
		})
		return
	}

	log.Printf("[%s] %s request for %s completed in %s",
		req.ID, req.Kind, req.City, time.Since(req.Started).Round(time.Millisecond))
	c.finish(req, func() {
		if cb.OnSuccess != nil {
			cb.OnSuccess(req, payload)
		}
	})
}

// finish posts the terminal callback and marks the request done after it ran
func (c *Client) finish(req *datasource.Request, fn func()) {
	posted := c.dispatcher.Post(func() {
		defer req.Finish()
		fn()
	})
	if !posted {
		log.Printf("[%s] dispatcher stopped, dropping result", req.ID)
		req.Finish()
	}
}

func download[T any](ctx context.Context, c *Client, req *datasource.Request, target string, payload *T,
	onProgress func(req *datasource.Request, received, total int64)) error {
	if err := c.throttle.Wait(ctx); err != nil {
		return &datasource.TransportError{Kind: datasource.ErrorNetwork, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &datasource.TransportError{Kind: datasource.ErrorNetwork, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// the url.Error carries the full URL including the key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return &datasource.TransportError{Kind: datasource.ErrorNetwork, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return &datasource.TransportError{Kind: datasource.ErrorStatus, StatusCode: resp.StatusCode}
	}

	total := resp.ContentLength
	if total < 0 {
		total = datasource.UnknownSize
	}

	body, err := readChunks(resp.Body, c.chunkSize, func(received int64) {
		if onProgress == nil {
			return
		}
		c.dispatcher.Post(func() { onProgress(req, received, total) })
	})
	if err != nil {
		return &datasource.TransportError{Kind: datasource.ErrorNetwork, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if err := json.Unmarshal(body, payload); err != nil {
		return &datasource.TransportError{Kind: datasource.ErrorDecode, Err: fmt.Errorf("failed to parse API response: %w", err)}
	}
	return nil
}

// readChunks reads r to the end, calling progress after every chunk with the running total
func readChunks(r io.Reader, chunkSize int, progress func(received int64)) ([]byte, error) {
	var body bytes.Buffer
	buf := make([]byte, chunkSize)
	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			body.Write(buf[:n])
			progress(int64(body.Len()))
		}
		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return body.Bytes(), nil
		default:
			return nil, err
		}
	}
}
