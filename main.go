package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather-widget/api"
	"weather-widget/datasource"
	"weather-widget/eventloop"
	"weather-widget/models"
	"weather-widget/providers/openweathermap"
	"weather-widget/widget"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	// Parse command line arguments
	port := flag.Int("port", 8080, "Port to run the server on")
	configFile := flag.String("config", "config.json", "Path to configuration file")
	city := flag.String("city", "", "City to fetch on startup (overrides config)")
	enableRateLimiting := flag.Bool("rate-limit", true, "Enable API rate limiting")
	flag.Parse()

	// Load configuration
	config, err := datasource.LoadConfig(*configFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: %s not found, using defaults", *configFile)
		config = datasource.DefaultConfig()
		config.ApplyEnv()
	} else if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *city != "" {
		config.City = *city
	}
	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := eventloop.New(256)

	var throttle *datasource.Throttle
	if *enableRateLimiting && config.RateLimit.RequestsPerSecond > 0 {
		throttle = datasource.NewThrottle(config.RateLimit.RequestsPerSecond, config.RateLimit.Burst)
		log.Printf("Applied rate limiting: %.2f requests/s, burst %d",
			config.RateLimit.RequestsPerSecond, config.RateLimit.Burst)
	}

	client := openweathermap.NewClientFromConfig(config, loop, throttle)
	model := widget.NewModel(client)

	model.Notification().Subscribe(func(n string) {
		if n != "" {
			log.Printf("Notification: %s", n)
		}
	})
	model.Current().Subscribe(func(r models.CurrentWeatherReading) {
		log.Printf("Current weather for %s,%s: %s°C, humidity %s%%, wind %s from %s°, observed %s",
			r.City, r.Country, r.Temperature, r.Humidity, r.WindSpeed, r.WindDirection, r.LastUpdate)
	})
	model.Forecast().Subscribe(func(f models.Forecast) {
		log.Printf("Forecast updated with %d entries", len(f.Entries))
	})

	server := api.NewServer(model, *port)

	// Run the event loop; every model update happens on this goroutine
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Event loop stopped: %v", err)
		}
	}()

	if config.City != "" {
		if _, err := model.FetchCurrent(ctx, config.City); err != nil {
			log.Printf("Error fetching current weather for %s: %v", config.City, err)
		}
		if _, err := model.FetchForecast(ctx, config.City); err != nil {
			log.Printf("Error fetching forecast for %s: %v", config.City, err)
		}
	}

	// Start the API server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Wait for shutdown signal
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-shutdownChan
	log.Printf("Shutting down due to %s signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	cancel()
	<-loopDone
	log.Println("Shutdown complete")
}
