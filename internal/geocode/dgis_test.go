package geocode

import (
	"context"
	"errors"
	"testing"
	"time"
)

// A cancelled context must interrupt the rate-limit wait instead of
// sleeping through it.
func TestDGISGeocodeCancelDuringRateLimitWait(t *testing.T) {
	g := &DGISGeocoder{MinInterval: time.Hour}
	g.lastReqAt = time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, _, err := g.Geocode(ctx, "Алматы, Абая 10")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("expected immediate return, took %v", elapsed)
	}
}

func TestDGISGeocodeServesFromCache(t *testing.T) {
	g := &DGISGeocoder{MinInterval: time.Hour}
	g.cache = map[string]dgisPoint{
		"Астана, Достык 16": {Lat: 51.125321, Lon: 71.431921},
	}
	g.lastReqAt = time.Now()

	// cached queries return without touching the rate limiter or network
	lat, lon, err := g.Geocode(context.Background(), "Астана, Достык 16")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lat != 51.125321 || lon != 71.431921 {
		t.Fatalf("unexpected point: %f, %f", lat, lon)
	}
}
