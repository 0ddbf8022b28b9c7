package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// DGISGeocoder resolves free-text addresses through the 2GIS catalog API.
// Responses are cached per query and requests are spaced by MinInterval to
// stay inside the API rate limit.
type DGISGeocoder struct {
	BaseURL     string
	APIKey      string
	MinInterval time.Duration
	Client      *http.Client

	mu        sync.Mutex
	lastReqAt time.Time
	cache     map[string]dgisPoint
}

type dgisPoint struct {
	Lat float64
	Lon float64
}

type dgisResponse struct {
	Result struct {
		Total int `json:"total"`
		Items []struct {
			Point *struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"point"`
		} `json:"items"`
	} `json:"result"`
}

func (g *DGISGeocoder) Geocode(ctx context.Context, query string) (float64, float64, error) {
	if g.Client == nil {
		g.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if g.BaseURL == "" {
		g.BaseURL = "https://catalog.api.2gis.com/3.0/items/geocode"
	}

	g.mu.Lock()
	if g.cache == nil {
		g.cache = map[string]dgisPoint{}
	}
	if cached, ok := g.cache[query]; ok {
		g.mu.Unlock()
		return cached.Lat, cached.Lon, nil
	}
	if g.MinInterval > 0 {
		if sleepFor := time.Until(g.lastReqAt.Add(g.MinInterval)); sleepFor > 0 {
			g.mu.Unlock()
			timer := time.NewTimer(sleepFor)
			select {
			case <-ctx.Done():
				timer.Stop()
				return 0, 0, ctx.Err()
			case <-timer.C:
			}
			g.mu.Lock()
		}
	}
	g.lastReqAt = time.Now()
	g.mu.Unlock()

	params := url.Values{}
	params.Set("q", query)
	params.Set("fields", "items.point")
	params.Set("key", g.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, err
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, 0, fmt.Errorf("2gis http error: %s", resp.Status)
	}

	var body dgisResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, 0, err
	}
	point, err := parseDGISResponse(body)
	if err != nil {
		return 0, 0, err
	}

	g.mu.Lock()
	g.cache[query] = point
	g.mu.Unlock()

	return point.Lat, point.Lon, nil
}

func parseDGISResponse(body dgisResponse) (dgisPoint, error) {
	if body.Result.Total == 0 || len(body.Result.Items) == 0 {
		return dgisPoint{}, ErrNotFound
	}
	p := body.Result.Items[0].Point
	if p == nil {
		return dgisPoint{}, ErrNotFound
	}
	return dgisPoint{Lat: p.Lat, Lon: p.Lon}, nil
}
