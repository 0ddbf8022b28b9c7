package geocode

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("geocode not found")

type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat float64, lon float64, err error)
}

// BuildAddress joins the postal components of a ticket into one query
// string, skipping empty parts. An empty result means the ticket carries
// no usable address at all.
func BuildAddress(city, street, house, region, country string) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{city, street, house, region, country} {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
