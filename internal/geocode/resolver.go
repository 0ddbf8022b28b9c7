package geocode

import (
	"context"
	"fmt"

	"github.com/fire-triage/backend/internal/models"
	"github.com/fire-triage/backend/internal/utils"
)

// OfficeMatch is the nearest seeded office to a geocoded address.
type OfficeMatch struct {
	Office     models.Office
	DistanceKm float64
}

type OfficeSource interface {
	ListOffices(ctx context.Context) ([]models.Office, error)
}

// Resolver maps a free-text address to the office that should handle it.
// Matches farther than MaxDistanceKm are treated as not found.
type Resolver struct {
	Geocoder      Geocoder
	Offices       OfficeSource
	MaxDistanceKm float64
}

func (r *Resolver) Nearest(ctx context.Context, address string) (OfficeMatch, error) {
	lat, lon, err := r.Geocoder.Geocode(ctx, address)
	if err != nil {
		return OfficeMatch{}, err
	}

	offices, err := r.Offices.ListOffices(ctx)
	if err != nil {
		return OfficeMatch{}, fmt.Errorf("list offices: %w", err)
	}
	if len(offices) == 0 {
		return OfficeMatch{}, ErrNotFound
	}

	best := OfficeMatch{DistanceKm: -1}
	for _, o := range offices {
		d := utils.HaversineKm(lat, lon, o.Lat, o.Lon)
		if best.DistanceKm < 0 || d < best.DistanceKm {
			best = OfficeMatch{Office: o, DistanceKm: d}
		}
	}

	if r.MaxDistanceKm > 0 && best.DistanceKm > r.MaxDistanceKm {
		return OfficeMatch{}, ErrNotFound
	}
	return best, nil
}
