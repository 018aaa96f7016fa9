package domain

import (
	"context"
	"log/slog"
)

// EnrichLabels fills in a label for worksites that have neither a city nor a
// label, using reverse geocoding. Failures are logged and the site is left as
// is (graceful degradation). A nil geocoder returns the input unchanged.
func EnrichLabels(ctx context.Context, sites []Worksite, geocoder Geocoder, logger *slog.Logger) []Worksite {
	if geocoder == nil {
		return sites
	}

	out := make([]Worksite, len(sites))
	copy(out, sites)
	for i := range out {
		if out[i].Legend() != "" {
			continue
		}
		if ctx.Err() != nil {
			return out
		}
		result, err := geocoder.ReverseGeocode(ctx, out[i].Location.Lat, out[i].Location.Lon)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"worksite_id", out[i].ID,
				"lat", out[i].Location.Lat,
				"lon", out[i].Location.Lon,
				"error", err,
			)
			continue
		}
		if result.PlaceName != "" {
			out[i].Label = result.PlaceName
		} else if result.FormattedAddress != "" {
			out[i].Label = result.FormattedAddress
		}
	}
	return out
}
