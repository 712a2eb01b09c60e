// README: Google Directions-backed route preview provider.
package routing

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

// GoogleProvider resolves previews through the Google Directions API.
type GoogleProvider struct {
	client *maps.Client
}

// NewGoogleProvider builds the provider with the given API key. A failed
// client build is the "provider not ready" signal; there is no polling.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

func (p *GoogleProvider) Route(ctx context.Context, origin, destination string) (Route, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := p.client.Directions(ctx, r)
	if err != nil {
		return Route{}, &StatusError{Status: statusFromError(err)}
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Route{}, &StatusError{Status: StatusZeroResults}
	}

	leg := routes[0].Legs[0]
	return Route{
		Summary:        routes[0].Summary,
		DistanceMeters: leg.Distance.Meters,
		DistanceHuman:  leg.Distance.HumanReadable,
		Duration:       leg.Duration,
		Polyline:       routes[0].OverviewPolyline.Points,
	}, nil
}

// statusFromError maps the Directions API status carried in the client's
// error text onto the fixed preview status enumeration.
func statusFromError(err error) Status {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "NOT_FOUND"):
		return StatusNotFound
	case strings.Contains(msg, "ZERO_RESULTS"):
		return StatusZeroResults
	case strings.Contains(msg, "OVER_QUERY_LIMIT"), strings.Contains(msg, "OVER_DAILY_LIMIT"):
		return StatusQuotaExceeded
	default:
		return StatusUnavailable
	}
}
