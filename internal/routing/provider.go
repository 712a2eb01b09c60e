// README: Route preview provider contract and its failure status enumeration.
package routing

import (
	"context"
	"fmt"
	"time"
)

// Route is a drawable preview result for one origin/destination pair.
type Route struct {
	Summary        string
	DistanceMeters int
	DistanceHuman  string
	Duration       time.Duration
	Polyline       string
}

type Status string

const (
	StatusNotFound      Status = "not_found"
	StatusZeroResults   Status = "zero_results"
	StatusQuotaExceeded Status = "quota_exceeded"
	StatusUnavailable   Status = "service_unavailable"
)

// StatusError is a routing failure the UI turns into a non-blocking
// notice; it never aborts the form session.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("routing failed: %s", e.Status)
}

// Provider resolves free-text locations into a drawable route. The
// concrete implementation is injected; tests use a double.
type Provider interface {
	Route(ctx context.Context, origin, destination string) (Route, error)
}
