package ports

import (
	"context"

	"github.com/airband-io/airband/pkg/domain"
)

// GraphSource defines how the engine retrieves authored scenario graphs.
// Implementations return already-parsed documents; structural validation is
// the engine's job.
type GraphSource interface {
	// LoadGraph retrieves a scenario graph by id.
	LoadGraph(ctx context.Context, id string) (*domain.Graph, error)

	// ListGraphs returns the ids of all available scenarios.
	ListGraphs(ctx context.Context) ([]string, error)
}

// TransmissionSource resolves a transmission reference id to its ordered
// block templates and actor role.
//
// Implementations may load lazily: returning domain.ErrTransmissionNotLoaded
// suspends the session in its presenting phase until the data arrives.
type TransmissionSource interface {
	Transmission(ctx context.Context, id string) (*domain.Transmission, error)
}
