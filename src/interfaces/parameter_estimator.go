package interfaces

import (
	"context"

	"param-server/src/models"
)

// -----------------------------------------------------------------------------
// IParameterEstimator fetches history and derives simulation parameters.
// Every front (TCP, HTTP, gRPC) goes through it.
// -----------------------------------------------------------------------------

type IParameterEstimator interface {
	Estimate(ctx context.Context, symbol string, years int) (models.MParameters, error)
}
