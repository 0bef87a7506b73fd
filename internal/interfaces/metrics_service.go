package interfaces

import (
	"context"

	"github.com/ternarybob/indago/internal/models"
)

// MetricsService resolves seed phrases into keywords with search volume,
// competition, and CPC data from the remote metrics provider.
type MetricsService interface {
	// GetKeywordMetrics batches seeds to the provider and returns the
	// normalized keywords. Entries below the configured minimum search
	// volume are dropped and the total is capped at the configured maximum.
	GetKeywordMetrics(ctx context.Context, seeds []string, country, language string) ([]models.Keyword, error)

	// Healthy reports whether the provider answers its health probe.
	Healthy(ctx context.Context) bool

	// VerifyCredentials checks that the provider accepts the configured
	// credentials without consuming quota.
	VerifyCredentials(ctx context.Context) error
}
