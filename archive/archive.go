package archive

import (
	"fmt"

	"github.com/labinsight/insightmesh/core"
)

var (
	// ErrNotFound is returned when no archived result exists for the given
	// user / id pair.
	ErrNotFound = fmt.Errorf("archived result not found")
)

// Store persists finished analysis results per user. Implementations must be
// safe for concurrent use; the orchestrator saves from request goroutines.
type Store interface {
	// Save stores (or overwrites) the result under its own ID for the user.
	Save(userID string, result *core.AdvancedHealthInsights) error

	// Get returns the archived result or ErrNotFound.
	Get(userID, resultID string) (*core.AdvancedHealthInsights, error)

	// List returns up to limit of the user's results, most recent first
	// (0 = no limit).
	List(userID string, limit int) ([]*core.AdvancedHealthInsights, error)

	// Delete removes the result if present or returns ErrNotFound.
	Delete(userID, resultID string) error
}
