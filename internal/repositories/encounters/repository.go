// Package encounters provides the repository interface and types for
// persisting combat encounter snapshots.
package encounters

import (
	"context"
	"time"

	"github.com/KirkDiggler/combat-api/internal/combat"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=encountermock github.com/KirkDiggler/combat-api/internal/repositories/encounters Repository

// EncounterRecord is the persistent state of an encounter: the resolver
// snapshot plus bookkeeping timestamps. Combatant entities are persisted by
// their own owners and reattached on restore.
type EncounterRecord struct {
	ID        string                `json:"id"`
	Snapshot  *combat.EncounterData `json:"snapshot"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// SaveInput defines the request for saving a new encounter
type SaveInput struct {
	EncounterID string
	Snapshot    *combat.EncounterData
	// TTL bounds how long an abandoned encounter lives; zero uses the
	// repository default.
	TTL time.Duration
}

// SaveOutput defines the response for saving an encounter
type SaveOutput struct {
	Record *EncounterRecord
}

// GetInput defines the request for retrieving an encounter
type GetInput struct {
	EncounterID string
}

// GetOutput defines the response for retrieving an encounter
type GetOutput struct {
	Record *EncounterRecord
}

// UpdateInput defines the request for updating an encounter snapshot
type UpdateInput struct {
	EncounterID string
	Snapshot    *combat.EncounterData
}

// UpdateOutput defines the response for updating an encounter
type UpdateOutput struct {
	Record *EncounterRecord
}

// DeleteInput defines the request for deleting an encounter
type DeleteInput struct {
	EncounterID string
}

// DeleteOutput defines the response for deleting an encounter
type DeleteOutput struct {
	Success bool
}

// Repository defines the storage interface for encounter snapshots
type Repository interface {
	// Save stores a new encounter snapshot
	Save(ctx context.Context, input *SaveInput) (*SaveOutput, error)

	// Get retrieves an encounter snapshot by ID
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Update replaces an existing encounter's snapshot
	Update(ctx context.Context, input *UpdateInput) (*UpdateOutput, error)

	// Delete removes an encounter snapshot
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}
