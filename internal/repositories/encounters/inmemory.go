package encounters

import (
	"context"
	"sync"

	"github.com/KirkDiggler/combat-api/internal/errors"
	"github.com/KirkDiggler/combat-api/internal/pkg/clock"
)

// InMemoryRepository implements Repository using in-memory storage. TTLs are
// ignored; records live until deleted.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*EncounterRecord
	clock clock.Clock
}

// NewInMemory creates a new in-memory repository
func NewInMemory(clk clock.Clock) *InMemoryRepository {
	if clk == nil {
		clk = clock.New()
	}
	return &InMemoryRepository{
		store: make(map[string]*EncounterRecord),
		clock: clk,
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Save stores a new encounter snapshot
func (r *InMemoryRepository) Save(_ context.Context, input *SaveInput) (*SaveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}
	if input.Snapshot == nil {
		return nil, errors.InvalidArgument("snapshot is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[input.EncounterID]; exists {
		return nil, errors.AlreadyExistsf("encounter %s already exists", input.EncounterID)
	}

	now := r.clock.Now()
	record := &EncounterRecord{
		ID:        input.EncounterID,
		Snapshot:  input.Snapshot,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.store[input.EncounterID] = record

	return &SaveOutput{Record: copyRecord(record)}, nil
}

// Get retrieves an encounter snapshot by ID
func (r *InMemoryRepository) Get(_ context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.store[input.EncounterID]
	if !exists {
		return nil, errors.NotFoundf("encounter %s not found", input.EncounterID)
	}

	return &GetOutput{Record: copyRecord(record)}, nil
}

// Update replaces an existing encounter's snapshot
func (r *InMemoryRepository) Update(_ context.Context, input *UpdateInput) (*UpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}
	if input.Snapshot == nil {
		return nil, errors.InvalidArgument("snapshot is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.store[input.EncounterID]
	if !exists {
		return nil, errors.NotFoundf("encounter %s not found", input.EncounterID)
	}

	record.Snapshot = input.Snapshot
	record.UpdatedAt = r.clock.Now()

	return &UpdateOutput{Record: copyRecord(record)}, nil
}

// Delete removes an encounter snapshot
func (r *InMemoryRepository) Delete(_ context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[input.EncounterID]; !exists {
		return nil, errors.NotFoundf("encounter %s not found", input.EncounterID)
	}
	delete(r.store, input.EncounterID)

	return &DeleteOutput{Success: true}, nil
}

// copyRecord shields the stored record from external mutation. The snapshot
// pointer is shared; callers treat snapshots as immutable once handed over.
func copyRecord(record *EncounterRecord) *EncounterRecord {
	out := *record
	return &out
}
