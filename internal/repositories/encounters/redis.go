package encounters

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/combat-api/internal/errors"
	"github.com/KirkDiggler/combat-api/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/combat-api/internal/redis"
)

const (
	// Key pattern: encounter:{encounter_id}
	encounterKeyPrefix = "encounter:"

	// Abandoned encounters are reaped after a day.
	defaultTTL = 24 * time.Hour
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
	Clock  clock.Clock
	// TTL overrides the default retention for saved encounters.
	TTL time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.Clock == nil {
		return errors.InvalidArgument("clock is required")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
	ttl    time.Duration
}

// NewRedisRepository creates a new Redis repository for encounter snapshots
func NewRedisRepository(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}
	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
		ttl:    ttl,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

// Save stores a new encounter snapshot
func (r *redisRepository) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}
	if input.Snapshot == nil {
		return nil, errors.InvalidArgument("snapshot is required")
	}

	ttl := input.TTL
	if ttl == 0 {
		ttl = r.ttl
	}

	now := r.clock.Now()
	record := &EncounterRecord{
		ID:        input.EncounterID,
		Snapshot:  input.Snapshot,
		CreatedAt: now,
		UpdatedAt: now,
	}

	recordJSON, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal encounter %s", input.EncounterID)
	}

	key := r.buildKey(input.EncounterID)

	// SetNX so a concurrent save of the same ID loses cleanly.
	created, err := r.client.SetNX(ctx, key, recordJSON, ttl).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to store encounter %s", input.EncounterID)
	}
	if !created {
		return nil, errors.AlreadyExistsf("encounter %s already exists", input.EncounterID)
	}

	return &SaveOutput{Record: record}, nil
}

// Get retrieves an encounter snapshot by ID
func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	key := r.buildKey(input.EncounterID)

	recordJSON, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("encounter %s not found", input.EncounterID)
		}
		return nil, errors.Wrapf(err, "failed to get encounter %s", input.EncounterID)
	}

	var record EncounterRecord
	if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal encounter %s", input.EncounterID)
	}

	return &GetOutput{Record: &record}, nil
}

// Update replaces an existing encounter's snapshot, preserving CreatedAt and
// the key's remaining TTL.
func (r *redisRepository) Update(ctx context.Context, input *UpdateInput) (*UpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}
	if input.Snapshot == nil {
		return nil, errors.InvalidArgument("snapshot is required")
	}

	existing, err := r.Get(ctx, &GetInput{EncounterID: input.EncounterID})
	if err != nil {
		return nil, err
	}

	record := existing.Record
	record.Snapshot = input.Snapshot
	record.UpdatedAt = r.clock.Now()

	recordJSON, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal encounter %s", input.EncounterID)
	}

	key := r.buildKey(input.EncounterID)

	// KeepTTL preserves whatever retention the original save established.
	if err := r.client.Set(ctx, key, recordJSON, redis.KeepTTL).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update encounter %s", input.EncounterID)
	}

	return &UpdateOutput{Record: record}, nil
}

// Delete removes an encounter snapshot
func (r *redisRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	key := r.buildKey(input.EncounterID)

	deleted, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete encounter %s", input.EncounterID)
	}
	if deleted == 0 {
		return nil, errors.NotFoundf("encounter %s not found", input.EncounterID)
	}

	return &DeleteOutput{Success: true}, nil
}

func (r *redisRepository) buildKey(encounterID string) string {
	return encounterKeyPrefix + encounterID
}
