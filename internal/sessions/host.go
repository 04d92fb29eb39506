package sessions

import (
	"context"
	"log/slog"
	"time"

	"github.com/KirkDiggler/combat-api/internal/combat"
	"github.com/KirkDiggler/combat-api/internal/errors"
	"github.com/KirkDiggler/combat-api/internal/orchestrators/encounter"
	"github.com/KirkDiggler/combat-api/internal/pkg/clock"
)

const defaultTurnTimeout = 2 * time.Minute

// HostConfig holds the dependencies for a session host.
type HostConfig struct {
	EncounterID string
	Service     encounter.Service
	Hub         *Hub
	Clock       clock.Clock
	// TurnTimeout forces the turn forward when a combatant stalls; zero
	// uses the default.
	TurnTimeout time.Duration
}

// Validate ensures all required dependencies are provided
func (c *HostConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.EncounterID == "" {
		vb.RequiredField("EncounterID")
	}
	if c.Service == nil {
		vb.RequiredField("Service")
	}
	if c.Hub == nil {
		vb.RequiredField("Hub")
	}

	return vb.Build()
}

// Host serializes all writes to one encounter. Client connections submit
// intents; the host executes them one at a time and enforces the per-turn
// timeout, so the resolver never sees concurrent writers.
type Host struct {
	encounterID string
	service     encounter.Service
	hub         *Hub
	clock       clock.Clock
	turnTimeout time.Duration

	intents chan func()
	done    chan struct{}

	// Loop-local turn tracking; touched only by Run and checkTimeout.
	currentCombatant string
	turnDeadline     time.Time
}

// NewHost creates a host for one encounter.
func NewHost(cfg *HostConfig) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	timeout := cfg.TurnTimeout
	if timeout == 0 {
		timeout = defaultTurnTimeout
	}

	return &Host{
		encounterID: cfg.EncounterID,
		service:     cfg.Service,
		hub:         cfg.Hub,
		clock:       clk,
		turnTimeout: timeout,
		intents:     make(chan func(), 32),
		done:        make(chan struct{}),
	}, nil
}

// Run processes intents until the context is canceled. The ticker only
// samples the injected clock; the deadline itself is clock-derived so tests
// can drive timeouts without sleeping.
func (h *Host) Run(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	h.resetDeadline()

	for {
		select {
		case <-ctx.Done():
			return
		case intent := <-h.intents:
			intent()
			h.observeTurn()
		case <-ticker.C:
			h.checkTimeout(ctx)
		}
	}
}

// Execute runs fn on the host loop and waits for it to finish. It reports
// false without running fn when the loop has already stopped, so callers
// never block on a dead host during shutdown.
func (h *Host) Execute(fn func()) bool {
	ran := make(chan struct{})
	select {
	case h.intents <- func() {
		defer close(ran)
		fn()
	}:
	case <-h.done:
		return false
	}

	select {
	case <-ran:
		return true
	case <-h.done:
		return false
	}
}

// observeTurn resets the turn deadline when the current combatant changed.
func (h *Host) observeTurn() {
	state, err := h.service.GetEncounter(context.Background(), &encounter.GetEncounterInput{
		EncounterID: h.encounterID,
	})
	if err != nil {
		return
	}
	if state.CurrentCombatant != h.currentCombatant {
		h.currentCombatant = state.CurrentCombatant
		h.resetDeadline()
	}
}

func (h *Host) resetDeadline() {
	h.turnDeadline = h.clock.Now().Add(h.turnTimeout)
}

// checkTimeout forces the turn forward when the current combatant has been
// idle past the deadline.
func (h *Host) checkTimeout(ctx context.Context) {
	if h.clock.Now().Before(h.turnDeadline) {
		return
	}

	state, err := h.service.GetEncounter(ctx, &encounter.GetEncounterInput{
		EncounterID: h.encounterID,
	})
	if err != nil || state.State != combat.StateInProgress {
		h.resetDeadline()
		return
	}

	stalled := h.currentCombatant
	next, err := h.service.NextTurn(ctx, &encounter.NextTurnInput{EncounterID: h.encounterID})
	if err != nil {
		slog.Warn("Turn timeout advance failed",
			"encounter_id", h.encounterID,
			"error", err,
		)
		h.resetDeadline()
		return
	}

	slog.Info("Turn forced forward on timeout",
		"encounter_id", h.encounterID,
		"stalled_combatant", stalled,
		"next_combatant", next.CombatantID,
	)
	h.hub.Broadcast(h.encounterID, Event{
		Type: EventTurnChanged,
		Data: map[string]any{
			"encounter_id": h.encounterID,
			"combatant_id": next.CombatantID,
			"round":        next.Round,
			"state":        next.State,
			"timed_out":    true,
		},
	})

	h.currentCombatant = next.CombatantID
	h.resetDeadline()
}
