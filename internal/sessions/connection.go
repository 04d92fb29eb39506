package sessions

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/KirkDiggler/combat-api/internal/errors"
	"github.com/KirkDiggler/combat-api/internal/orchestrators/encounter"
	"github.com/KirkDiggler/combat-api/internal/pkg/clock"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// Connection is one client's websocket. Writes are serialized so hub
// broadcasts and direct replies can interleave safely.
type Connection struct {
	ws          *websocket.Conn
	writeMu     sync.Mutex
	encounterID string
}

func (c *Connection) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(messageType, data)
}

// send marshals and writes an event to this connection only.
func (c *Connection) send(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal event", "type", event.Type, "error", err)
		return
	}
	if err := c.write(websocket.TextMessage, data); err != nil {
		slog.Warn("Failed to write to connection", "error", err)
	}
}

// HandlerConfig holds the dependencies for the websocket handler.
type HandlerConfig struct {
	Service encounter.Service
	Hub     *Hub
	Clock   clock.Clock
	// TurnTimeout is passed to each encounter host; zero uses the default.
	TurnTimeout time.Duration
}

// Validate ensures all required dependencies are provided
func (c *HandlerConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Service == nil {
		vb.RequiredField("Service")
	}
	if c.Hub == nil {
		vb.RequiredField("Hub")
	}

	return vb.Build()
}

// Handler upgrades websocket requests and routes client commands to the
// orchestrator through per-encounter hosts.
type Handler struct {
	service     encounter.Service
	hub         *Hub
	clock       clock.Clock
	turnTimeout time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc

	mu    sync.Mutex
	hosts map[string]*Host
}

// NewHandler creates the websocket handler.
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		service:     cfg.Service,
		hub:         cfg.Hub,
		clock:       cfg.Clock,
		turnTimeout: cfg.TurnTimeout,
		baseCtx:     ctx,
		cancel:      cancel,
		hosts:       make(map[string]*Host),
	}, nil
}

// Close stops every encounter host loop.
func (h *Handler) Close() {
	h.cancel()
}

// ServeWS handles websocket upgrade requests.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "error", err)
		return
	}

	c := &Connection{ws: ws}
	h.hub.Register(c)
	go h.readLoop(c)
}

func (h *Handler) readLoop(c *Connection) {
	defer func() {
		h.hub.Unregister(c)
		_ = c.ws.Close()
	}()

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		var cmd Command
		if err := json.Unmarshal(payload, &cmd); err != nil {
			c.send(errorEvent("malformed command"))
			continue
		}
		h.dispatch(c, &cmd)
	}
}

// ensureHost returns the host loop for an encounter, starting one if needed.
func (h *Handler) ensureHost(encounterID string) *Host {
	h.mu.Lock()
	defer h.mu.Unlock()

	if host, ok := h.hosts[encounterID]; ok {
		return host
	}
	host, err := NewHost(&HostConfig{
		EncounterID: encounterID,
		Service:     h.service,
		Hub:         h.hub,
		Clock:       h.clock,
		TurnTimeout: h.turnTimeout,
	})
	if err != nil {
		// Unreachable with a non-empty ID and validated handler config.
		slog.Error("Failed to create host", "encounter_id", encounterID, "error", err)
		return nil
	}
	h.hosts[encounterID] = host
	go host.Run(h.baseCtx)
	return host
}

func (h *Handler) dispatch(c *Connection, cmd *Command) {
	switch cmd.Type {
	case CmdCreateEncounter:
		h.handleCreate(c)
	case CmdJoinEncounter:
		h.handleJoin(c, cmd)
	case CmdGetState:
		h.handleGetState(c, cmd)
	case CmdAvailableActions:
		h.handleAvailableActions(c, cmd)
	case CmdValidTargets:
		h.handleValidTargets(c, cmd)
	default:
		h.handleMutation(c, cmd)
	}
}

func (h *Handler) handleCreate(c *Connection) {
	out, err := h.service.CreateEncounter(h.baseCtx, &encounter.CreateEncounterInput{})
	if err != nil {
		c.send(errorEvent(err.Error()))
		return
	}

	h.hub.Join(c, out.EncounterID)
	h.ensureHost(out.EncounterID)
	c.send(Event{
		Type: EventEncounterCreated,
		Data: map[string]any{
			"encounter_id": out.EncounterID,
			"state":        out.State,
		},
	})
}

func (h *Handler) handleJoin(c *Connection, cmd *Command) {
	state, err := h.service.GetEncounter(h.baseCtx, &encounter.GetEncounterInput{
		EncounterID: cmd.EncounterID,
	})
	if err != nil {
		c.send(errorEvent(err.Error()))
		return
	}

	h.hub.Join(c, cmd.EncounterID)
	h.ensureHost(cmd.EncounterID)
	c.send(stateEvent(cmd.EncounterID, state))
}

func (h *Handler) handleGetState(c *Connection, cmd *Command) {
	state, err := h.service.GetEncounter(h.baseCtx, &encounter.GetEncounterInput{
		EncounterID: cmd.EncounterID,
	})
	if err != nil {
		c.send(errorEvent(err.Error()))
		return
	}
	c.send(stateEvent(cmd.EncounterID, state))
}

func (h *Handler) handleAvailableActions(c *Connection, cmd *Command) {
	out, err := h.service.GetAvailableActions(h.baseCtx, &encounter.GetAvailableActionsInput{
		EncounterID: cmd.EncounterID,
		CombatantID: cmd.CombatantID,
	})
	if err != nil {
		c.send(errorEvent(err.Error()))
		return
	}
	c.send(Event{
		Type: EventAvailableActions,
		Data: map[string]any{
			"combatant_id": cmd.CombatantID,
			"actions":      out.Actions,
		},
	})
}

func (h *Handler) handleValidTargets(c *Connection, cmd *Command) {
	out, err := h.service.GetValidTargets(h.baseCtx, &encounter.GetValidTargetsInput{
		EncounterID: cmd.EncounterID,
		CombatantID: cmd.CombatantID,
		Friendly:    cmd.Friendly,
	})
	if err != nil {
		c.send(errorEvent(err.Error()))
		return
	}
	c.send(Event{
		Type: EventValidTargets,
		Data: map[string]any{
			"combatant_id": cmd.CombatantID,
			"targets":      out.Targets,
		},
	})
}

// handleMutation runs a state-changing command on the encounter's host loop
// and broadcasts the outcome.
func (h *Handler) handleMutation(c *Connection, cmd *Command) {
	if cmd.EncounterID == "" {
		c.send(errorEvent("encounter_id is required"))
		return
	}
	host := h.ensureHost(cmd.EncounterID)
	if host == nil {
		c.send(errorEvent("encounter host unavailable"))
		return
	}

	if !host.Execute(func() {
		h.runMutation(c, cmd)
	}) {
		c.send(errorEvent("encounter host is shutting down"))
	}
}

func (h *Handler) runMutation(c *Connection, cmd *Command) {
	ctx := h.baseCtx
	encounterID := cmd.EncounterID

	switch cmd.Type {
	case CmdAddCharacter:
		if cmd.Character == nil {
			c.send(errorEvent("character is required"))
			return
		}
		out, err := h.service.AddCharacter(ctx, &encounter.AddCharacterInput{
			EncounterID:      encounterID,
			Config:           cmd.Character.ToConfig(),
			ForcedInitiative: cmd.ForcedInitiative,
		})
		if err != nil {
			c.send(errorEvent(err.Error()))
			return
		}
		h.hub.Broadcast(encounterID, Event{
			Type: EventCombatantAdded,
			Data: map[string]any{
				"combatant_id": out.CharacterID,
				"name":         cmd.Character.Name,
				"is_player":    true,
				"initiative":   out.Initiative,
			},
		})

	case CmdAddMonster:
		out, err := h.service.AddMonster(ctx, &encounter.AddMonsterInput{
			EncounterID:      encounterID,
			StatBlock:        cmd.StatBlock,
			ForcedInitiative: cmd.ForcedInitiative,
		})
		if err != nil {
			c.send(errorEvent(err.Error()))
			return
		}
		h.hub.Broadcast(encounterID, Event{
			Type: EventCombatantAdded,
			Data: map[string]any{
				"combatant_id": out.MonsterID,
				"name":         out.Name,
				"is_player":    false,
				"initiative":   out.Initiative,
			},
		})

	case CmdStartEncounter:
		out, err := h.service.StartEncounter(ctx, &encounter.StartEncounterInput{EncounterID: encounterID})
		if err != nil {
			c.send(errorEvent(err.Error()))
			return
		}
		h.hub.Broadcast(encounterID, Event{
			Type: EventCombatStarted,
			Data: map[string]any{
				"state":           out.State,
				"first_combatant": out.FirstCombatantID,
			},
		})

	case CmdNextTurn:
		out, err := h.service.NextTurn(ctx, &encounter.NextTurnInput{EncounterID: encounterID})
		if err != nil {
			c.send(errorEvent(err.Error()))
			return
		}
		h.broadcastTurn(encounterID, out)

	case CmdEndEncounter:
		out, err := h.service.EndEncounter(ctx, &encounter.EndEncounterInput{
			EncounterID: encounterID,
			Reason:      cmd.Reason,
		})
		if err != nil {
			c.send(errorEvent(err.Error()))
			return
		}
		h.hub.Broadcast(encounterID, Event{
			Type: EventCombatEnded,
			Data: map[string]any{"state": out.State},
		})

	default:
		out, err := h.runCombatAction(ctx, cmd)
		if err != nil {
			c.send(errorEvent(err.Error()))
			return
		}
		h.hub.Broadcast(encounterID, Event{
			Type: EventActionResult,
			Data: map[string]any{
				"action": cmd.Type,
				"result": out.Result,
				"state":  out.State,
			},
		})
		if out.State.Terminal() {
			h.hub.Broadcast(encounterID, Event{
				Type: EventCombatEnded,
				Data: map[string]any{"state": out.State},
			})
		}
	}
}

// runCombatAction maps per-turn action commands onto the orchestrator.
func (h *Handler) runCombatAction(ctx context.Context, cmd *Command) (*encounter.ActionOutput, error) {
	switch cmd.Type {
	case CmdAttack:
		return h.service.Attack(ctx, &encounter.AttackInput{
			EncounterID: cmd.EncounterID,
			AttackerID:  cmd.CombatantID,
			TargetID:    cmd.TargetID,
			Weapon:      cmd.Weapon,
		})
	case CmdCastSpell:
		return h.service.CastSpell(ctx, &encounter.CastSpellInput{
			EncounterID: cmd.EncounterID,
			CasterID:    cmd.CombatantID,
			SpellName:   cmd.Spell,
			TargetID:    cmd.TargetID,
			SlotLevel:   cmd.SlotLevel,
		})
	case CmdDodge:
		return h.service.Dodge(ctx, &encounter.DodgeInput{
			EncounterID: cmd.EncounterID,
			CombatantID: cmd.CombatantID,
		})
	case CmdDash:
		return h.service.Dash(ctx, &encounter.DashInput{
			EncounterID: cmd.EncounterID,
			CombatantID: cmd.CombatantID,
			BonusAction: cmd.BonusAction,
		})
	case CmdDisengage:
		return h.service.Disengage(ctx, &encounter.DisengageInput{
			EncounterID: cmd.EncounterID,
			CombatantID: cmd.CombatantID,
			BonusAction: cmd.BonusAction,
		})
	case CmdHelp:
		return h.service.Help(ctx, &encounter.HelpInput{
			EncounterID: cmd.EncounterID,
			HelperID:    cmd.CombatantID,
			TargetID:    cmd.TargetID,
		})
	case CmdHide:
		return h.service.Hide(ctx, &encounter.HideInput{
			EncounterID: cmd.EncounterID,
			CombatantID: cmd.CombatantID,
		})
	case CmdDeathSave:
		return h.service.DeathSave(ctx, &encounter.DeathSaveInput{
			EncounterID: cmd.EncounterID,
			CombatantID: cmd.CombatantID,
		})
	case CmdBreakConcentration:
		return h.service.BreakConcentration(ctx, &encounter.BreakConcentrationInput{
			EncounterID: cmd.EncounterID,
			CombatantID: cmd.CombatantID,
		})
	default:
		return nil, errors.InvalidArgumentf("unknown command: %s", cmd.Type)
	}
}

func (h *Handler) broadcastTurn(encounterID string, out *encounter.NextTurnOutput) {
	h.hub.Broadcast(encounterID, Event{
		Type: EventTurnChanged,
		Data: map[string]any{
			"encounter_id": encounterID,
			"combatant_id": out.CombatantID,
			"round":        out.Round,
			"state":        out.State,
		},
	})
	if out.State.Terminal() {
		h.hub.Broadcast(encounterID, Event{
			Type: EventCombatEnded,
			Data: map[string]any{"state": out.State},
		})
	}
}

func stateEvent(encounterID string, state *encounter.GetEncounterOutput) Event {
	return Event{
		Type: EventEncounterState,
		Data: map[string]any{
			"encounter_id":      encounterID,
			"state":             state.State,
			"round":             state.Round,
			"current_combatant": state.CurrentCombatant,
			"turn_order":        state.TurnOrder,
			"combat_log":        state.CombatLog,
		},
	}
}
