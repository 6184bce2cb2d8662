package server

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-server/internal/bot"
	"github.com/lox/holdem-server/internal/game"
	"github.com/lox/holdem-server/internal/protocol"
)

// commandBuffer bounds how many joins/snapshots/sit-outs can queue while
// the orchestrator is between suspension points.
const commandBuffer = 16

// Table is one running poker table: a GameState owned by a single
// orchestrator goroutine, the dispatcher feeding it actions, and the
// broadcaster fanning its events out. All external access to the state —
// joins, snapshots, sit-outs — is a closure on the command queue, executed
// on the orchestrator goroutine at its next suspension point.
type Table struct {
	ID           string
	Name         string
	MaxPlayers   int
	DefaultBuyIn int

	state       *game.GameState
	orch        *game.Orchestrator
	dispatcher  *Dispatcher
	broadcaster *Broadcaster
	commands    chan func()
	logger      zerolog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	started atomic.Bool
	done    chan struct{}
}

// TableInfo is a lobby-facing summary of a table.
type TableInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Variant    string `json:"variant"`
	SmallBlind int    `json:"small_blind"`
	BigBlind   int    `json:"big_blind"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	HandNumber int    `json:"hand_number"`
}

// NewTable builds a table from config, seating its configured bots. The
// table does not play until Run is called.
func NewTable(cfg TableConfig, bots []BotConfig, rng *rand.Rand, clock quartz.Clock, logger zerolog.Logger, engineLog *log.Logger) *Table {
	ctx, cancel := context.WithCancel(context.Background())

	state := game.NewGameState(cfg.Name, game.Variant(cfg.Variant), cfg.SmallBlind, cfg.BigBlind)
	commands := make(chan func(), commandBuffer)

	t := &Table{
		ID:           cfg.Name,
		Name:         cfg.Name,
		MaxPlayers:   cfg.MaxPlayers,
		DefaultBuyIn: cfg.BuyIn,
		state:        state,
		commands:     commands,
		logger:       logger.With().Str("component", "table").Str("table_id", cfg.Name).Logger(),
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	t.broadcaster = NewBroadcaster(t.logger)
	t.dispatcher = NewDispatcher(t.logger, rng, clock, commands)
	t.orch = game.NewOrchestrator(state, rng, t.dispatcher, t, engineLog.With("table", cfg.Name))

	for _, b := range bots {
		id := "bot-" + uuid.NewString()[:8]
		buyIn := b.BuyIn
		if buyIn == 0 {
			buyIn = cfg.BuyIn
		}
		state.AddPlayer(id, b.Name, buyIn, true)
		t.dispatcher.RegisterBot(id, bot.Resolve(b.Strategy))
	}

	return t
}

// Run starts the table's orchestrator goroutine. Calling it twice is a
// no-op.
func (t *Table) Run() {
	if !t.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(t.done)
		t.orch.Run(t.ctx, t.commands)
	}()
}

// Close stops the table and drops every connection.
func (t *Table) Close() {
	t.cancel()
	for _, c := range t.broadcaster.snapshot() {
		_ = c.Close()
	}
	if t.started.Load() {
		<-t.done
	}
}

// do runs fn on the orchestrator goroutine and waits for it.
func (t *Table) do(fn func()) error {
	doneCh := make(chan struct{})
	wrapped := func() {
		fn()
		close(doneCh)
	}
	select {
	case t.commands <- wrapped:
	case <-t.ctx.Done():
		return ErrTableClosed
	}
	select {
	case <-doneCh:
		return nil
	case <-t.ctx.Done():
		return ErrTableClosed
	}
}

// Connect registers conn and seats its player if not already seated. The
// new player receives a personalized state snapshot; opponents' hole
// cards in it are redacted no matter what phase the hand is in.
func (t *Table) Connect(conn *Connection, buyIn int) error {
	if buyIn <= 0 {
		buyIn = t.DefaultBuyIn
	}

	t.broadcaster.Register(conn)

	var joinErr error
	err := t.do(func() {
		if p, seated := t.state.Players[conn.playerID]; seated {
			p.Away = false
		} else {
			if len(t.state.SeatOrder) >= t.MaxPlayers {
				joinErr = ErrTableFull
				return
			}
			t.state.AddPlayer(conn.playerID, conn.name, buyIn, false)
			t.logger.Info().Str("player_id", conn.playerID).Int("buy_in", buyIn).Msg("player seated")
		}
		view := t.state.RedactedView(conn.playerID)
		_ = conn.SendEvent(protocol.TypeGameState, gameStatePayload(view))
	})
	if err != nil {
		t.broadcaster.Unregister(conn)
		return err
	}
	if joinErr != nil {
		t.broadcaster.Unregister(conn)
		return joinErr
	}
	return nil
}

// Disconnect drops conn. The player stays in any hand in progress; the
// away mark keeps them out of hands from the next deal onward, which is
// the first moment their seat can safely change.
func (t *Table) Disconnect(conn *Connection) {
	t.broadcaster.Unregister(conn)

	sitOut := func() {
		p, ok := t.state.Players[conn.playerID]
		if !ok {
			return
		}
		p.Away = true
		switch t.state.Phase {
		case game.PhaseWaiting, game.PhaseHandOver:
			p.Status = game.StatusSittingOut
		}
		t.logger.Info().Str("player_id", conn.playerID).Msg("player disconnected")
	}

	select {
	case t.commands <- sitOut:
	case <-t.ctx.Done():
	}
}

// SubmitAction forwards a player's action to the dispatcher.
func (t *Table) SubmitAction(a game.Action) error {
	return t.dispatcher.Submit(a)
}

// BroadcastChat relays a chat line to every seat. Chat never touches
// GameState, so it bypasses the command queue.
func (t *Table) BroadcastChat(playerID, name, message string) {
	payload := protocol.ChatBroadcastPayload{PlayerID: playerID, Name: name, Message: message}
	t.broadcaster.BroadcastPersonalized(protocol.TypeChatBroadcast, func(string) any { return payload })
}

// Info reports the table's lobby summary, read on the orchestrator
// goroutine for a consistent view.
func (t *Table) Info() TableInfo {
	info := TableInfo{ID: t.ID, Name: t.Name, MaxPlayers: t.MaxPlayers}
	_ = t.do(func() {
		info.Variant = string(t.state.Variant)
		info.SmallBlind = t.state.SmallBlind
		info.BigBlind = t.state.BigBlind
		info.Players = len(t.state.SeatOrder)
		info.HandNumber = t.state.HandNumber
	})
	return info
}

// Emit implements game.Emitter. It runs on the orchestrator goroutine,
// immediately after the state mutation it reports, so reading state here
// is race-free; payload factories finish before Emit returns.
func (t *Table) Emit(e game.Event) {
	switch e.Type {
	case game.EventGameState, game.EventHandStarting:
		t.broadcastState(string(e.Type))

	case game.EventCommunityCard:
		payload := communityCardPayload(t.state)
		t.broadcaster.BroadcastPersonalized(protocol.TypeCommunityCard, func(string) any { return payload })

	case game.EventYourTurn:
		t.broadcaster.SendTo(e.ForPlayerID, protocol.TypeYourTurn, protocol.YourTurnPayload{
			PlayerID:     e.ForPlayerID,
			ValidActions: validActionsPayload(e.ValidActions),
		})

	case game.EventActionTaken:
		payload := actionTakenPayload(e.Action)
		t.broadcaster.BroadcastPersonalized(protocol.TypeActionTaken, func(string) any { return payload })

	case game.EventWinner:
		payload := winnerPayload(e.Winners, e.AllHands)
		t.broadcaster.BroadcastPersonalized(protocol.TypeWinner, func(string) any { return payload })

	case game.EventHandOver:
		t.broadcastState(string(e.Type))

	case game.EventError:
		payload := protocol.ErrorPayload{Message: e.ErrorMessage}
		if e.ErrorForPlayerID != "" {
			t.broadcaster.SendTo(e.ErrorForPlayerID, protocol.TypeError, payload)
			return
		}
		t.broadcaster.BroadcastPersonalized(protocol.TypeError, func(string) any { return payload })
	}
}

func (t *Table) broadcastState(eventType string) {
	t.broadcaster.BroadcastPersonalized(eventType, func(playerID string) any {
		return gameStatePayload(t.state.RedactedView(playerID))
	})
}

// validateTableConfig is a construction-time guard shared by config file
// loading and the lobby's create endpoint.
func validateTableConfig(cfg TableConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("server: table name required")
	}
	switch game.Variant(cfg.Variant) {
	case game.NoLimit, game.FixedLimit:
	default:
		return fmt.Errorf("server: table %s: unknown variant %q", cfg.Name, cfg.Variant)
	}
	if cfg.SmallBlind <= 0 {
		return fmt.Errorf("server: table %s: small blind must be positive", cfg.Name)
	}
	if cfg.BigBlind <= cfg.SmallBlind {
		return fmt.Errorf("server: table %s: big blind must exceed small blind", cfg.Name)
	}
	if cfg.MaxPlayers < 2 || cfg.MaxPlayers > 10 {
		return fmt.Errorf("server: table %s: max players must be between 2 and 10", cfg.Name)
	}
	return nil
}
