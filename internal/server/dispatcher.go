package server

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-server/internal/bot"
	"github.com/lox/holdem-server/internal/game"
)

// Bot decisions are delivered after a uniformly random think delay so a
// table of bots plays at a human-watchable pace.
const (
	botDelayMin = 500 * time.Millisecond
	botDelayMax = 2000 * time.Millisecond
)

// Dispatcher routes actions into the orchestrator. It implements
// game.ActionSource: the orchestrator calls RequestAction and suspends;
// humans land in the single-slot action channel via Submit, bots are
// scheduled on the clock and submit through the same channel. While an
// action is awaited the dispatcher also services the table's command
// queue, keeping joins and snapshots on the orchestrator goroutine.
type Dispatcher struct {
	clock    quartz.Clock
	logger   zerolog.Logger
	commands <-chan func()

	// actions carries one pending action at a time; Submit refuses a
	// second until the orchestrator consumes the first.
	actions chan game.Action

	mu       sync.Mutex
	rng      *rand.Rand
	bots     map[string]bot.Strategy
	expected string
}

// NewDispatcher builds a Dispatcher servicing commands while suspended.
// clock is the bot think-delay timer source; tests pass a quartz.Mock.
func NewDispatcher(logger zerolog.Logger, rng *rand.Rand, clock quartz.Clock, commands <-chan func()) *Dispatcher {
	return &Dispatcher{
		clock:    clock,
		logger:   logger.With().Str("component", "dispatch").Logger(),
		commands: commands,
		actions:  make(chan game.Action, 1),
		rng:      rng,
		bots:     make(map[string]bot.Strategy),
	}
}

// RegisterBot marks playerID as bot-driven by the given strategy.
func (d *Dispatcher) RegisterBot(playerID string, strategy bot.Strategy) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bots[playerID] = strategy
}

// Submit delivers a player's action, human or bot. It fails if playerID
// is not the player whose action is currently awaited, or if an action is
// already pending; the table state is untouched either way.
func (d *Dispatcher) Submit(a game.Action) error {
	d.mu.Lock()
	expected := d.expected
	d.mu.Unlock()

	if a.PlayerID != expected {
		return fmt.Errorf("%w: got %q, awaiting %q", ErrNotYourTurn, a.PlayerID, expected)
	}

	select {
	case d.actions <- a:
		return nil
	default:
		return fmt.Errorf("%w: action already pending for %q", ErrNotYourTurn, a.PlayerID)
	}
}

// RequestAction implements game.ActionSource. It runs on the orchestrator
// goroutine; the select below is the in-hand suspension point, which is
// why the command queue is serviced here too.
func (d *Dispatcher) RequestAction(ctx context.Context, state *game.GameState, playerID string, valid []game.ValidAction) (game.Action, error) {
	d.setExpected(playerID)
	defer d.setExpected("")

	// Drop anything left over from a previous turn.
	select {
	case stale := <-d.actions:
		d.logger.Debug().Str("player_id", stale.PlayerID).Msg("discarding stale action")
	default:
	}

	d.mu.Lock()
	strategy, isBot := d.bots[playerID]
	var delay time.Duration
	if isBot {
		delay = botDelayMin + time.Duration(d.rng.Int64N(int64(botDelayMax-botDelayMin)))
	}
	d.mu.Unlock()

	if isBot {
		// The redacted view is captured now, on the orchestrator
		// goroutine; the timer callback must not touch GameState.
		view := state.RedactedView(playerID)
		timer := d.clock.AfterFunc(delay, func() {
			d.mu.Lock()
			action := strategy.Decide(view, valid, d.rng)
			d.mu.Unlock()
			if err := d.Submit(action); err != nil {
				// The hand moved on while we were thinking; the decision
				// is simply discarded.
				d.logger.Debug().Err(err).Str("player_id", playerID).Msg("bot decision discarded")
			}
		})
		defer timer.Stop()
	}

	for {
		select {
		case a := <-d.actions:
			return a, nil
		case cmd := <-d.commands:
			cmd()
		case <-ctx.Done():
			return game.Action{}, ctx.Err()
		}
	}
}

func (d *Dispatcher) setExpected(playerID string) {
	d.mu.Lock()
	d.expected = playerID
	d.mu.Unlock()
}
