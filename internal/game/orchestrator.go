package game

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/holdem-server/internal/card"
	"github.com/lox/holdem-server/internal/evaluator"
	"github.com/lox/holdem-server/internal/pot"
)

// ActionSource supplies the next action for the table's currently
// expected player, suspending the caller until one arrives. The server
// package's dispatcher implements this: for a human it awaits the
// table's inbound action channel, for a bot it schedules a delayed decision
// and returns once the bot replies.
type ActionSource interface {
	RequestAction(ctx context.Context, state *GameState, playerID string, valid []ValidAction) (Action, error)
}

// interHandPause is the brief delay the orchestrator waits between a
// hand finishing and the next one starting.
const interHandPause = 1500 * time.Millisecond

// clock is the subset of quartz.Clock the orchestrator needs, so tests
// can inject a quartz.Mock for the inter-hand pause without pulling in
// the dispatcher's bot-delay machinery.
type clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Orchestrator drives one table's phase state machine: WAITING, STARTING,
// the four streets, SHOWDOWN or ALL_FOLDED, HAND_OVER, and around again.
// It owns the table's GameState exclusively; callers must run Orchestrator.Run
// on a single goroutine per table and never touch GameState concurrently.
type Orchestrator struct {
	state  *GameState
	rng    *rand.Rand
	source ActionSource
	emit   Emitter
	log    *log.Logger
	clock  clock

	newDeck      func() *card.Deck
	preHandChips map[string]int
}

// NewOrchestrator builds an Orchestrator for state.
func NewOrchestrator(state *GameState, rng *rand.Rand, source ActionSource, emit Emitter, logger *log.Logger) *Orchestrator {
	o := &Orchestrator{
		state:  state,
		rng:    rng,
		source: source,
		emit:   emit,
		log:    logger,
		clock:  realClock{},
	}
	o.newDeck = func() *card.Deck { return shuffledDeck(o.rng) }
	return o
}

// SetClock overrides the orchestrator's inter-hand pause clock; used by
// tests to inject a quartz.Mock.
func (o *Orchestrator) SetClock(c clock) { o.clock = c }

// Run plays hands back to back until ctx is cancelled or fewer than two
// players hold chips, at which point the table sits at WAITING.
//
// commands carries closures that must run on this goroutine: seat joins,
// state-snapshot requests, sit-out marks. They are serviced whenever the
// orchestrator is not mid-mutation — while WAITING, during the inter-hand
// pause, and (via the ActionSource sharing the same channel) while a hand
// awaits a player's action. This is what keeps GameState single-goroutine
// without a lock: every external touch of the state funnels through here.
func (o *Orchestrator) Run(ctx context.Context, commands <-chan func()) {
	for {
		if ctx.Err() != nil {
			return
		}
		if o.state.PlayersWithChips() < 2 {
			o.state.Phase = PhaseWaiting
			o.emit.Emit(Event{Type: EventGameState, State: o.state})
			select {
			case <-ctx.Done():
				return
			case cmd := <-commands:
				cmd()
				continue
			}
		}

		if err := o.playHand(ctx); err != nil {
			o.abortHand(err)
		}

		pause := o.clock.After(interHandPause)
	paused:
		for {
			select {
			case <-ctx.Done():
				return
			case cmd := <-commands:
				cmd()
			case <-pause:
				break paused
			}
		}
	}
}

// abortHand is the invariant-violation path: restore every player's
// chips to their pre-hand totals, broadcast an error to the whole table,
// and let Run's loop pick the next hand back up rather than crash the
// table goroutine.
func (o *Orchestrator) abortHand(err error) {
	o.log.Error("hand aborted on invariant violation", "table", o.state.TableID, "error", err)
	for id, chips := range o.preHandChips {
		if p, ok := o.state.Players[id]; ok {
			p.Chips = chips
		}
	}
	o.state.Phase = PhaseHandOver
	o.emit.Emit(Event{Type: EventError, ErrorMessage: fmt.Sprintf("hand aborted: %v", err), State: o.state})
}

// playHand runs exactly one hand, STARTING through HAND_OVER.
func (o *Orchestrator) playHand(ctx context.Context) error {
	o.starting()

	for _, street := range []Phase{PhasePreflop, PhaseFlop, PhaseTurn, PhaseRiver} {
		o.state.Phase = street
		if street != PhasePreflop {
			o.dealStreet(street)
		}

		status, err := o.runBettingRound(ctx)
		if err != nil {
			return err
		}
		if status == RoundAllFolded {
			return o.allFolded()
		}

		if err := o.settleStreet(); err != nil {
			return err
		}
	}

	return o.showdown()
}

// starting begins a hand: rotate the dealer, reset per-hand fields, post
// blinds, shuffle, and deal hole cards.
func (o *Orchestrator) starting() {
	o.state.Phase = PhaseStarting
	o.state.HandNumber++
	o.state.rotateDealer()
	o.state.resetForNewHand()

	o.preHandChips = make(map[string]int, len(o.state.SeatOrder))
	for _, id := range o.state.SeatOrder {
		o.preHandChips[id] = o.state.Players[id].Chips
	}

	o.state.deck = o.newDeck()
	o.state.postBlinds()
	o.state.dealHoleCards()

	o.state.CurrentPlayerIndex = o.state.PreflopFirstToAct()
	o.emit.Emit(Event{Type: EventHandStarting, State: o.state})
}

// dealStreet reveals the flop/turn/river and resets per-street betting
// fields ahead of the new round.
func (o *Orchestrator) dealStreet(street Phase) {
	o.state.resetStreet()
	var n int
	switch street {
	case PhaseFlop:
		n = 3
	case PhaseTurn, PhaseRiver:
		n = 1
	}
	o.state.dealCommunity(n)
	o.state.CurrentPlayerIndex = o.state.PostflopFirstToAct()
	o.emit.Emit(Event{Type: EventCommunityCard, State: o.state})
}

// runBettingRound drives ActionSource requests until the street
// resolves. A rejected action reports to its submitter and leaves the
// turn where it was; the round only advances on a valid one.
func (o *Orchestrator) runBettingRound(ctx context.Context) (RoundStatus, error) {
	for {
		status := o.state.IsComplete()
		if status != RoundContinue {
			return status, nil
		}

		playerID := o.state.CurrentPlayerID()
		if playerID == "" {
			return RoundComplete, nil
		}

		valid, err := o.state.ValidActionsFor(playerID)
		if err != nil {
			return "", fmt.Errorf("game: %s has no valid actions: %w: %w", playerID, err, ErrInvariant)
		}
		o.emit.Emit(Event{Type: EventYourTurn, State: o.state, ForPlayerID: playerID, ValidActions: valid})

		action, err := o.source.RequestAction(ctx, o.state, playerID, valid)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			o.emit.Emit(Event{Type: EventError, State: o.state, ErrorForPlayerID: playerID, ErrorMessage: err.Error()})
			continue
		}

		if err := o.state.ApplyAction(action); err != nil {
			o.emit.Emit(Event{Type: EventError, State: o.state, ErrorForPlayerID: playerID, ErrorMessage: err.Error()})
			continue
		}

		p := o.state.Players[playerID]
		o.emit.Emit(Event{
			Type:  EventActionTaken,
			State: o.state,
			Action: &ActionTaken{
				PlayerID: playerID,
				Name:     p.Name,
				Action:   action.Type,
				Amount:   action.Amount,
				Pot:      o.state.PotTotal,
			},
		})
	}
}

// settleStreet verifies chip conservation once a street's betting is
// done; the pot total itself is already tracked incrementally by
// GameState.commit, so there is nothing left to collect explicitly —
// contributions stay on the Player records until showdown/payout.
func (o *Orchestrator) settleStreet() error {
	// Only seats dealt into this hand count; a player who bought in
	// mid-hand sits out with chips the pre-hand snapshot never saw.
	sum := 0
	for id := range o.preHandChips {
		p := o.state.Players[id]
		sum += p.Chips + p.Contribution
	}
	total := 0
	for _, chips := range o.preHandChips {
		total += chips
	}
	if sum != total {
		return fmt.Errorf("game: chip conservation violated (have %d, want %d): %w", sum, total, ErrInvariant)
	}
	return nil
}

// allFolded implements the ALL_FOLDED short-circuit: the sole remaining
// player wins every chip in the pot without a showdown.
func (o *Orchestrator) allFolded() error {
	o.state.Phase = PhaseAllFolded

	var winnerID string
	for _, id := range o.state.SeatOrder {
		if o.state.Players[id].InHand() {
			winnerID = id
			break
		}
	}
	if winnerID == "" {
		return fmt.Errorf("game: all-fold ending with no remaining player: %w", ErrInvariant)
	}

	awards := pot.ComputePayouts(
		o.state.contributions(),
		o.state.eligiblePlayers(),
		o.state.SeatOrder,
		o.state.DealerIndex,
		func(string) int { return 0 }, // single contestant at every level; score never compared
	)
	if err := o.applyAwards(awards); err != nil {
		return err
	}

	var payouts []Payout
	for _, a := range awards {
		payouts = append(payouts, Payout{PlayerID: a.PlayerID, Amount: a.Amount, HandName: "Win by fold"})
	}
	o.emit.Emit(Event{Type: EventWinner, State: o.state, Winners: payouts})

	return o.handOver()
}

// showdown evaluates every non-folded player's best 7-card hand, derives
// side-pot awards, applies them, and reveals every showdown
// participant's hand.
func (o *Orchestrator) showdown() error {
	o.state.Phase = PhaseShowdown

	scores := make(map[string]evaluator.HandRank, len(o.state.SeatOrder))
	allHands := make(map[string]ShowdownHand)
	for _, id := range o.state.SeatOrder {
		p := o.state.Players[id]
		if !p.InHand() {
			continue
		}
		cards := make([]card.Card, 0, 7)
		cards = append(cards, p.HoleCards...)
		cards = append(cards, o.state.Community...)
		hr, _ := evaluator.Eval7(cards)
		scores[id] = hr
		allHands[id] = ShowdownHand{HoleCards: p.HoleCards, HandName: hr.String(), Score: int(hr)}
	}

	awards := pot.ComputePayouts(
		o.state.contributions(),
		o.state.eligiblePlayers(),
		o.state.SeatOrder,
		o.state.DealerIndex,
		func(id string) int { return int(scores[id]) },
	)
	if err := o.applyAwards(awards); err != nil {
		return err
	}

	var payouts []Payout
	for _, a := range awards {
		payouts = append(payouts, Payout{PlayerID: a.PlayerID, Amount: a.Amount, HandName: allHands[a.PlayerID].HandName})
	}
	o.emit.Emit(Event{Type: EventWinner, State: o.state, Winners: payouts, AllHands: allHands})

	return o.handOver()
}

// applyAwards credits every award's chips to its player and checks the
// conservation invariant: once the pot is paid out, the table holds
// exactly the chips it held before the hand.
func (o *Orchestrator) applyAwards(awards []pot.Award) error {
	for _, a := range awards {
		if p, ok := o.state.Players[a.PlayerID]; ok {
			p.Chips += a.Amount
		}
	}
	sum := 0
	for id := range o.preHandChips {
		sum += o.state.Players[id].Chips
	}
	want := 0
	for _, chips := range o.preHandChips {
		want += chips
	}
	if sum != want {
		return fmt.Errorf("game: post-payout chip total %d does not match pre-hand total %d: %w", sum, want, ErrInvariant)
	}
	return nil
}

// handOver implements HAND_OVER: bust players (chips == 0) are marked
// sitting out so the next STARTING doesn't deal them in.
func (o *Orchestrator) handOver() error {
	o.state.Phase = PhaseHandOver
	for _, id := range o.state.SeatOrder {
		p := o.state.Players[id]
		if p.Chips == 0 {
			p.Status = StatusSittingOut
		}
	}
	o.emit.Emit(Event{Type: EventHandOver, State: o.state})
	return nil
}
