package game

import "github.com/lox/holdem-server/internal/card"

// EventType names a phase-transition event the orchestrator emits. The
// server package turns each into its outbound wire message; the names
// match the wire event types one to one.
type EventType string

const (
	EventGameState     EventType = "game_state"
	EventHandStarting  EventType = "hand_starting"
	EventCommunityCard EventType = "community_card"
	EventYourTurn      EventType = "your_turn"
	EventActionTaken   EventType = "action_taken"
	EventWinner        EventType = "winner"
	EventHandOver      EventType = "hand_over"
	EventError         EventType = "error"
)

// ActionTaken describes one resolved player action, broadcast to every
// seat at the table.
type ActionTaken struct {
	PlayerID string
	Name     string
	Action   ActionType
	Amount   int
	Pot      int
}

// Payout is one showdown or all-fold award, carried on a winner event.
type Payout struct {
	PlayerID string
	Amount   int
	HandName string
}

// ShowdownHand is one player's revealed hand, included in a winner
// event's AllHands only when the hand reached showdown.
type ShowdownHand struct {
	HoleCards []card.Card
	HandName  string
	Score     int
}

// Event is one atomic notification the orchestrator produces after
// mutating GameState. State is the table's live GameState at the moment
// of emission; consumers must finish reading it (e.g. build outbound
// payloads) before the orchestrator's next mutation, since there is no
// copy-on-emit — the two are serialized by the orchestrator blocking on
// Emitter.Emit until it returns.
type Event struct {
	Type  EventType
	State *GameState

	// EventYourTurn
	ForPlayerID  string
	ValidActions []ValidAction

	// EventActionTaken
	Action *ActionTaken

	// EventWinner
	Winners  []Payout
	AllHands map[string]ShowdownHand // nil for an all-fold ending

	// EventError
	ErrorForPlayerID string // empty means broadcast to every seat
	ErrorMessage     string
}

// Emitter publishes one Event at a time. Implementations must not retain
// State beyond the call, since the orchestrator owns and keeps mutating
// it.
type Emitter interface {
	Emit(Event)
}

// EmitterFunc adapts a plain function to Emitter.
type EmitterFunc func(Event)

// Emit implements Emitter.
func (f EmitterFunc) Emit(e Event) { f(e) }
