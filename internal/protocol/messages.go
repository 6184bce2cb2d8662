// Package protocol defines the JSON wire contract between the server and
// its clients: a {type, payload} envelope, the inbound message kinds
// (action, chat, ping), and one payload struct per outbound event.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Inbound message types (client -> server).
const (
	TypeAction = "action"
	TypeChat   = "chat"
	TypePing   = "ping"
)

// Outbound event types (server -> client).
const (
	TypeGameState     = "game_state"
	TypeHandStarting  = "hand_starting"
	TypeCommunityCard = "community_card"
	TypeYourTurn      = "your_turn"
	TypeActionTaken   = "action_taken"
	TypeWinner        = "winner"
	TypeHandOver      = "hand_over"
	TypeError         = "error"
	TypeChatBroadcast = "chat"
	TypePong          = "pong"
)

// HiddenCard is the sentinel for a hole card withheld from a recipient.
const HiddenCard = "??"

// Envelope is the outer frame of every message in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode wraps payload in an Envelope and marshals the whole frame.
func Encode(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal %s payload: %w", msgType, err)
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

// Decode parses an inbound frame into its Envelope.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("protocol: malformed message: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("protocol: message missing type")
	}
	return env, nil
}

// Client -> Server payloads

// ActionPayload is a player's betting decision. Amount is the total bet
// for a raise, not the increment.
type ActionPayload struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// ChatPayload carries a table chat line.
type ChatPayload struct {
	Message string `json:"message"`
}

// Server -> Client payloads

// PlayerState is one seat as seen by a specific recipient. HoleCards is
// ["??","??"] for every seat except the recipient's own, empty for a seat
// not dealt into the current hand.
type PlayerState struct {
	PlayerID  string   `json:"player_id"`
	Name      string   `json:"name"`
	Chips     int      `json:"chips"`
	Bet       int      `json:"bet"`
	IsFolded  bool     `json:"is_folded"`
	IsAllIn   bool     `json:"is_all_in"`
	HoleCards []string `json:"hole_cards"`
}

// GameStatePayload is a full personalized table snapshot, used for both
// game_state and hand_starting events.
type GameStatePayload struct {
	Phase              string        `json:"phase"`
	Variant            string        `json:"variant"`
	HandNumber         int           `json:"hand_number"`
	SmallBlind         int           `json:"small_blind"`
	BigBlind           int           `json:"big_blind"`
	DealerIndex        int           `json:"dealer_index"`
	CurrentPlayerIndex int           `json:"current_player_index"`
	Pot                int           `json:"pot"`
	CommunityCards     []string      `json:"community_cards"`
	Players            []PlayerState `json:"players"`
}

// CommunityCardPayload announces newly revealed board cards.
type CommunityCardPayload struct {
	Phase          string   `json:"phase"`
	CommunityCards []string `json:"community_cards"`
}

// ValidActions summarizes what the acting player may do right now.
type ValidActions struct {
	CanCheck   bool `json:"can_check"`
	CallAmount int  `json:"call_amount"`
	CanRaise   bool `json:"can_raise"`
	MinRaise   int  `json:"min_raise"`
	MaxRaise   int  `json:"max_raise"`
}

// YourTurnPayload is sent only to the player whose action is awaited.
type YourTurnPayload struct {
	PlayerID     string       `json:"player_id"`
	ValidActions ValidActions `json:"valid_actions"`
}

// ActionTakenPayload is broadcast after every resolved action.
type ActionTakenPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Action   string `json:"action"`
	Amount   int    `json:"amount"`
	Pot      int    `json:"pot"`
}

// WinnerEntry is one payout line within a winner event.
type WinnerEntry struct {
	PlayerID string `json:"player_id"`
	Amount   int    `json:"amount"`
	Hand     string `json:"hand"`
}

// ShownHand is one revealed hand within winner.all_hands. Present only for
// players who reached showdown; never populated on an all-fold ending.
type ShownHand struct {
	HoleCards []string `json:"hole_cards"`
	HandName  string   `json:"hand_name"`
	Score     int      `json:"score"`
}

// WinnerPayload closes out a hand. AllHands is omitted entirely when the
// hand ended with everyone folding.
type WinnerPayload struct {
	Winners  []WinnerEntry        `json:"winners"`
	AllHands map[string]ShownHand `json:"all_hands,omitempty"`
}

// ErrorPayload reports a rejected action or table-level failure.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ChatBroadcastPayload relays a chat line to every seat.
type ChatBroadcastPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Message  string `json:"message"`
}
