package server

import (
	"github.com/lox/holdem-server/internal/card"
	"github.com/lox/holdem-server/internal/game"
	"github.com/lox/holdem-server/internal/protocol"
)

// This file is the single place hole-card redaction happens. Every outbound
// payload that includes player records is built from a game.RedactedView,
// which already withholds opponents' cards; here they become the "??"
// sentinel on the wire. The one deliberate exception is winnerPayload's
// all_hands, which carries cleartext hands for showdown participants only.

func cardStrings(cards []card.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

var hiddenHoleCards = []string{protocol.HiddenCard, protocol.HiddenCard}

// playerStates flattens a redacted view's seats into wire order. A seat
// dealt into the hand but not owned by the viewer shows ["??","??"]; a
// seat with no cards (sitting out, or between hands) shows an empty list.
func playerStates(view game.RedactedView) []protocol.PlayerState {
	out := make([]protocol.PlayerState, 0, len(view.SeatOrder))
	for _, id := range view.SeatOrder {
		p := view.Players[id]
		ps := protocol.PlayerState{
			PlayerID:  p.PlayerID,
			Name:      p.Name,
			Chips:     p.Chips,
			Bet:       p.Bet,
			IsFolded:  p.Folded,
			IsAllIn:   p.AllIn,
			HoleCards: []string{},
		}
		switch {
		case id == view.Self && p.Dealt:
			ps.HoleCards = cardStrings(p.HoleCards)
		case p.Dealt:
			ps.HoleCards = hiddenHoleCards
		}
		out = append(out, ps)
	}
	return out
}

func gameStatePayload(view game.RedactedView) protocol.GameStatePayload {
	return protocol.GameStatePayload{
		Phase:              string(view.Phase),
		Variant:            string(view.Variant),
		HandNumber:         view.HandNumber,
		SmallBlind:         view.SmallBlind,
		BigBlind:           view.BigBlind,
		DealerIndex:        view.DealerIndex,
		CurrentPlayerIndex: view.CurrentPlayerIndex,
		Pot:                view.Pot,
		CommunityCards:     cardStrings(view.Community),
		Players:            playerStates(view),
	}
}

func communityCardPayload(state *game.GameState) protocol.CommunityCardPayload {
	return protocol.CommunityCardPayload{
		Phase:          string(state.Phase),
		CommunityCards: cardStrings(state.Community),
	}
}

// validActionsPayload condenses the engine's action list into the flat
// shape clients render buttons from. An all-in offered in place of a raise
// (stack below the minimum) still reports as a raise with min == max; an
// all-in offered as a short call reports through call_amount.
func validActionsPayload(valid []game.ValidAction) protocol.ValidActions {
	var out protocol.ValidActions
	hasCheckOrCall := false
	for _, v := range valid {
		if v.Type == game.Check || v.Type == game.Call {
			hasCheckOrCall = true
		}
	}
	for _, v := range valid {
		switch v.Type {
		case game.Check:
			out.CanCheck = true
		case game.Call:
			out.CallAmount = v.MinAmount
		case game.Raise:
			out.CanRaise = true
			out.MinRaise = v.MinAmount
			out.MaxRaise = v.MaxAmount
		case game.AllIn:
			if hasCheckOrCall {
				// Stack is below the minimum raise; shoving is still an
				// aggressive option alongside the check/call.
				out.CanRaise = true
				out.MinRaise = v.MinAmount
				out.MaxRaise = v.MaxAmount
			} else {
				// Short-call all-in: the whole stack is the price of
				// continuing.
				out.CallAmount = v.MinAmount
			}
		}
	}
	return out
}

func actionTakenPayload(a *game.ActionTaken) protocol.ActionTakenPayload {
	return protocol.ActionTakenPayload{
		PlayerID: a.PlayerID,
		Name:     a.Name,
		Action:   string(a.Action),
		Amount:   a.Amount,
		Pot:      a.Pot,
	}
}

func winnerPayload(winners []game.Payout, allHands map[string]game.ShowdownHand) protocol.WinnerPayload {
	out := protocol.WinnerPayload{}
	for _, w := range winners {
		out.Winners = append(out.Winners, protocol.WinnerEntry{
			PlayerID: w.PlayerID,
			Amount:   w.Amount,
			Hand:     w.HandName,
		})
	}
	if len(allHands) > 0 {
		out.AllHands = make(map[string]protocol.ShownHand, len(allHands))
		for id, h := range allHands {
			out.AllHands[id] = protocol.ShownHand{
				HoleCards: cardStrings(h.HoleCards),
				HandName:  h.HandName,
				Score:     h.Score,
			}
		}
	}
	return out
}
