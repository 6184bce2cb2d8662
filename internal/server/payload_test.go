package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-server/internal/card"
	"github.com/lox/holdem-server/internal/game"
	"github.com/lox/holdem-server/internal/protocol"
)

func dealtState(t *testing.T) *game.GameState {
	t.Helper()
	g := game.NewGameState("t1", game.NoLimit, 5, 10)
	g.AddPlayer("p0", "Alice", 500, false)
	g.AddPlayer("p1", "Bob", 500, false)
	g.AddPlayer("p2", "Carol", 500, true)

	holes := map[string][2]string{
		"p0": {"As", "Kd"},
		"p1": {"Qh", "Qc"},
		"p2": {"7s", "2d"},
	}
	for id, hc := range holes {
		c1, err := card.Parse(hc[0])
		require.NoError(t, err)
		c2, err := card.Parse(hc[1])
		require.NoError(t, err)
		p := g.Players[id]
		p.Status = game.StatusActive
		p.HoleCards = []card.Card{c1, c2}
	}
	g.Phase = game.PhaseShowdown
	return g
}

// The redaction property: for every recipient R and player P != R, the
// snapshot carries ["??","??"] in place of P's hole cards — including a
// snapshot requested mid-SHOWDOWN by a player connecting late.
func TestGameStatePayloadRedactsOpponents(t *testing.T) {
	g := dealtState(t)

	for _, viewer := range []string{"p0", "p1", "p2"} {
		payload := gameStatePayload(g.RedactedView(viewer))
		for _, ps := range payload.Players {
			if ps.PlayerID == viewer {
				assert.NotContains(t, ps.HoleCards, protocol.HiddenCard,
					"viewer %s sees their own cards in clear", viewer)
				assert.Len(t, ps.HoleCards, 2)
			} else {
				assert.Equal(t, []string{"??", "??"}, ps.HoleCards,
					"viewer %s must not see %s's cards", viewer, ps.PlayerID)
			}
		}
	}
}

func TestGameStatePayloadForLateSpectator(t *testing.T) {
	g := dealtState(t)

	payload := gameStatePayload(g.RedactedView("stranger"))
	assert.Equal(t, "SHOWDOWN", payload.Phase)
	for _, ps := range payload.Players {
		assert.Equal(t, []string{"??", "??"}, ps.HoleCards)
	}
}

func TestGameStatePayloadOmitsCardsForUndealtSeat(t *testing.T) {
	g := game.NewGameState("t1", game.NoLimit, 5, 10)
	g.AddPlayer("p0", "Alice", 500, false)
	g.AddPlayer("p1", "Bob", 500, false)

	payload := gameStatePayload(g.RedactedView("p0"))
	for _, ps := range payload.Players {
		assert.Empty(t, ps.HoleCards, "a seat with no cards shows none, hidden or otherwise")
	}
}

func TestWinnerPayloadRevealsOnlyShowdownHands(t *testing.T) {
	as, _ := card.Parse("As")
	kd, _ := card.Parse("Kd")
	payload := winnerPayload(
		[]game.Payout{{PlayerID: "p0", Amount: 120, HandName: "Two Pair"}},
		map[string]game.ShowdownHand{
			"p0": {HoleCards: []card.Card{as, kd}, HandName: "Two Pair", Score: 3000},
		},
	)
	require.Len(t, payload.Winners, 1)
	assert.Equal(t, "Two Pair", payload.Winners[0].Hand)
	require.Contains(t, payload.AllHands, "p0")
	assert.Equal(t, []string{"As", "Kd"}, payload.AllHands["p0"].HoleCards)

	folded := winnerPayload([]game.Payout{{PlayerID: "p1", Amount: 30, HandName: "Win by fold"}}, nil)
	assert.Nil(t, folded.AllHands)
}

func TestValidActionsPayloadMapping(t *testing.T) {
	tests := []struct {
		name  string
		valid []game.ValidAction
		want  protocol.ValidActions
	}{
		{
			name: "check or open",
			valid: []game.ValidAction{
				{Type: game.Fold},
				{Type: game.Check},
				{Type: game.Raise, MinAmount: 20, MaxAmount: 500},
			},
			want: protocol.ValidActions{CanCheck: true, CanRaise: true, MinRaise: 20, MaxRaise: 500},
		},
		{
			name: "facing a bet",
			valid: []game.ValidAction{
				{Type: game.Fold},
				{Type: game.Call, MinAmount: 40, MaxAmount: 40},
				{Type: game.Raise, MinAmount: 80, MaxAmount: 500},
			},
			want: protocol.ValidActions{CallAmount: 40, CanRaise: true, MinRaise: 80, MaxRaise: 500},
		},
		{
			name: "short stack shove in place of a raise",
			valid: []game.ValidAction{
				{Type: game.Fold},
				{Type: game.Call, MinAmount: 40, MaxAmount: 40},
				{Type: game.AllIn, MinAmount: 55, MaxAmount: 55},
			},
			want: protocol.ValidActions{CallAmount: 40, CanRaise: true, MinRaise: 55, MaxRaise: 55},
		},
		{
			name: "all-in as a short call",
			valid: []game.ValidAction{
				{Type: game.Fold},
				{Type: game.AllIn, MinAmount: 25, MaxAmount: 25},
			},
			want: protocol.ValidActions{CallAmount: 25},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validActionsPayload(tt.valid))
		})
	}
}
