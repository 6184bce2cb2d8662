package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-server/internal/card"
)

func TestRedactedViewWithholdsOpponentCards(t *testing.T) {
	g := NewGameState("t1", NoLimit, 5, 10)
	g.AddPlayer("p0", "A", 500, false)
	g.AddPlayer("p1", "B", 500, false)
	g.AddPlayer("p2", "C", 500, false)
	g.DealerIndex = 0
	g.resetForNewHand()

	for _, id := range g.SeatOrder {
		c1, _ := card.Parse("As")
		c2, _ := card.Parse("Kd")
		g.Players[id].HoleCards = []card.Card{c1, c2}
	}
	g.Phase = PhaseShowdown

	view := g.RedactedView("p1")
	assert.Equal(t, "p1", view.Self)

	for _, id := range g.SeatOrder {
		p := view.Players[id]
		assert.True(t, p.Dealt)
		if id == "p1" {
			require.Len(t, p.HoleCards, 2, "viewer sees their own cards")
		} else {
			assert.Nil(t, p.HoleCards, "opponent cards never reach a view, even at showdown")
		}
	}
}

func TestRedactedViewForSpectator(t *testing.T) {
	g := NewGameState("t1", NoLimit, 5, 10)
	g.AddPlayer("p0", "A", 500, false)
	g.DealerIndex = 0
	g.resetForNewHand()
	c1, _ := card.Parse("As")
	c2, _ := card.Parse("Kd")
	g.Players["p0"].HoleCards = []card.Card{c1, c2}

	view := g.RedactedView("nobody")
	assert.Nil(t, view.Players["p0"].HoleCards)
}
