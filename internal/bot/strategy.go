// Package bot defines the decision interface by which a strategy converts
// a redacted view of the table into a betting action, plus the reference
// strategies the server's table config can name. A strategy only ever sees
// game.RedactedView, so it cannot read opponents' hole cards.
package bot

import (
	rand "math/rand/v2"
	"strings"

	"github.com/lox/holdem-server/internal/game"
)

// Strategy decides a bot's action. valid is never empty; the returned
// action must be one of its entries (the dispatcher submits it through the
// same validation path as a human action, so an out-of-contract strategy
// just gets an error event like any misbehaving client).
type Strategy interface {
	Name() string
	Decide(view game.RedactedView, valid []game.ValidAction, rng *rand.Rand) game.Action
}

// CallingStation checks when it can, calls when it must, and folds only
// when calling is impossible. Useful as a predictable baseline opponent.
type CallingStation struct{}

func (CallingStation) Name() string { return "calling" }

func (CallingStation) Decide(view game.RedactedView, valid []game.ValidAction, rng *rand.Rand) game.Action {
	for _, want := range []game.ActionType{game.Check, game.Call, game.AllIn} {
		for _, v := range valid {
			if v.Type == want {
				return game.Action{PlayerID: view.Self, Type: v.Type, Amount: v.MinAmount}
			}
		}
	}
	return game.Action{PlayerID: view.Self, Type: game.Fold}
}

// RandomValid picks uniformly among the offered actions; raises pick a
// uniform total within the legal bounds.
type RandomValid struct{}

func (RandomValid) Name() string { return "random" }

func (RandomValid) Decide(view game.RedactedView, valid []game.ValidAction, rng *rand.Rand) game.Action {
	v := valid[rng.IntN(len(valid))]
	a := game.Action{PlayerID: view.Self, Type: v.Type, Amount: v.MinAmount}
	if v.Type == game.Raise && v.MaxAmount > v.MinAmount {
		a.Amount = v.MinAmount + rng.IntN(v.MaxAmount-v.MinAmount+1)
	}
	return a
}

// Resolve maps a config strategy name to its implementation, defaulting to
// RandomValid for anything unrecognized.
func Resolve(name string) Strategy {
	switch strings.ToLower(name) {
	case "calling", "calling-station", "station", "call":
		return CallingStation{}
	case "random", "rand":
		return RandomValid{}
	default:
		return RandomValid{}
	}
}
