package game

import "fmt"

// fixedBetSize returns the fixed-limit bet/raise increment for the
// current street: one big blind preflop and on the flop, two big blinds
// on the turn and river.
func (g *GameState) fixedBetSize() int {
	switch g.Phase {
	case PhaseTurn, PhaseRiver:
		return 2 * g.BigBlind
	default:
		return g.BigBlind
	}
}

// minRaiseTotal returns the smallest total bet a raise must reach under
// NLHE rules: the current bet plus the larger of the last raise's size and
// the big blind.
func (g *GameState) minRaiseTotal() int {
	step := g.LastRaiseSize
	if step < g.BigBlind {
		step = g.BigBlind
	}
	return g.CurrentBet + step
}

// ValidActionsFor lists the actions id may currently take, with the
// amount bounds a raise must satisfy. Returns an error if it is not id's
// turn or id cannot act.
func (g *GameState) ValidActionsFor(id string) ([]ValidAction, error) {
	p, ok := g.Players[id]
	if !ok {
		return nil, fmt.Errorf("game: unknown player %q: %w", id, ErrInvalidAction)
	}
	if g.CurrentPlayerID() != id {
		return nil, fmt.Errorf("game: it is not %s's turn: %w", id, ErrInvalidAction)
	}
	if !p.CanAct() {
		return nil, fmt.Errorf("game: %s cannot act: %w", id, ErrInvalidAction)
	}

	callAmount := g.CurrentBet - p.CurrentBetThisStreet
	var actions []ValidAction
	actions = append(actions, ValidAction{Type: Fold})

	if callAmount <= 0 {
		actions = append(actions, ValidAction{Type: Check})
	} else if callAmount >= p.Chips {
		actions = append(actions, ValidAction{Type: AllIn, MinAmount: p.Chips, MaxAmount: p.Chips})
		return actions, nil
	} else {
		actions = append(actions, ValidAction{Type: Call, MinAmount: callAmount, MaxAmount: callAmount})
	}

	maxRaiseTotal := p.Chips + p.CurrentBetThisStreet

	// A player who has already acted this street may raise again only if
	// the bet has since grown by a full raise; a short all-in does not
	// reopen the action to them.
	reopened := !p.HasActedThisStreet || g.isFullRaise(callAmount)

	if g.Variant == FixedLimit {
		if g.RaiseCountThisStreet >= 4 || !reopened {
			return actions, nil
		}
		fixedTotal := g.CurrentBet + g.fixedBetSize()
		if fixedTotal <= maxRaiseTotal {
			actions = append(actions, ValidAction{Type: Raise, MinAmount: fixedTotal, MaxAmount: fixedTotal})
		} else if maxRaiseTotal > p.CurrentBetThisStreet {
			actions = append(actions, ValidAction{Type: AllIn, MinAmount: maxRaiseTotal, MaxAmount: maxRaiseTotal})
		}
		return actions, nil
	}

	minTotal := g.minRaiseTotal()
	if reopened && maxRaiseTotal > callAmount+p.CurrentBetThisStreet { // chips remain after calling
		if maxRaiseTotal >= minTotal {
			actions = append(actions, ValidAction{Type: Raise, MinAmount: minTotal, MaxAmount: maxRaiseTotal})
		} else {
			actions = append(actions, ValidAction{Type: AllIn, MinAmount: maxRaiseTotal, MaxAmount: maxRaiseTotal})
		}
	}
	return actions, nil
}

// ApplyAction validates and applies a to GameState. On any rejection the
// state is left completely unchanged and the error wraps ErrInvalidAction.
func (g *GameState) ApplyAction(a Action) error {
	valid, err := g.ValidActionsFor(a.PlayerID)
	if err != nil {
		return err
	}

	p := g.Players[a.PlayerID]
	choice, err := matchValidAction(valid, a)
	if err != nil {
		return err
	}

	switch a.Type {
	case Fold:
		p.Status = StatusFolded
	case Check:
		// no chip movement
	case Call:
		g.commit(p, choice.MinAmount)
	case Raise:
		oldBet := g.CurrentBet
		g.commit(p, a.Amount-p.CurrentBetThisStreet)
		g.CurrentBet = a.Amount
		g.LastRaiseSize = a.Amount - oldBet
		g.RaiseCountThisStreet++
		if p.Chips == 0 {
			p.Status = StatusAllIn
		}
	case AllIn:
		oldBet := g.CurrentBet
		total := p.CurrentBetThisStreet + p.Chips
		g.commit(p, p.Chips)
		p.Status = StatusAllIn
		if total > oldBet {
			step := total - oldBet
			g.CurrentBet = total
			if g.isFullRaise(step) {
				g.LastRaiseSize = step
				g.RaiseCountThisStreet++
			}
		}
	}

	p.HasActedThisStreet = true
	g.advanceTurn()
	return nil
}

// isFullRaise reports whether a bet increment of step chips meets the
// reopening threshold: the FLHE fixed size, or NLHE's current minimum
// raise step. ApplyAction uses it for all-ins (an explicit Raise is already
// validated against this same bound by ValidActionsFor); ValidActionsFor
// uses it to decide whether the bet has grown enough since a player acted
// to reopen raising to them.
func (g *GameState) isFullRaise(step int) bool {
	if g.Variant == FixedLimit {
		return step >= g.fixedBetSize()
	}
	need := g.LastRaiseSize
	if need < g.BigBlind {
		need = g.BigBlind
	}
	return step >= need
}

// commit moves amount chips from p's stack into the pot, updating both
// street and hand running totals.
func (g *GameState) commit(p *Player, amount int) {
	if amount <= 0 {
		return
	}
	p.Chips -= amount
	p.CurrentBetThisStreet += amount
	p.Contribution += amount
	g.PotTotal += amount
}

// matchValidAction checks a submitted action against the actions
// currently on offer, returning the matching ValidAction (for its amount
// bounds) or an error wrapping ErrInvalidAction.
func matchValidAction(valid []ValidAction, a Action) (ValidAction, error) {
	for _, v := range valid {
		if v.Type != a.Type {
			continue
		}
		switch a.Type {
		case Fold, Check:
			return v, nil
		case Call, AllIn:
			return v, nil
		case Raise:
			if a.Amount < v.MinAmount || a.Amount > v.MaxAmount {
				return ValidAction{}, fmt.Errorf("game: raise to %d outside [%d,%d]: %w", a.Amount, v.MinAmount, v.MaxAmount, ErrInvalidAction)
			}
			return v, nil
		}
	}
	return ValidAction{}, fmt.Errorf("game: %s not currently valid for %s: %w", a.Type, a.PlayerID, ErrInvalidAction)
}

// IsComplete reports whether the current street's betting is done.
func (g *GameState) IsComplete() RoundStatus {
	inHand := 0
	for _, id := range g.SeatOrder {
		if g.activeOrAllIn(id) {
			inHand++
		}
	}
	if inHand <= 1 {
		return RoundAllFolded
	}

	for _, id := range g.SeatOrder {
		p := g.Players[id]
		if p.Status != StatusActive {
			continue
		}
		if !p.HasActedThisStreet || p.CurrentBetThisStreet != g.CurrentBet {
			return RoundContinue
		}
	}
	return RoundComplete
}
