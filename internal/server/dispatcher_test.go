package server

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-server/internal/bot"
	"github.com/lox/holdem-server/internal/game"
	"github.com/lox/holdem-server/internal/randutil"
)

func dispatcherState() *game.GameState {
	g := game.NewGameState("t1", game.NoLimit, 5, 10)
	g.AddPlayer("alice", "Alice", 500, false)
	g.AddPlayer("b1", "CallBot", 500, true)
	return g
}

type actionResult struct {
	action game.Action
	err    error
}

func TestBotDecisionScheduledWithThinkDelay(t *testing.T) {
	ctx := context.Background()
	mock := quartz.NewMock(t)
	trap := mock.Trap().AfterFunc()
	defer trap.Close()

	commands := make(chan func(), commandBuffer)
	d := NewDispatcher(zerolog.Nop(), randutil.New(1), mock, commands)
	d.RegisterBot("b1", bot.CallingStation{})

	g := dispatcherState()
	valid := []game.ValidAction{{Type: game.Fold}, {Type: game.Check}}

	res := make(chan actionResult, 1)
	go func() {
		a, err := d.RequestAction(ctx, g, "b1", valid)
		res <- actionResult{a, err}
	}()

	call := trap.MustWait(ctx)
	call.Release(ctx)
	assert.GreaterOrEqual(t, call.Duration, botDelayMin, "bot think delay lower bound")
	assert.Less(t, call.Duration, botDelayMax, "bot think delay upper bound")

	mock.Advance(call.Duration).MustWait(ctx)

	r := <-res
	require.NoError(t, r.err)
	assert.Equal(t, "b1", r.action.PlayerID)
	assert.Equal(t, game.Check, r.action.Type, "calling station checks when it can")
}

func TestSubmitRejectsUnexpectedPlayer(t *testing.T) {
	commands := make(chan func(), commandBuffer)
	d := NewDispatcher(zerolog.Nop(), randutil.New(1), quartz.NewReal(), commands)

	err := d.Submit(game.Action{PlayerID: "alice", Type: game.Check})
	require.ErrorIs(t, err, ErrNotYourTurn, "no action is currently awaited")
}

func TestHumanActionDeliveredAndCommandsServiced(t *testing.T) {
	ctx := context.Background()
	commands := make(chan func(), commandBuffer)
	d := NewDispatcher(zerolog.Nop(), randutil.New(1), quartz.NewReal(), commands)

	g := dispatcherState()
	valid := []game.ValidAction{{Type: game.Fold}, {Type: game.Check}}

	res := make(chan actionResult, 1)
	go func() {
		a, err := d.RequestAction(ctx, g, "alice", valid)
		res <- actionResult{a, err}
	}()

	// A command lands while the dispatcher is suspended awaiting alice; it
	// must execute on the dispatcher's goroutine before the action resolves.
	ran := make(chan struct{})
	commands <- func() { close(ran) }
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("command not serviced while awaiting an action")
	}

	// An imposter is turned away without disturbing the pending request.
	err := d.Submit(game.Action{PlayerID: "bob", Type: game.Fold})
	require.ErrorIs(t, err, ErrNotYourTurn)

	require.NoError(t, d.Submit(game.Action{PlayerID: "alice", Type: game.Check}))

	r := <-res
	require.NoError(t, r.err)
	assert.Equal(t, game.Check, r.action.Type)

	// Once resolved, a late submission for the same player is stale.
	err = d.Submit(game.Action{PlayerID: "alice", Type: game.Fold})
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestRequestActionHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	commands := make(chan func(), commandBuffer)
	d := NewDispatcher(zerolog.Nop(), randutil.New(1), quartz.NewReal(), commands)

	g := dispatcherState()
	res := make(chan actionResult, 1)
	go func() {
		a, err := d.RequestAction(ctx, g, "alice", []game.ValidAction{{Type: game.Fold}})
		res <- actionResult{a, err}
	}()

	cancel()
	r := <-res
	assert.ErrorIs(t, r.err, context.Canceled)
}
