package server

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-server/internal/protocol"
)

// queuedConn builds a Connection whose pumps never run, so every sent
// frame stays in its buffer for inspection.
func queuedConn(playerID string) *Connection {
	return NewConnection(nil, playerID, playerID, nil, zerolog.Nop())
}

func drainOne(t *testing.T, c *Connection) protocol.Envelope {
	t.Helper()
	select {
	case data := <-c.send:
		env, err := protocol.Decode(data)
		require.NoError(t, err)
		return env
	default:
		t.Fatalf("no frame queued for %s", c.playerID)
		return protocol.Envelope{}
	}
}

func TestBroadcastPersonalizedBuildsOnePayloadPerRecipient(t *testing.T) {
	b := NewBroadcaster(zerolog.Nop())
	alice := queuedConn("alice")
	bob := queuedConn("bob")
	b.Register(alice)
	b.Register(bob)

	calls := make(map[string]int)
	b.BroadcastPersonalized(protocol.TypeError, func(playerID string) any {
		calls[playerID]++
		return protocol.ErrorPayload{Message: "for " + playerID}
	})

	assert.Equal(t, map[string]int{"alice": 1, "bob": 1}, calls,
		"factory invoked exactly once per recipient")

	for _, c := range []*Connection{alice, bob} {
		env := drainOne(t, c)
		assert.Equal(t, protocol.TypeError, env.Type)
		var p protocol.ErrorPayload
		require.NoError(t, json.Unmarshal(env.Payload, &p))
		assert.Equal(t, "for "+c.playerID, p.Message)
	}
}

func TestSendToTargetsSinglePlayer(t *testing.T) {
	b := NewBroadcaster(zerolog.Nop())
	alice := queuedConn("alice")
	bob := queuedConn("bob")
	b.Register(alice)
	b.Register(bob)

	b.SendTo("alice", protocol.TypeYourTurn, protocol.YourTurnPayload{PlayerID: "alice"})

	env := drainOne(t, alice)
	assert.Equal(t, protocol.TypeYourTurn, env.Type)

	select {
	case <-bob.send:
		t.Fatal("your_turn must reach only its target")
	default:
	}

	// Sending to an absent player is a no-op, not an error.
	b.SendTo("carol", protocol.TypePong, struct{}{})
}

func TestUnregisterOnlyRemovesCurrentConnection(t *testing.T) {
	b := NewBroadcaster(zerolog.Nop())
	first := queuedConn("alice")
	b.Register(first)

	second := queuedConn("alice")
	b.Register(second) // reconnect replaces, closing the old socket

	b.Unregister(first) // stale unregister from the old readPump
	b.SendTo("alice", protocol.TypePong, struct{}{})
	assert.Equal(t, protocol.TypePong, drainOne(t, second).Type,
		"the replacement connection survives the stale unregister")
}
