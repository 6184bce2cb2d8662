package server

import (
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Broadcaster fans table events out to that table's connected players,
// one personalized payload per recipient. Registration is confined to
// connect/disconnect; broadcasts read a copied snapshot of the map under
// a short critical section, so a send never holds the lock.
type Broadcaster struct {
	logger zerolog.Logger

	mu    sync.RWMutex
	conns map[string]*Connection
}

// NewBroadcaster builds an empty Broadcaster.
func NewBroadcaster(logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		logger: logger.With().Str("component", "broadcast").Logger(),
		conns:  make(map[string]*Connection),
	}
}

// Register adds (or replaces) the connection for a player. A replaced
// connection is closed: one live socket per player.
func (b *Broadcaster) Register(conn *Connection) {
	b.mu.Lock()
	old := b.conns[conn.playerID]
	b.conns[conn.playerID] = conn
	b.mu.Unlock()

	if old != nil && old != conn {
		_ = old.Close()
	}
}

// Unregister drops a player's connection if it is still the current one.
func (b *Broadcaster) Unregister(conn *Connection) {
	b.mu.Lock()
	if b.conns[conn.playerID] == conn {
		delete(b.conns, conn.playerID)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) snapshot() []*Connection {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Connection, 0, len(b.conns))
	for _, c := range b.conns {
		out = append(out, c)
	}
	return out
}

// BroadcastPersonalized sends eventType to every connected player, with
// the payload built per recipient by factory. The factory is invoked
// synchronously and exactly once per recipient — payloads are never
// shared or mutated between recipients — then the sends fan out
// concurrently.
func (b *Broadcaster) BroadcastPersonalized(eventType string, factory func(playerID string) any) {
	conns := b.snapshot()

	type prepared struct {
		conn    *Connection
		payload any
	}
	msgs := make([]prepared, 0, len(conns))
	for _, c := range conns {
		msgs = append(msgs, prepared{conn: c, payload: factory(c.playerID)})
	}

	var g errgroup.Group
	for _, m := range msgs {
		m := m
		g.Go(func() error {
			if err := m.conn.SendEvent(eventType, m.payload); err != nil {
				b.logger.Debug().Err(err).Str("player_id", m.conn.playerID).Str("event", eventType).Msg("dropped event")
			}
			return nil
		})
	}
	_ = g.Wait()
}

// SendTo sends one event to a single player, if connected.
func (b *Broadcaster) SendTo(playerID, eventType string, payload any) {
	b.mu.RLock()
	conn := b.conns[playerID]
	b.mu.RUnlock()
	if conn == nil {
		return
	}
	if err := conn.SendEvent(eventType, payload); err != nil {
		b.logger.Debug().Err(err).Str("player_id", playerID).Str("event", eventType).Msg("dropped event")
	}
}
