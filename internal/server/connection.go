package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-server/internal/game"
	"github.com/lox/holdem-server/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	// Outbound buffer per connection; a client that can't drain this many
	// events is disconnected rather than allowed to stall the table.
	sendBufferSize = 256
)

// Connection wraps one client's WebSocket. It owns the read and write
// pumps; everything it learns from the wire is forwarded to the Table,
// and everything the Table emits reaches the wire through SendEvent.
type Connection struct {
	ws       *websocket.Conn
	send     chan []byte
	playerID string
	name     string
	table    *Table
	logger   zerolog.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection wraps an upgraded WebSocket for a player at a table.
func NewConnection(ws *websocket.Conn, playerID, name string, table *Table, logger zerolog.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		ws:       ws,
		send:     make(chan []byte, sendBufferSize),
		playerID: playerID,
		name:     name,
		table:    table,
		logger:   logger.With().Str("component", "conn").Str("player_id", playerID).Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// PlayerID returns the player this connection speaks for.
func (c *Connection) PlayerID() string { return c.playerID }

// Start launches the read and write pumps.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close tears the connection down. Safe to call more than once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		if c.ws != nil {
			err = c.ws.Close()
		}
	})
	return err
}

// SendEvent encodes and queues one outbound event. A full buffer closes
// the connection: a client that far behind can no longer render a
// consistent view of the hand anyway.
func (c *Connection) SendEvent(eventType string, payload any) error {
	data, err := protocol.Encode(eventType, payload)
	if err != nil {
		c.logger.Error().Err(err).Str("event", eventType).Msg("failed to encode event")
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			// Send raced Close; the channel is gone.
			c.logger.Debug().Interface("panic", r).Msg("send on closed connection")
		}
	}()

	select {
	case c.send <- data:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn().Msg("send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) sendError(message string) {
	_ = c.SendEvent(protocol.TypeError, protocol.ErrorPayload{Message: message})
}

func (c *Connection) readPump() {
	defer func() {
		c.table.Disconnect(c)
		_ = c.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error().Err(err).Msg("websocket read error")
			}
			return
		}

		c.handleMessage(data)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error().Err(err).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage dispatches one inbound frame. Malformed frames and
// unknown types are logged and dropped; the connection stays open.
func (c *Connection) handleMessage(data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		c.logger.Warn().Err(err).Msg("dropping malformed message")
		return
	}

	switch env.Type {
	case protocol.TypeAction:
		var p protocol.ActionPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.logger.Warn().Err(err).Msg("dropping malformed action payload")
			return
		}
		c.handleAction(p)

	case protocol.TypeChat:
		var p protocol.ChatPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.logger.Warn().Err(err).Msg("dropping malformed chat payload")
			return
		}
		c.table.BroadcastChat(c.playerID, c.name, p.Message)

	case protocol.TypePing:
		_ = c.SendEvent(protocol.TypePong, struct{}{})

	default:
		c.logger.Warn().Str("type", env.Type).Msg("dropping message of unknown type")
	}
}

func (c *Connection) handleAction(p protocol.ActionPayload) {
	actionType, ok := parseActionType(p.Action)
	if !ok {
		c.sendError("unknown action: " + p.Action)
		return
	}

	err := c.table.SubmitAction(game.Action{
		PlayerID: c.playerID,
		Type:     actionType,
		Amount:   p.Amount,
	})
	if err != nil {
		c.sendError(err.Error())
	}
}

func parseActionType(s string) (game.ActionType, bool) {
	switch game.ActionType(s) {
	case game.Fold, game.Check, game.Call, game.Raise, game.AllIn:
		return game.ActionType(s), true
	}
	return "", false
}
