package server

import "errors"

var (
	// ErrConnectionClosed is returned when a send races a closing socket.
	ErrConnectionClosed = errors.New("server: connection closed")

	// ErrTableFull rejects a join that would exceed the table's seat count.
	ErrTableFull = errors.New("server: table is full")

	// ErrUnknownTable rejects a connection naming a table id that does not
	// exist in the registry.
	ErrUnknownTable = errors.New("server: unknown table")

	// ErrNotYourTurn rejects an action submitted by a player whose action
	// is not currently awaited.
	ErrNotYourTurn = errors.New("server: no action expected from player")

	// ErrTableClosed rejects operations against a table whose goroutine
	// has shut down.
	ErrTableClosed = errors.New("server: table closed")
)
