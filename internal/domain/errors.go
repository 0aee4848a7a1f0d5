package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrWSDisconnect  = errors.New("websocket disconnected")
	ErrContextDone   = errors.New("context cancelled")
)
