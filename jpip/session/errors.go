package session

import "errors"

var (
	errUnknownChannel = errors.New("channel id not registered")
	errSessionClosed  = errors.New("session is closed")
)
