package server

import "errors"

var (
	errImageMissing      = errors.New("registered image target not found")
	errBandwidthExceeded = errors.New("bandwidth throttle limit exceeded")
)
