package server

import "errors"

// ErrInvalidListenAddress is returned when the listen address is empty.
var ErrInvalidListenAddress = errors.New("listen address must not be empty")
