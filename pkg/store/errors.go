package store

import "errors"

var (
	ErrUninitialized  = errors.New("state not initialized: call Init before reading state")
	ErrSourceNotFound = errors.New("source not found")
)
