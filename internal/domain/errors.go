package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrNoData       = errors.New("no draw data")
	ErrUnknownGame  = errors.New("unknown game")
	ErrInvalidMode  = errors.New("invalid sample mode")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrCancelled    = errors.New("request cancelled")
	ErrBridgeClosed = errors.New("worker bridge closed")
)
