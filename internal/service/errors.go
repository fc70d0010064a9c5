package service

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidSession      = errors.New("invalid session")
	ErrAccountNotFound     = errors.New("account not found")
	ErrDeliveryFailed      = errors.New("delivery failed")
	ErrRateLimited         = errors.New("rate limited")
)
