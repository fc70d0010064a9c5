package service

import "habitbeat/internal/entity"

type SignupInput struct {
	Email    string
	Password string
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress *string
	UserAgent *string
}

// AuthResult is what a successful authentication-shaped use case yields:
// a short-lived access token plus the raw refresh secret for the cookie.
type AuthResult struct {
	Account          *entity.Account
	AccessToken      string
	ExpiresIn        int64
	RefreshToken     string
	RefreshExpiresIn int64
}
