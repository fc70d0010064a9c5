package service

import (
	"time"

	"habitbeat/internal/entity"
	"habitbeat/internal/utils"

	"github.com/google/uuid"
)

type JWTAccessIssuer struct {
	Manager *utils.JWTManager
}

func (j JWTAccessIssuer) IssueAccessToken(account entity.Account) (string, time.Duration, error) {
	if j.Manager == nil {
		return "", 0, utils.ErrInvalidAccessToken
	}
	return j.Manager.IssueAccessToken(account.ID.String(), account.Email)
}

func (j JWTAccessIssuer) ParseAccessToken(token string) (uuid.UUID, error) {
	if j.Manager == nil {
		return uuid.Nil, utils.ErrInvalidAccessToken
	}
	claims, err := j.Manager.ParseAccessToken(token)
	if err != nil {
		return uuid.Nil, utils.ErrInvalidAccessToken
	}
	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, utils.ErrInvalidAccessToken
	}
	return accountID, nil
}
