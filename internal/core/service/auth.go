package service

import (
	"errors"
	"slices"

	"github.com/spf13/viper"
)

type Authorizer interface {
	IsAuthorized(userID string) bool
}

// OwnerAuthorizer admits only the configured bot owners to administrative commands.
type OwnerAuthorizer struct {
	owners []string
}

func NewAuthorizer() (*OwnerAuthorizer, error) {
	var list []string

	err := viper.UnmarshalKey("bot.owner_ids", &list)
	if err != nil {
		return nil, errors.New("failed to load bot owner IDs")
	}

	return &OwnerAuthorizer{owners: list}, nil
}

func (a *OwnerAuthorizer) IsAuthorized(userID string) bool {
	if userID == "" {
		return false
	}

	return slices.Contains(a.owners, userID)
}
