package auth

import (
	"time"

	"github.com/polkiloo/orderpay/internal/domain/model"
)

// Principal is the identity carried by an auth token.
type Principal struct {
	UserID string
	Role   model.Role
}

// IsAdmin reports whether the principal may perform administrative updates.
func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

type Strategy interface {
	IssueToken(p Principal) (string, error)
	ParseToken(token string) (Principal, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
