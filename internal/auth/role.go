package auth

import (
	"context"

	"github.com/lapmart/lapmart/internal/domain"
)

// UserRepository is the read seam the guards use for role checks.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// RoleLookup resolves a user's stored role. Every call is a fresh read so a
// role change or user deletion takes effect on the next request.
type RoleLookup struct {
	users UserRepository
}

func NewRoleLookup(users UserRepository) *RoleLookup {
	return &RoleLookup{users: users}
}

// RoleOf returns the stored role for email, or "" when no such user exists.
func (l *RoleLookup) RoleOf(ctx context.Context, email string) (string, error) {
	user, err := l.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}
	return user.Role, nil
}
