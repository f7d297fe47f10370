package users

import "context"

// UserRepo is the credential store. Lookups that find nothing return
// ErrUserNotFound; Create returns ErrEmailExists for a duplicate email.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdateRole(ctx context.Context, id string, role RoleType) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	List(ctx context.Context) ([]*User, error)
}
