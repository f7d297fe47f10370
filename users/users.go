package users

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RoleType is the single role held by an identity.
type RoleType string

const (
	RoleUser         RoleType = "user"
	RoleModerator    RoleType = "moderator"
	RoleAdmin        RoleType = "admin"
	RoleOrganisation RoleType = "organisation"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidRole  = errors.New("invalid role")
)

var validRoles = map[RoleType]struct{}{
	RoleUser:         {},
	RoleModerator:    {},
	RoleAdmin:        {},
	RoleOrganisation: {},
}

// IsValid reports whether r belongs to the closed role set.
func (r RoleType) IsValid() bool {
	_, ok := validRoles[r]
	return ok
}

// ParseRole converts s into a RoleType. An empty string is rejected; callers
// that want a default apply it before parsing.
func ParseRole(s string) (RoleType, error) {
	r := RoleType(strings.TrimSpace(s))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Roles lists the accepted roles in a stable order.
func Roles() []RoleType {
	return []RoleType{RoleUser, RoleModerator, RoleAdmin, RoleOrganisation}
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialize
	Name         string    `json:"name,omitempty"`
	Surname      string    `json:"surname,omitempty"`
	Role         RoleType  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var hashCost atomic.Int64

func init() {
	hashCost.Store(int64(bcrypt.DefaultCost))
}

// SetHashCost changes the bcrypt cost used by HashPassword. Values outside
// bcrypt's accepted range fall back to bcrypt.DefaultCost.
func SetHashCost(cost int) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashCost.Store(int64(cost))
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), int(hashCost.Load()))
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a plaintext password against the user's stored hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

// HasRole reports whether the user's current role is one of roles.
func (u *User) HasRole(roles ...RoleType) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Clone returns a copy that callers may mutate freely.
func (u *User) Clone() *User {
	c := *u
	return &c
}
