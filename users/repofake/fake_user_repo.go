package fakeuserrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/eventhub-auth/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

// FakeUserRepo keeps identities in memory. Callers always receive copies.
type FakeUserRepo struct {
	users    map[string]*users.User
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
	nowFunc  func() time.Time
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		emailIds: make(map[string]string),
		nowFunc:  time.Now,
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (ur *FakeUserRepo) Create(ctx context.Context, user *users.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ur.lock.Lock()
	defer ur.lock.Unlock()

	key := emailKey(user.Email)
	if _, ok := ur.emailIds[key]; ok {
		return users.ErrEmailExists
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := ur.nowFunc().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	ur.users[user.ID] = user.Clone()
	ur.emailIds[key] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[emailKey(email)]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return ur.users[id].Clone(), nil
}

func (ur *FakeUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (ur *FakeUserRepo) UpdateRole(ctx context.Context, id string, role users.RoleType) (*users.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, users.ErrInvalidRole
	}
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = ur.nowFunc().UTC()
	return u.Clone(), nil
}

func (ur *FakeUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return users.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = ur.nowFunc().UTC()
	return nil
}

// List returns every identity ordered by creation time, then ID.
func (ur *FakeUserRepo) List(ctx context.Context) ([]*users.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		userList = append(userList, v.Clone())
	}

	sort.Slice(userList, func(i, j int) bool {
		if userList[i].CreatedAt.Equal(userList[j].CreatedAt) {
			return userList[i].ID < userList[j].ID
		}
		return userList[i].CreatedAt.Before(userList[j].CreatedAt)
	})
	return userList, nil
}

// Delete removes an identity. The session flow never deletes; tests use it to
// simulate an identity disappearing after a token was issued.
func (ur *FakeUserRepo) Delete(id string) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if u, ok := ur.users[id]; ok {
		delete(ur.emailIds, emailKey(u.Email))
		delete(ur.users, id)
	}
}
