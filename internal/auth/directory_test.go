package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/restaurant-directory/internal/repository"
)

// fakeDirectory is an in-memory UserDirectory for the flow tests.
type fakeDirectory struct {
	users     map[uint64]repository.User
	nextID    uint64
	linkErr   error
	createErr error
	lookupErr error
}

func newFakeDirectory(users ...repository.User) *fakeDirectory {
	f := &fakeDirectory{users: map[uint64]repository.User{}, nextID: 1}
	for _, u := range users {
		f.users[u.ID] = u
		if u.ID >= f.nextID {
			f.nextID = u.ID + 1
		}
	}
	return f
}

func (f *fakeDirectory) GetByEmail(_ context.Context, email string) (repository.User, error) {
	if f.lookupErr != nil {
		return repository.User{}, f.lookupErr
	}
	email = strings.ToLower(email)
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repository.User{}, repository.ErrUserNotFound
}

func (f *fakeDirectory) GetByID(_ context.Context, id uint64) (repository.User, error) {
	if f.lookupErr != nil {
		return repository.User{}, f.lookupErr
	}
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeDirectory) GetByGoogleID(_ context.Context, googleID string) (repository.User, error) {
	if f.lookupErr != nil {
		return repository.User{}, f.lookupErr
	}
	for _, u := range f.users {
		if u.GoogleID != "" && u.GoogleID == googleID {
			return u, nil
		}
	}
	return repository.User{}, repository.ErrUserNotFound
}

func (f *fakeDirectory) AdoptGoogleIdentity(_ context.Context, id uint64, googleID, fullName string) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.GoogleID = googleID
	if u.FullName == "" {
		u.FullName = fullName
	}
	f.users[id] = u
	return nil
}

func (f *fakeDirectory) CreateFederated(_ context.Context, email, fullName, googleID string) (repository.User, error) {
	if f.createErr != nil {
		return repository.User{}, f.createErr
	}
	u := repository.User{
		ID:       f.nextID,
		Email:    strings.ToLower(email),
		FullName: fullName,
		GoogleID: googleID,
		Role:     repository.RoleUser,
	}
	f.nextID++
	f.users[u.ID] = u
	return u, nil
}

var errStorage = errors.New("storage exploded")
