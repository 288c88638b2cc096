package user

import (
	"context"
)

type StubUserRepo struct {
	users  map[int]User
	nextId int
}

func NewStubUserRepo() *StubUserRepo {
	return &StubUserRepo{users: map[int]User{}, nextId: 1}
}

func (s *StubUserRepo) CreateUser(_ context.Context, user User) (int, error) {
	id := s.nextId
	s.nextId++
	user.Id = id
	s.users[id] = user
	return id, nil
}

func (s *StubUserRepo) GetUser(_ context.Context, id int) (User, error) {
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *StubUserRepo) GetUserByUid(_ context.Context, uid string) (User, error) {
	for _, u := range s.users {
		if u.Uid == uid {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (s *StubUserRepo) UpdateUser(_ context.Context, userId int, user User) (User, error) {
	if _, ok := s.users[userId]; !ok {
		return User{}, ErrUserNotFound
	}
	user.Id = userId
	s.users[userId] = user
	return user, nil
}

func (s *StubUserRepo) DeleteUser(_ context.Context, id int) error {
	if _, ok := s.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *StubUserRepo) GetAllUsers(_ context.Context) ([]User, error) {
	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

func (s *StubUserRepo) IsUsernameAvailable(_ context.Context, username string) (bool, error) {
	for _, u := range s.users {
		if u.Username == username {
			return false, nil
		}
	}
	return true, nil
}
