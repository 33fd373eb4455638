package repositories

import (
	"fmt"
	"sync"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]models.User)}
}

func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	for _, u := range r.users {
		if u.ID == user.ID || u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("failed to create user: duplicate account")
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.find("username", username, func(u models.User) bool { return u.Username == username })
}

func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.find("email", email, func(u models.User) bool { return u.Email == email })
}

func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	return r.find("id", id, func(u models.User) bool { return u.ID == id })
}

func (r *MockUserRepository) find(column, value string, match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with %s %s: %w", column, value, ErrNotFound)
}
