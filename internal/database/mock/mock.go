package mock

import (
	"context"
	"sync"
	"time"

	"github.com/jon4hz/folio/internal/database"
)

var _ database.DB = (*MockDB)(nil)

// MockDB is a mock implementation of database.DB for testing.
type MockDB struct {
	mu sync.RWMutex

	// User storage
	users      map[uint]*database.User
	nextUserID uint

	// Contact storage
	contactMessages []database.ContactMessage
	nextContactID   uint

	// Error simulation
	CreateUserError           error
	GetUserByIDError          error
	GetUserByEmailError       error
	CreateContactMessageError error
	PingError                 error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	return &MockDB{
		users:         make(map[uint]*database.User),
		nextUserID:    1,
		nextContactID: 1,
	}
}

// Reset clears all data and errors from the mock database.
func (m *MockDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = make(map[uint]*database.User)
	m.nextUserID = 1
	m.contactMessages = nil
	m.nextContactID = 1

	m.CreateUserError = nil
	m.GetUserByIDError = nil
	m.GetUserByEmailError = nil
	m.CreateContactMessageError = nil
	m.PingError = nil
}

// User operations

func (m *MockDB) CreateUser(ctx context.Context, username, email, passwordHash string) (*database.User, error) {
	if m.CreateUserError != nil {
		return nil, m.CreateUserError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return nil, database.ErrDuplicatedKey
		}
	}

	user := &database.User{
		ID:           m.nextUserID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.nextUserID++
	m.users[user.ID] = user

	return copyUser(user), nil
}

func (m *MockDB) GetUserByID(ctx context.Context, id uint) (*database.User, error) {
	if m.GetUserByIDError != nil {
		return nil, m.GetUserByIDError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return copyUser(user), nil
}

func (m *MockDB) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	if m.GetUserByEmailError != nil {
		return nil, m.GetUserByEmailError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDB) CountUsers(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), nil
}

// DeleteUser removes a user. The real store never deletes users; tests use this to leave dangling sessions behind.
func (m *MockDB) DeleteUser(id uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// Contact operations

func (m *MockDB) CreateContactMessage(ctx context.Context, msg *database.ContactMessage) error {
	if m.CreateContactMessageError != nil {
		return m.CreateContactMessageError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	msg.ID = m.nextContactID
	msg.CreatedAt = time.Now()
	m.nextContactID++
	m.contactMessages = append(m.contactMessages, *msg)
	return nil
}

func (m *MockDB) CountContactMessages(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.contactMessages)), nil
}

// ContactMessages returns a copy of all stored contact messages.
func (m *MockDB) ContactMessages() []database.ContactMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]database.ContactMessage(nil), m.contactMessages...)
}

func (m *MockDB) Ping(ctx context.Context) error {
	return m.PingError
}

func (m *MockDB) Close() error {
	return nil
}

func copyUser(u *database.User) *database.User {
	c := *u
	return &c
}
