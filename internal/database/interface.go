package database

import "context"

// DB is the persistence layer used by the request handlers.
type DB interface {
	UserStore
	ContactStore

	Ping(ctx context.Context) error
	Close() error
}

// UserStore is the credential store. Users are created once and never updated or deleted.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error)
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// ContactStore holds submitted contact messages. Messages are append only.
type ContactStore interface {
	CreateContactMessage(ctx context.Context, msg *ContactMessage) error
	CountContactMessages(ctx context.Context) (int64, error)
}
