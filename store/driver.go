package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate creates or upgrades the schema.
	Migrate(ctx context.Context) error

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)

	// Hobby model related methods.
	CreateHobby(ctx context.Context, create *Hobby) (*Hobby, error)
	ListHobbies(ctx context.Context, find *FindHobby) ([]*Hobby, error)
	UpdateHobby(ctx context.Context, update *UpdateHobby) (*Hobby, error)
	DeleteHobby(ctx context.Context, delete *DeleteHobby) error

	// Item model related methods.
	CreateItem(ctx context.Context, create *Item) (*Item, error)
	ListItems(ctx context.Context, find *FindItem) ([]*Item, error)
	UpdateItem(ctx context.Context, update *UpdateItem) (*Item, error)
	DeleteItem(ctx context.Context, delete *DeleteItem) error
}
