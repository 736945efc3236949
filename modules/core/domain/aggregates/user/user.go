package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleSystem  Role = "system"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleSystem:
		return true
	}
	return false
}

type User interface {
	ID() uuid.UUID
	Email() string
	FirstName() string
	LastName() string
	FullName() string
	Role() Role
	IsAdmin() bool
	IsTeacher() bool
	CreatedAt() time.Time
	UpdatedAt() time.Time
}

type Option func(*u)

func WithID(id uuid.UUID) Option {
	return func(usr *u) {
		usr.id = id
	}
}

func WithTimestamps(createdAt, updatedAt time.Time) Option {
	return func(usr *u) {
		usr.createdAt = createdAt
		usr.updatedAt = updatedAt
	}
}

func New(firstName, lastName, email string, role Role, opts ...Option) User {
	usr := &u{
		firstName: strings.TrimSpace(firstName),
		lastName:  strings.TrimSpace(lastName),
		email:     strings.ToLower(strings.TrimSpace(email)),
		role:      role,
	}
	for _, opt := range opts {
		opt(usr)
	}
	return usr
}

type u struct {
	id        uuid.UUID
	firstName string
	lastName  string
	email     string
	role      Role
	createdAt time.Time
	updatedAt time.Time
}

func (usr *u) ID() uuid.UUID        { return usr.id }
func (usr *u) Email() string        { return usr.email }
func (usr *u) FirstName() string    { return usr.firstName }
func (usr *u) LastName() string     { return usr.lastName }
func (usr *u) Role() Role           { return usr.role }
func (usr *u) IsAdmin() bool        { return usr.role == RoleAdmin }
func (usr *u) IsTeacher() bool      { return usr.role == RoleTeacher }
func (usr *u) CreatedAt() time.Time { return usr.createdAt }
func (usr *u) UpdatedAt() time.Time { return usr.updatedAt }

func (usr *u) FullName() string {
	return strings.TrimSpace(usr.firstName + " " + usr.lastName)
}
