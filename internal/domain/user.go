package domain

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	PINHash    string      `json:"-"`
	Role       Role        `json:"role"`
	Characters []Character `json:"characters"`
	CreatedAt  time.Time   `json:"createdAt"`
	Version    int32       `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
