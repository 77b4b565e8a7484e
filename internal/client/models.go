// ABOUTME: Wire models for the library catalog API
// ABOUTME: Users, roles and books with tolerant decoding of backend ids

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is a backend identifier. The backend sends strings (Mongo ObjectIDs),
// but numeric ids are accepted as well.
type ID string

// UnmarshalJSON accepts a JSON string or number
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Role is the closed set of account roles
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

// String returns the wire value of a Role
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	default:
		return "user"
	}
}

// ParseRole parses a role name strictly, for user input
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return RoleUser, fmt.Errorf("invalid role %q (expected user or admin)", s)
	}
}

// MarshalJSON encodes the role as its wire string
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes "admin" as RoleAdmin and anything else as RoleUser
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*r = RoleUser
		return nil
	}
	if s == "admin" {
		*r = RoleAdmin
	} else {
		*r = RoleUser
	}
	return nil
}

// User is an authenticated account as returned by the auth endpoints
type User struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// UnmarshalJSON accepts either "id" or "_id"
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var aux struct {
		plain
		MongoID ID `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.ID == "" {
		u.ID = aux.MongoID
	}
	return nil
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Book is a catalog entry owned by the backend
type Book struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description"`
}

// UnmarshalJSON accepts either "id" or "_id"
func (b *Book) UnmarshalJSON(data []byte) error {
	type plain Book
	var aux struct {
		plain
		MongoID ID `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = Book(aux.plain)
	if b.ID == "" {
		b.ID = aux.MongoID
	}
	return nil
}

// DisplayAuthor returns the author or "Unknown" when absent
func (b Book) DisplayAuthor() string {
	if strings.TrimSpace(b.Author) == "" {
		return "Unknown"
	}
	return b.Author
}

// BookInput is the body of a create-book request
type BookInput struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// LoginRequest holds credentials for POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// AuthResponse is returned by login and register.
// A missing Token means the attempt failed, with Message explaining why.
type AuthResponse struct {
	Token   string `json:"token"`
	User    *User  `json:"user"`
	Message string `json:"message,omitempty"`
}

// VerifyResponse is returned by GET /api/auth/verify
type VerifyResponse struct {
	User *User `json:"user"`
}
