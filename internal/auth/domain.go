package auth

import "time"

// User represents a registered account. Password holds the hashed
// credential, never the plaintext.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	CreatedAt time.Time
}

// NewUser carries the fields required to persist a user. Password must
// already be a hashed credential.
type NewUser struct {
	Name     string
	Email    string
	Password string
}

// RegisterInput is the validated payload for registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput is the validated payload for login.
type LoginInput struct {
	Email    string
	Password string
}
