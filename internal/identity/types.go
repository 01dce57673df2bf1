package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role constants stored in user_roles
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
	RoleProducer   = "producer"
)

// User is an account at the hosted identity provider
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the result of a sign-up or sign-in
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// Role is one row of the user_roles table. IsProtected marks the designated
// super-admin account that can never be deleted or demoted; the store
// enforces it so no UI-level email comparison is needed.
type Role struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	IsProtected bool      `json:"is_protected"`
	CreatedAt   time.Time `json:"created_at"`
}
