package roles

import "time"

// Role represents a named bundle of permissions assignable to principals.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Permission represents a declared (resource, action) grant.
type Permission struct {
	ID          int64  `json:"id"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// RolePermission ties a permission to a role. A given pair exists at most
// once.
type RolePermission struct {
	RoleID       int64
	PermissionID int64
	CreatedAt    time.Time
}

// UserRole links a principal to a role. A given pair exists at most once.
type UserRole struct {
	UserID    int64
	RoleID    int64
	CreatedAt time.Time
}
