package model

import (
    "strings"
    "time"
)

// Role is the closed set of account roles.  Every profile has exactly one
// role and the value gates which dashboard and which route groups the
// account can reach.
type Role string

const (
    RoleSuperAdmin    Role = "SUPER_ADMIN"    // platform operator
    RolePropertyAdmin Role = "PROPERTY_ADMIN" // landlord / property manager
    RoleTenant        Role = "TENANT"         // house hunter
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleSuperAdmin, RolePropertyAdmin, RoleTenant}

// ParseRole normalises s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
    r := Role(strings.ToUpper(strings.TrimSpace(s)))
    return r, r.Valid()
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
    switch r {
    case RoleSuperAdmin, RolePropertyAdmin, RoleTenant:
        return true
    }
    return false
}

// SelfAssignable reports whether a user may pick r when registering.
// Super admins are only created by an existing super admin or the CLI.
func (r Role) SelfAssignable() bool {
    return r == RolePropertyAdmin || r == RoleTenant
}

// User mirrors a row of the `profiles` table.  PasswordHash never leaves
// the service; handlers render users through their own response types.
//
// Fields:
//  ID           – primary key.
//  Email        – unique, lower-cased login.
//  PasswordHash – bcrypt hash.
//  FullName     – display name.
//  Phone        – Tanzanian mobile number, optional.
//  Role         – see Role.
//  Language     – preferred UI language ("en" or "sw").
//  IsActive     – disabled accounts cannot log in.
type User struct {
    ID           uint64    `json:"id"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    FullName     string    `json:"full_name"`
    Phone        *string   `json:"phone,omitempty"`
    Role         Role      `json:"role"`
    Language     string    `json:"language"`
    IsActive     bool      `json:"is_active"`
    CreatedAt    time.Time `json:"created_at"`
    UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the raw token is persisted.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
