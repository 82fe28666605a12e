package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	PermissionWalletRead       = "wallet:read"
	PermissionWalletWrite      = "wallet:write"
	PermissionTransactionRead  = "transaction:read"
	PermissionTransactionWrite = "transaction:write"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// DefaultPermissions returns the permissions granted to a regular account.
func DefaultPermissions() []string {
	return []string{
		PermissionWalletRead,
		PermissionWalletWrite,
		PermissionTransactionRead,
		PermissionTransactionWrite,
	}
}
