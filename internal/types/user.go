package types

import "strings"

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
	UserRoleGuest UserRole = "guest"
)

// UserProfile is the caller-owned profile record. A caller without one has
// not completed setup yet.
type UserProfile struct {
	Name string `json:"name"`
}

// ChatUser identifies a participant in the directory. DisplayName may be
// empty for principals that never registered a profile.
type ChatUser struct {
	Principal   string `json:"principal"`
	DisplayName string `json:"display_name"`
}

const (
	DisplayNameMinLen = 2
	DisplayNameMaxLen = 32
)

// ValidDisplayName reports whether name, after trimming, falls inside the
// 2..32 rune bound.
func ValidDisplayName(name string) bool {
	trimmed := strings.TrimSpace(name)
	n := len([]rune(trimmed))
	return n >= DisplayNameMinLen && n <= DisplayNameMaxLen
}
