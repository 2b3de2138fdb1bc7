// Package models defines the domain records shared by every service:
// users, reports, chat sessions and ledger blocks. All of them are
// plain JSON-serializable structs; none of them carry behavior beyond
// small helpers.
package models

// UserRole distinguishes triage staff from reporters.
type UserRole string

const (
	RoleAdmin    UserRole = "Admin"
	RoleEmployee UserRole = "Employee"
)

// User represents an account in the system. The real ID is never shown
// to other users — only the AnonymousID leaves the store.
type User struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Password string   `json:"password"` // plaintext, prototype-grade on purpose
	Role     UserRole `json:"role"`
	// Reputation is tracked for employees only; admins carry nil.
	// It moves with votes on the user's reports and is never clamped,
	// so a heavily downvoted reporter can go negative.
	Reputation *int `json:"reputation,omitempty"`
	// AnonymousID is the pseudonymous label shown in place of the real
	// identity, e.g. "Employee #18432".
	AnonymousID string `json:"anonymousId"`
}

// IsAdmin reports whether the user may access triage-only views.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
