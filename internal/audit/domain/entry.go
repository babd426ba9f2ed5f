// Package domain holds the audit trail model.
package domain

import "time"

// Action identifies an authentication event in the audit trail.
type Action string

const (
	ActionLogin     Action = "login"
	ActionRefresh   Action = "refresh"
	ActionLogout    Action = "logout"
	ActionLogoutAll Action = "logout_all"
)

// Entry is a single audit record. UserID is empty when the actor could not
// be identified, e.g. a failed login against an unknown email.
type Entry struct {
	ID        string
	UserID    string
	Action    Action
	Success   bool
	Reason    string
	ClientIP  string
	CreatedAt time.Time
}
