// Package activity keeps the append-only audit trail of user actions.
package activity

import (
	"time"

	"github.com/google/uuid"
)

// Action verbs.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionLogin  = "login"
	ActionLogout = "logout"
)

// Log maps to the activity_logs table. Rows are never updated or deleted.
type Log struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Action    string     `db:"action" json:"action"`
	Entity    string     `db:"entity" json:"entity"`
	EntityID  *string    `db:"entity_id" json:"entity_id,omitempty"`
	Details   *string    `db:"details" json:"details,omitempty"`
	IP        string     `db:"ip" json:"ip"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
