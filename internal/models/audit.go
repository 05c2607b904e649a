package models

import "time"

const (
	AuditActionSignup   = "SIGNUP"
	AuditActionLogin    = "LOGIN"
	AuditActionLogout   = "LOGOUT"
	AuditActionCreate   = "CREATE"
	AuditActionUpdate   = "UPDATE"
	AuditActionDelete   = "DELETE"
	AuditActionImport   = "IMPORT"
	AuditActionRegister = "REGISTER"
	AuditActionBook     = "BOOK"
)

const (
	AuditResourceOrganizer = "organizer"
	AuditResourceEvent     = "event"
	AuditResourceStudent   = "student"
	AuditResourceBooking   = "booking"
)

// AuditLog is one entry of the activity trail.
type AuditLog struct {
	ID         int64     `db:"id" json:"id"`
	Actor      string    `db:"actor" json:"actor"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID string    `db:"resource_id" json:"resource_id"`
	Detail     string    `db:"detail" json:"detail"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
