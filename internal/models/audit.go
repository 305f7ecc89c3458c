package models

import (
	"time"

	"github.com/gocql/gocql"
)

// AuditLog records an administrative action.
type AuditLog struct {
	ID         gocql.UUID `json:"id"`
	UserID     string     `json:"user_id"`
	Action     string     `json:"action"`
	Resource   string     `json:"resource"`
	ResourceID string     `json:"resource_id,omitempty"`
	NewValue   string     `json:"new_value,omitempty"`
	IPAddress  string     `json:"ip_address"`
	UserAgent  string     `json:"user_agent"`
	Success    bool       `json:"success"`
	Status     int        `json:"status"`
	Timestamp  time.Time  `json:"timestamp"`
}
