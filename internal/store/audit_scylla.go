package store

import (
	"context"
	"time"

	"github.com/gocql/gocql"

	"farmlyf_back_end/internal/models"
)

const auditDayLayout = "2006-01-02"

// ScyllaAudit keeps the admin audit trail in the audit_logs table.
type ScyllaAudit struct {
	session *gocql.Session
}

func NewScyllaAudit(session *gocql.Session) *ScyllaAudit {
	return &ScyllaAudit{session: session}
}

func (a *ScyllaAudit) Record(ctx context.Context, e models.AuditLog) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.ID == (gocql.UUID{}) {
		e.ID = gocql.UUIDFromTime(e.Timestamp)
	}
	return a.session.Query(`INSERT INTO audit_logs (
			day, ts, id, user_id, action, resource, resource_id,
			new_value, ip_address, user_agent, success, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Timestamp.UTC().Format(auditDayLayout), e.Timestamp, e.ID, e.UserID, e.Action,
		e.Resource, e.ResourceID, e.NewValue, e.IPAddress, e.UserAgent, e.Success, e.Status,
	).WithContext(ctx).Exec()
}

func (a *ScyllaAudit) List(ctx context.Context, f AuditFilter) ([]models.AuditLog, error) {
	day := f.Day
	if day.IsZero() {
		day = time.Now().UTC()
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	iter := a.session.Query(`SELECT id, ts, user_id, action, resource, resource_id,
			new_value, ip_address, user_agent, success, status
		FROM audit_logs WHERE day = ? LIMIT ?`,
		day.UTC().Format(auditDayLayout), limit,
	).WithContext(ctx).Iter()

	logs := []models.AuditLog{}
	var e models.AuditLog
	for iter.Scan(&e.ID, &e.Timestamp, &e.UserID, &e.Action, &e.Resource, &e.ResourceID,
		&e.NewValue, &e.IPAddress, &e.UserAgent, &e.Success, &e.Status) {
		if f.Action == "" || e.Action == f.Action {
			logs = append(logs, e)
		}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return logs, nil
}

// NopAudit is used when ScyllaDB is not configured.
type NopAudit struct{}

func (NopAudit) Record(context.Context, models.AuditLog) error { return nil }

func (NopAudit) List(context.Context, AuditFilter) ([]models.AuditLog, error) {
	return []models.AuditLog{}, nil
}
