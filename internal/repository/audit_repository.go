package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"suprigest/internal/models"
)

// AuditRepository handles audit log database operations
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create records a new audit log entry
func (r *AuditRepository) Create(log *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (user_id, user_email, action, resource, details, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		log.UserID,
		log.UserEmail,
		log.Action,
		log.Resource,
		log.Details,
		log.IPAddress,
		log.UserAgent,
		now,
	).Scan(&log.ID)

	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	log.CreatedAt = now
	return nil
}

// AuditFilters holds the filter and sort options for audit log listing
type AuditFilters struct {
	UserID    *uuid.UUID
	Action    string
	Resource  string
	SortBy    string
	SortOrder string
}

// auditSortColumns maps permitted sort keys to their columns. Anything
// else falls back to created_at.
var auditSortColumns = map[string]string{
	"created_at": "created_at",
	"action":     "action",
	"resource":   "resource",
	"user_email": "user_email",
}

func (f AuditFilters) whereClause() (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if f.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argPos))
		args = append(args, *f.UserID)
		argPos++
	}
	if f.Action != "" {
		conditions = append(conditions, fmt.Sprintf("action = $%d", argPos))
		args = append(args, f.Action)
		argPos++
	}
	if f.Resource != "" {
		conditions = append(conditions, fmt.Sprintf("resource ILIKE $%d", argPos))
		args = append(args, "%"+f.Resource+"%")
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// CountWithFilters returns the number of audit logs matching the filters
func (r *AuditRepository) CountWithFilters(filters AuditFilters) (int, error) {
	where, args := filters.whereClause()

	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM audit_logs"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	return count, nil
}

// GetAllWithFilters returns a page of audit logs matching the filters
func (r *AuditRepository) GetAllWithFilters(filters AuditFilters, limit, offset int) ([]models.AuditLog, error) {
	where, args := filters.whereClause()

	sortColumn, ok := auditSortColumns[filters.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	sortOrder := "DESC"
	if strings.EqualFold(filters.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, user_email, action, resource, details, ip_address, user_agent, created_at
		FROM audit_logs%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, where, sortColumn, sortOrder, len(args)+1, len(args)+2)

	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var log models.AuditLog
		var details sql.NullString
		err := rows.Scan(
			&log.ID,
			&log.UserID,
			&log.UserEmail,
			&log.Action,
			&log.Resource,
			&details,
			&log.IPAddress,
			&log.UserAgent,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		log.Details = details.String
		logs = append(logs, log)
	}

	return logs, rows.Err()
}

// GetByUserID returns the most recent audit logs for a user
func (r *AuditRepository) GetByUserID(userID uuid.UUID, limit int) ([]models.AuditLog, error) {
	id := userID
	return r.GetAllWithFilters(AuditFilters{UserID: &id}, limit, 0)
}
