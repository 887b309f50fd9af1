package middleware

import (
	"database/sql"
	"net/http"

	"github.com/google/uuid"
	"suprigest/internal/models"
	"suprigest/internal/repository"
)

// AuditMiddleware logs security-related actions
type AuditMiddleware struct {
	auditRepo *repository.AuditRepository
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(db *sql.DB) *AuditMiddleware {
	return &AuditMiddleware{
		auditRepo: repository.NewAuditRepository(db),
	}
}

// Log logs an action to the audit log after the handler runs
func (m *AuditMiddleware) Log(action, resource string, details string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Call the next handler first
			next.ServeHTTP(w, r)

			// Get user identity from context if available
			var userID *uuid.UUID
			var userEmail *string
			if id, ok := GetUserID(r.Context()); ok {
				userID = &id
			}
			if email, ok := GetUserEmail(r.Context()); ok {
				userEmail = &email
			}

			log := &models.AuditLog{
				UserID:    userID,
				UserEmail: userEmail,
				Action:    action,
				Resource:  resource,
				Details:   details,
				IPAddress: getIP(r),
				UserAgent: r.UserAgent(),
			}

			// Save to database (ignore errors to not block the request)
			_ = m.auditRepo.Create(log)
		})
	}
}

// LogAction logs a specific action
func (m *AuditMiddleware) LogAction(userID *uuid.UUID, userEmail *string, action, resource, details, ipAddress, userAgent string) error {
	log := &models.AuditLog{
		UserID:    userID,
		UserEmail: userEmail,
		Action:    action,
		Resource:  resource,
		Details:   details,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	return m.auditRepo.Create(log)
}
