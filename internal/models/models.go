package models

import (
	"time"

	"github.com/google/uuid"
)

// Role names known to the application. A profile is semantically
// single-valued: the earliest user_roles row wins.
const (
	RoleLeitura     = "leitura"
	RoleAnalista    = "analista"
	RoleSupervisor  = "supervisor"
	RoleAdminMaster = "admin_master"
)

// Review statuses stored on prematurajustify rows. A NULL status is
// treated as pending.
const (
	StatusPendente  = "pendente"
	StatusAprovado  = "aprovado"
	StatusReprovado = "reprovado"
)

// NoEvidenceJustify marks records submitted without an attached
// evidence file; their download reference must not be handed out.
const NoEvidenceJustify = "Sem Evidência"

// NotInformed is the placeholder used in rankings when a record has
// no organization or rejection reason.
const NotInformed = "Não informado"

// User represents an application user
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// UserRole links a user to a role name
type UserRole struct {
	ID        uint      `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Session represents an active token session
type Session struct {
	ID             string    `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	SessionID      string    `json:"session_id" db:"session_id"`
	JTI            string    `json:"jti" db:"jti"`
	TokenType      string    `json:"token_type" db:"token_type"`
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	IPAddress      string    `json:"ip_address" db:"ip_address"`
	UserAgent      string    `json:"user_agent" db:"user_agent"`
}

// AuditLog represents an audit trail entry
type AuditLog struct {
	ID        uint       `json:"id" db:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	UserEmail *string    `json:"user_email,omitempty" db:"user_email"`
	Action    string     `json:"action" db:"action"`
	Resource  string     `json:"resource" db:"resource"`
	Details   string     `json:"details,omitempty" db:"details"`
	IPAddress string     `json:"ip_address" db:"ip_address"`
	UserAgent string     `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// JustificationRecord is one premature supply-return justification.
// Column and JSON names follow the upstream form exporter, which is
// why they are lowercase Portuguese/English hybrids.
type JustificationRecord struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	IDFormulario     string     `json:"idformulario" db:"idformulario"`
	SupplyNumber     string     `json:"supplynumber" db:"supplynumber"`
	SerialNumber     string     `json:"serialnumber" db:"serialnumber"`
	LastDate         *time.Time `json:"lastdate,omitempty" db:"lastdate"`
	LastLevel        *string    `json:"lastlevel,omitempty" db:"lastlevel"`
	Justify          *string    `json:"justify,omitempty" db:"justify"`
	Filename         *string    `json:"filename,omitempty" db:"filename"`
	Download         *string    `json:"download,omitempty" db:"download"`
	Organization     *string    `json:"organization,omitempty" db:"organization"`
	TipoEnvio        *string    `json:"tipoenvio,omitempty" db:"tipoenvio"`
	Status           *string    `json:"status,omitempty" db:"status"`
	AnalisadoPor     *string    `json:"analisado_por,omitempty" db:"analisado_por"`
	DataAnalise      *time.Time `json:"dataanalise,omitempty" db:"dataanalise"`
	MotivoReprovacao *string    `json:"motivo_reprovacao,omitempty" db:"motivo_reprovacao"`
}

// Settings is the singleton configuration row holding the outbound
// webhook endpoints and environment descriptors.
type Settings struct {
	ID                        uint      `json:"id" db:"id"`
	WebhookAprovacao          string    `json:"webhook_aprovacao" db:"webhook_aprovacao"`
	WebhookReprovacao         string    `json:"webhook_reprovacao" db:"webhook_reprovacao"`
	WebhookNotificacaoCliente string    `json:"webhook_notificacao_cliente" db:"webhook_notificacao_cliente"`
	WebhookCallback           string    `json:"webhook_callback" db:"webhook_callback"`
	SchemaAtual               string    `json:"schema_atual" db:"schema_atual"`
	AmbienteBanco             string    `json:"ambiente_banco" db:"ambiente_banco"`
	UpdatedAt                 time.Time `json:"updated_at" db:"updated_at"`
}

// DashboardMetrics is the full pre-aggregated payload for the
// dashboard screen.
type DashboardMetrics struct {
	Totals           MetricTotals   `json:"totals"`
	Trend            []TrendEntry   `json:"trend"`
	TopOrganizations RankingGroup   `json:"top_organizations"`
	RejectionReasons []RankingEntry `json:"rejection_reasons"`
	FastestAnalysts  []AnalystSpeed `json:"fastest_analysts"`
}

// MetricTotals holds the headline KPI counters
type MetricTotals struct {
	Total            int     `json:"total"`
	Last7Days        int     `json:"last_7_days"`
	Last30Days       int     `json:"last_30_days"`
	Approved         int     `json:"approved"`
	Rejected         int     `json:"rejected"`
	Pending          int     `json:"pending"`
	ApprovalRate     float64 `json:"approval_rate"`
	AvgAnalysisHours float64 `json:"avg_analysis_hours"`
}

// TrendEntry is one calendar-day bucket of the 30-day trend
type TrendEntry struct {
	Date     string `json:"date"`
	Approved int    `json:"approved"`
	Rejected int    `json:"rejected"`
	Pending  int    `json:"pending"`
}

// RankingEntry is one name/count pair in a top-N ranking
type RankingEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RankingGroup groups the organization rankings by outcome
type RankingGroup struct {
	ByTotal    []RankingEntry `json:"by_total"`
	ByApproved []RankingEntry `json:"by_approved"`
	ByRejected []RankingEntry `json:"by_rejected"`
}

// AnalystSpeed is one reviewer's mean analysis latency
type AnalystSpeed struct {
	Analyst  string  `json:"analyst"`
	AvgHours float64 `json:"avg_hours"`
	Count    int     `json:"count"`
}
