package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"suprigest/internal/models"
)

var ErrRecordNotFound = errors.New("justification record not found")

const justificationColumns = `id, idformulario, supplynumber, serialnumber, lastdate, lastlevel, justify,
	       filename, download, organization, tipoenvio, status, analisado_por, dataanalise, motivo_reprovacao`

// JustificationRepository handles justification record database operations
type JustificationRepository struct {
	db *sql.DB
}

// NewJustificationRepository creates a new justification repository
func NewJustificationRepository(db *sql.DB) *JustificationRepository {
	return &JustificationRepository{db: db}
}

func scanJustification(scanner interface{ Scan(...interface{}) error }) (*models.JustificationRecord, error) {
	record := &models.JustificationRecord{}
	err := scanner.Scan(
		&record.ID,
		&record.IDFormulario,
		&record.SupplyNumber,
		&record.SerialNumber,
		&record.LastDate,
		&record.LastLevel,
		&record.Justify,
		&record.Filename,
		&record.Download,
		&record.Organization,
		&record.TipoEnvio,
		&record.Status,
		&record.AnalisadoPor,
		&record.DataAnalise,
		&record.MotivoReprovacao,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Create inserts a new justification record
func (r *JustificationRepository) Create(record *models.JustificationRecord) error {
	query := `
		INSERT INTO prematurajustify (idformulario, supplynumber, serialnumber, lastdate, lastlevel, justify,
		                              filename, download, organization, tipoenvio, status, analisado_por, dataanalise, motivo_reprovacao)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	err := r.db.QueryRow(
		query,
		record.IDFormulario,
		record.SupplyNumber,
		record.SerialNumber,
		record.LastDate,
		record.LastLevel,
		record.Justify,
		record.Filename,
		record.Download,
		record.Organization,
		record.TipoEnvio,
		record.Status,
		record.AnalisadoPor,
		record.DataAnalise,
		record.MotivoReprovacao,
	).Scan(&record.ID)

	if err != nil {
		return fmt.Errorf("failed to create justification record: %w", err)
	}

	return nil
}

// GetByID retrieves a justification record by ID
func (r *JustificationRepository) GetByID(id uuid.UUID) (*models.JustificationRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM prematurajustify WHERE id = $1`, justificationColumns)

	record, err := scanJustification(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get justification record: %w", err)
	}

	return record, nil
}

// JustificationFilters holds the filter options for record listing
type JustificationFilters struct {
	Status       string
	Organization string
	TipoEnvio    string
	Search       string
}

func (f JustificationFilters) whereClause() (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if f.Status != "" {
		if f.Status == models.StatusPendente {
			// A NULL status is pending
			conditions = append(conditions, fmt.Sprintf("(status IS NULL OR status = $%d)", argPos))
		} else {
			conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		}
		args = append(args, f.Status)
		argPos++
	}
	if f.Organization != "" {
		conditions = append(conditions, fmt.Sprintf("organization = $%d", argPos))
		args = append(args, f.Organization)
		argPos++
	}
	if f.TipoEnvio != "" {
		conditions = append(conditions, fmt.Sprintf("tipoenvio = $%d", argPos))
		args = append(args, f.TipoEnvio)
		argPos++
	}
	if f.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(idformulario ILIKE $%d OR supplynumber ILIKE $%d OR serialnumber ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+f.Search+"%")
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// GetAllWithFilters returns a page of records matching the filters,
// newest lastdate first
func (r *JustificationRepository) GetAllWithFilters(filters JustificationFilters, limit, offset int) ([]models.JustificationRecord, error) {
	where, args := filters.whereClause()

	query := fmt.Sprintf(`
		SELECT %s
		FROM prematurajustify%s
		ORDER BY lastdate DESC NULLS LAST
		LIMIT $%d OFFSET $%d
	`, justificationColumns, where, len(args)+1, len(args)+2)

	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list justification records: %w", err)
	}
	defer rows.Close()

	var records []models.JustificationRecord
	for rows.Next() {
		record, err := scanJustification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan justification record: %w", err)
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

// CountWithFilters returns the number of records matching the filters
func (r *JustificationRepository) CountWithFilters(filters JustificationFilters) (int, error) {
	where, args := filters.whereClause()

	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM prematurajustify"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count justification records: %w", err)
	}

	return count, nil
}

// GetAll returns every record, used by the metrics aggregator
func (r *JustificationRepository) GetAll() ([]models.JustificationRecord, error) {
	return r.GetAllWithFilters(JustificationFilters{}, 1<<31-1, 0)
}

// CountPending returns the number of records awaiting review
func (r *JustificationRepository) CountPending() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM prematurajustify WHERE status IS NULL OR status = $1`
	if err := r.db.QueryRow(query, models.StatusPendente).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending records: %w", err)
	}
	return count, nil
}

// SetDecision stores a review decision. It only touches rows still
// pending; a zero rows-affected result on an existing row means the
// record was already decided.
func (r *JustificationRepository) SetDecision(id uuid.UUID, status, reviewer string, reason *string, decidedAt time.Time) (*models.JustificationRecord, error) {
	query := fmt.Sprintf(`
		UPDATE prematurajustify
		SET status = $1, analisado_por = $2, dataanalise = $3, motivo_reprovacao = $4
		WHERE id = $5 AND (status IS NULL OR status = $6)
		RETURNING %s
	`, justificationColumns)

	record, err := scanJustification(r.db.QueryRow(query, status, reviewer, decidedAt, reason, id, models.StatusPendente))
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store review decision: %w", err)
	}

	return record, nil
}
