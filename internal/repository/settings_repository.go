package repository

import (
	"database/sql"
	"fmt"
	"time"

	"suprigest/internal/models"
)

// SettingsRepository handles the singleton configuration row
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

const settingsColumns = `id, webhook_aprovacao, webhook_reprovacao, webhook_notificacao_cliente,
	       webhook_callback, schema_atual, ambiente_banco, updated_at`

func (r *SettingsRepository) scanSettings(row *sql.Row) (*models.Settings, error) {
	settings := &models.Settings{}
	err := row.Scan(
		&settings.ID,
		&settings.WebhookAprovacao,
		&settings.WebhookReprovacao,
		&settings.WebhookNotificacaoCliente,
		&settings.WebhookCallback,
		&settings.SchemaAtual,
		&settings.AmbienteBanco,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Get returns the settings row, inserting defaults on first read
func (r *SettingsRepository) Get() (*models.Settings, error) {
	query := fmt.Sprintf(`SELECT %s FROM configuracoes ORDER BY id ASC LIMIT 1`, settingsColumns)

	settings, err := r.scanSettings(r.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return r.createDefaults()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return settings, nil
}

func (r *SettingsRepository) createDefaults() (*models.Settings, error) {
	query := fmt.Sprintf(`
		INSERT INTO configuracoes (webhook_aprovacao, webhook_reprovacao, webhook_notificacao_cliente,
		                           webhook_callback, schema_atual, ambiente_banco, updated_at)
		VALUES ('', '', '', '', 'public', 'producao', $1)
		RETURNING %s
	`, settingsColumns)

	settings, err := r.scanSettings(r.db.QueryRow(query, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}

	return settings, nil
}

// Update writes all six configuration columns atomically
func (r *SettingsRepository) Update(settings *models.Settings) error {
	// Ensure the row exists before updating it
	current, err := r.Get()
	if err != nil {
		return err
	}

	query := `
		UPDATE configuracoes
		SET webhook_aprovacao = $1, webhook_reprovacao = $2, webhook_notificacao_cliente = $3,
		    webhook_callback = $4, schema_atual = $5, ambiente_banco = $6, updated_at = $7
		WHERE id = $8
	`

	now := time.Now()
	_, err = r.db.Exec(
		query,
		settings.WebhookAprovacao,
		settings.WebhookReprovacao,
		settings.WebhookNotificacaoCliente,
		settings.WebhookCallback,
		settings.SchemaAtual,
		settings.AmbienteBanco,
		now,
		current.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	settings.ID = current.ID
	settings.UpdatedAt = now
	return nil
}
