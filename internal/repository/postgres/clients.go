package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradeops/backoffice/internal/domain"
	"github.com/tradeops/backoffice/pkg/errors"
)

type apiClientRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAPIClientRepository creates a new API client repository
func NewAPIClientRepository(db *sql.DB, logger *zap.Logger) *apiClientRepository {
	return &apiClientRepository{
		db:     db,
		logger: logger,
	}
}

func (r *apiClientRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.APIClient, error) {
	// bcrypt hashes are salted, so the key is verified against every active client
	query := `
		SELECT id, name, api_key_hash, is_active, created_at, updated_at
		FROM api_clients
		WHERE is_active = true
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query API clients", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var client domain.APIClient

		err := rows.Scan(
			&client.ID,
			&client.Name,
			&client.APIKeyHash,
			&client.IsActive,
			&client.CreatedAt,
			&client.UpdatedAt,
		)
		if err != nil {
			continue
		}

		if err := bcrypt.CompareHashAndPassword([]byte(client.APIKeyHash), []byte(apiKey)); err == nil {
			return &client, nil
		}
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate API clients", zap.Error(err))
		return nil, err
	}

	return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
}

func (r *apiClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.APIClient, error) {
	query := `
		SELECT id, name, api_key_hash, is_active, created_at, updated_at
		FROM api_clients
		WHERE id = $1
	`

	var client domain.APIClient
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&client.ID,
		&client.Name,
		&client.APIKeyHash,
		&client.IsActive,
		&client.CreatedAt,
		&client.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "api client", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get API client by ID", zap.Error(err))
		return nil, err
	}

	return &client, nil
}

func (r *apiClientRepository) Create(ctx context.Context, client *domain.APIClient) error {
	query := `
		INSERT INTO api_clients (id, name, api_key_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now()
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	if client.UpdatedAt.IsZero() {
		client.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.Name,
		client.APIKeyHash,
		client.IsActive,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create API client", zap.Error(err))
		return err
	}

	return nil
}

func (r *apiClientRepository) Update(ctx context.Context, client *domain.APIClient) error {
	query := `
		UPDATE api_clients
		SET name = $2, api_key_hash = $3, is_active = $4, updated_at = $5
		WHERE id = $1
	`

	client.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.Name,
		client.APIKeyHash,
		client.IsActive,
		client.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update API client", zap.Error(err))
		return err
	}

	return nil
}
