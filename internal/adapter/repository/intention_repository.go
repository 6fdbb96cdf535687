package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matheusvb/atendai/internal/domain/intention"
)

var (
	ErrIntentionNotFound = errors.New("intenção não encontrada")
)

// IntentionRepository implementa a interface intention.Repository
type IntentionRepository struct {
	db *pgxpool.Pool
}

// NewIntentionRepository cria uma nova instância de IntentionRepository
func NewIntentionRepository(db *pgxpool.Pool) intention.Repository {
	return &IntentionRepository{
		db: db,
	}
}

// Create implementa intention.Repository.Create
func (r *IntentionRepository) Create(ctx context.Context, i *intention.Intention) error {
	if err := i.Validate(); err != nil {
		return err
	}

	if i.ID == "" {
		i.ID = uuid.New().String()
	}

	fields, headers, queryParams, preconditions, err := marshalIntentionConfig(i)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO intentions (
			id, tenant_id, agent_id, tool_name, description, type, fields,
			method, url, headers, body, query_params, preconditions,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)`,
		i.ID, i.TenantID, i.AgentID, i.ToolName, i.Description, i.Type,
		fields, i.Method, i.URL, headers, i.Body, queryParams,
		preconditions, i.CreatedAt, i.UpdatedAt)

	if err != nil {
		return fmt.Errorf("erro ao criar intenção: %w", err)
	}

	return nil
}

// FindByID implementa intention.Repository.FindByID
func (r *IntentionRepository) FindByID(ctx context.Context, id string) (*intention.Intention, error) {
	row := r.db.QueryRow(ctx,
		`SELECT
			id, tenant_id, agent_id, tool_name, description, type, fields,
			method, url, headers, body, query_params, preconditions,
			created_at, updated_at
		FROM intentions WHERE id = $1`,
		id)

	i, err := scanIntention(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIntentionNotFound
		}
		return nil, fmt.Errorf("erro ao buscar intenção: %w", err)
	}

	return i, nil
}

// FindByAgent implementa intention.Repository.FindByAgent
func (r *IntentionRepository) FindByAgent(ctx context.Context, agentID string) ([]*intention.Intention, error) {
	rows, err := r.db.Query(ctx,
		`SELECT
			id, tenant_id, agent_id, tool_name, description, type, fields,
			method, url, headers, body, query_params, preconditions,
			created_at, updated_at
		FROM intentions WHERE agent_id = $1
		ORDER BY created_at`,
		agentID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar intenções: %w", err)
	}
	defer rows.Close()

	var intentions []*intention.Intention
	for rows.Next() {
		i, err := scanIntention(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler intenção: %w", err)
		}
		intentions = append(intentions, i)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao ler linhas: %w", err)
	}

	return intentions, nil
}

// Update implementa intention.Repository.Update
func (r *IntentionRepository) Update(ctx context.Context, i *intention.Intention) error {
	if err := i.Validate(); err != nil {
		return err
	}

	fields, headers, queryParams, preconditions, err := marshalIntentionConfig(i)
	if err != nil {
		return err
	}

	i.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx,
		`UPDATE intentions SET
			tool_name = $2, description = $3, type = $4, fields = $5,
			method = $6, url = $7, headers = $8, body = $9,
			query_params = $10, preconditions = $11, updated_at = $12
		WHERE id = $1`,
		i.ID, i.ToolName, i.Description, i.Type, fields, i.Method, i.URL,
		headers, i.Body, queryParams, preconditions, i.UpdatedAt)

	if err != nil {
		return fmt.Errorf("erro ao atualizar intenção: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrIntentionNotFound
	}

	return nil
}

// Delete implementa intention.Repository.Delete
func (r *IntentionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM intentions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("erro ao remover intenção: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrIntentionNotFound
	}

	return nil
}

// CountByAgent implementa intention.Repository.CountByAgent
func (r *IntentionRepository) CountByAgent(ctx context.Context, agentID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM intentions WHERE agent_id = $1`, agentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("erro ao contar intenções: %w", err)
	}

	return count, nil
}

func marshalIntentionConfig(i *intention.Intention) (fields, headers, queryParams, preconditions []byte, err error) {
	fields, err = json.Marshal(i.Fields)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("erro ao converter campos para JSON: %w", err)
	}
	headers, err = json.Marshal(i.Headers)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("erro ao converter headers para JSON: %w", err)
	}
	queryParams, err = json.Marshal(i.QueryParams)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("erro ao converter query params para JSON: %w", err)
	}
	preconditions, err = json.Marshal(i.Preconditions)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("erro ao converter precondições para JSON: %w", err)
	}
	return fields, headers, queryParams, preconditions, nil
}

func scanIntention(row pgx.Row) (*intention.Intention, error) {
	var i intention.Intention
	var fieldsJSON, headersJSON, queryParamsJSON, preconditionsJSON []byte

	err := row.Scan(
		&i.ID, &i.TenantID, &i.AgentID, &i.ToolName, &i.Description,
		&i.Type, &fieldsJSON, &i.Method, &i.URL, &headersJSON, &i.Body,
		&queryParamsJSON, &preconditionsJSON, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &i.Fields); err != nil {
			return nil, fmt.Errorf("erro ao converter campos: %w", err)
		}
	}
	if len(headersJSON) > 0 {
		if err := json.Unmarshal(headersJSON, &i.Headers); err != nil {
			return nil, fmt.Errorf("erro ao converter headers: %w", err)
		}
	}
	if len(queryParamsJSON) > 0 {
		if err := json.Unmarshal(queryParamsJSON, &i.QueryParams); err != nil {
			return nil, fmt.Errorf("erro ao converter query params: %w", err)
		}
	}
	if len(preconditionsJSON) > 0 {
		if err := json.Unmarshal(preconditionsJSON, &i.Preconditions); err != nil {
			return nil, fmt.Errorf("erro ao converter precondições: %w", err)
		}
	}

	return &i, nil
}
