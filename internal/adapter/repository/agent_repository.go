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

	"github.com/matheusvb/atendai/internal/domain/agent"
)

// Erros específicos do repositório
var (
	ErrAgentDatabaseError = errors.New("erro de banco de dados")
)

// AgentRepository implementa a interface agent.Repository
type AgentRepository struct {
	db *pgxpool.Pool
}

// NewAgentRepository cria uma nova instância de AgentRepository
func NewAgentRepository(db *pgxpool.Pool) agent.Repository {
	return &AgentRepository{
		db: db,
	}
}

// Create implementa agent.Repository.Create
func (r *AgentRepository) Create(ctx context.Context, a *agent.Agent) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	availability, err := json.Marshal(a.Availability)
	if err != nil {
		return fmt.Errorf("erro ao converter disponibilidade para JSON: %w", err)
	}

	google, err := json.Marshal(a.Google)
	if err != nil {
		return fmt.Errorf("erro ao converter credencial Google para JSON: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO agents (
			id, tenant_id, name, status, persona, communication_guide,
			goal_guide, model, timezone_label, voice_enabled, voice_id,
			split_responses, response_delimiter, availability, google,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17
		)`,
		a.ID, a.TenantID, a.Name, a.Status, a.Persona, a.CommunicationGuide,
		a.GoalGuide, a.Model, a.TimezoneLabel, a.VoiceEnabled, a.VoiceID,
		a.SplitResponses, a.ResponseDelimiter, availability, google,
		a.CreatedAt, a.UpdatedAt)

	if err != nil {
		return fmt.Errorf("erro ao criar agente: %w", err)
	}

	return nil
}

// FindByID implementa agent.Repository.FindByID
func (r *AgentRepository) FindByID(ctx context.Context, id string) (*agent.Agent, error) {
	row := r.db.QueryRow(ctx,
		`SELECT
			id, tenant_id, name, status, persona, communication_guide,
			goal_guide, model, timezone_label, voice_enabled, voice_id,
			split_responses, response_delimiter, availability, google,
			created_at, updated_at
		FROM agents WHERE id = $1`,
		id)

	a, err := scanAgent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, agent.ErrNotFound
		}
		return nil, fmt.Errorf("erro ao buscar agente: %w", err)
	}

	return a, nil
}

// FindByTenant implementa agent.Repository.FindByTenant
func (r *AgentRepository) FindByTenant(ctx context.Context, tenantID string) ([]*agent.Agent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT
			id, tenant_id, name, status, persona, communication_guide,
			goal_guide, model, timezone_label, voice_enabled, voice_id,
			split_responses, response_delimiter, availability, google,
			created_at, updated_at
		FROM agents WHERE tenant_id = $1
		ORDER BY created_at`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar agentes: %w", err)
	}
	defer rows.Close()

	var agents []*agent.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler agente: %w", err)
		}
		agents = append(agents, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao ler linhas: %w", err)
	}

	return agents, nil
}

// Update implementa agent.Repository.Update
func (r *AgentRepository) Update(ctx context.Context, a *agent.Agent) error {
	availability, err := json.Marshal(a.Availability)
	if err != nil {
		return fmt.Errorf("erro ao converter disponibilidade para JSON: %w", err)
	}

	a.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx,
		`UPDATE agents SET
			name = $2, status = $3, persona = $4, communication_guide = $5,
			goal_guide = $6, model = $7, timezone_label = $8,
			voice_enabled = $9, voice_id = $10, split_responses = $11,
			response_delimiter = $12, availability = $13, updated_at = $14
		WHERE id = $1`,
		a.ID, a.Name, a.Status, a.Persona, a.CommunicationGuide,
		a.GoalGuide, a.Model, a.TimezoneLabel, a.VoiceEnabled, a.VoiceID,
		a.SplitResponses, a.ResponseDelimiter, availability, a.UpdatedAt)

	if err != nil {
		return fmt.Errorf("erro ao atualizar agente: %w", err)
	}
	if result.RowsAffected() == 0 {
		return agent.ErrNotFound
	}

	return nil
}

// UpdateGoogleCredential implementa agent.Repository.UpdateGoogleCredential
func (r *AgentRepository) UpdateGoogleCredential(ctx context.Context, id string, cred agent.GoogleCredential) error {
	google, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("erro ao converter credencial Google para JSON: %w", err)
	}

	result, err := r.db.Exec(ctx,
		`UPDATE agents SET google = $2, updated_at = $3 WHERE id = $1`,
		id, google, time.Now())
	if err != nil {
		return fmt.Errorf("erro ao atualizar credencial Google: %w", err)
	}
	if result.RowsAffected() == 0 {
		return agent.ErrNotFound
	}

	return nil
}

// Delete implementa agent.Repository.Delete
func (r *AgentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("erro ao remover agente: %w", err)
	}
	if result.RowsAffected() == 0 {
		return agent.ErrNotFound
	}

	return nil
}

func scanAgent(row pgx.Row) (*agent.Agent, error) {
	var a agent.Agent
	var availabilityJSON, googleJSON []byte

	err := row.Scan(
		&a.ID, &a.TenantID, &a.Name, &a.Status, &a.Persona,
		&a.CommunicationGuide, &a.GoalGuide, &a.Model, &a.TimezoneLabel,
		&a.VoiceEnabled, &a.VoiceID, &a.SplitResponses, &a.ResponseDelimiter,
		&availabilityJSON, &googleJSON, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(availabilityJSON) > 0 {
		if err := json.Unmarshal(availabilityJSON, &a.Availability); err != nil {
			return nil, fmt.Errorf("erro ao converter disponibilidade: %w", err)
		}
	}
	if len(googleJSON) > 0 {
		if err := json.Unmarshal(googleJSON, &a.Google); err != nil {
			return nil, fmt.Errorf("erro ao converter credencial Google: %w", err)
		}
	}

	return &a, nil
}
