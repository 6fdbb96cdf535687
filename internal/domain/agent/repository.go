package agent

import (
	"context"
)

// Repository define a interface para operações de repositório de agentes
type Repository interface {
	// Create cria um novo agente
	Create(ctx context.Context, a *Agent) error

	// FindByID busca um agente pelo ID
	FindByID(ctx context.Context, id string) (*Agent, error)

	// FindByTenant lista os agentes de um tenant
	FindByTenant(ctx context.Context, tenantID string) ([]*Agent, error)

	// Update atualiza os dados de um agente existente
	Update(ctx context.Context, a *Agent) error

	// UpdateGoogleCredential atualiza apenas a credencial Google do agente
	UpdateGoogleCredential(ctx context.Context, id string, cred GoogleCredential) error

	// Delete remove um agente
	Delete(ctx context.Context, id string) error
}
