package intention

import (
	"context"
)

// Repository define a interface para operações de repositório de intenções
type Repository interface {
	// Create cria uma nova intenção
	Create(ctx context.Context, i *Intention) error

	// FindByID busca uma intenção pelo ID
	FindByID(ctx context.Context, id string) (*Intention, error)

	// FindByAgent lista as intenções configuradas para um agente
	FindByAgent(ctx context.Context, agentID string) ([]*Intention, error)

	// Update atualiza os dados de uma intenção existente
	Update(ctx context.Context, i *Intention) error

	// Delete remove uma intenção
	Delete(ctx context.Context, id string) error

	// CountByAgent conta quantas intenções existem para um agente
	CountByAgent(ctx context.Context, agentID string) (int, error)
}
