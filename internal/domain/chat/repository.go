package chat

import (
	"context"
)

// Repository define a interface para operações de repositório de chats e mensagens
type Repository interface {
	// CreateChat cria um novo chat
	CreateChat(ctx context.Context, c *Chat) error

	// FindChatByID busca um chat pelo ID
	FindChatByID(ctx context.Context, id string) (*Chat, error)

	// FindChatByContact busca o chat aberto de um contato para um agente
	FindChatByContact(ctx context.Context, agentID, contactPhone string) (*Chat, error)

	// UpdateChatStatus atualiza o status de um chat
	UpdateChatStatus(ctx context.Context, id string, status Status) error

	// SaveMessage persiste uma mensagem do chat
	SaveMessage(ctx context.Context, m *Message) error

	// GetHistory retorna as mensagens de um chat em ordem cronológica inversa
	GetHistory(ctx context.Context, chatID string, limit, offset int) ([]Message, error)

	// CountMessages conta as mensagens de um chat
	CountMessages(ctx context.Context, chatID string) (int, error)
}
