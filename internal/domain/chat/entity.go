package chat

import (
	"errors"
	"time"
)

var (
	ErrEmptyContactPhone = errors.New("telefone do contato não pode ser vazio")
	ErrNotFound          = errors.New("chat não encontrado")
)

// Status representa o estado do chat
type Status string

const (
	StatusOpen        Status = "open"
	StatusTransferred Status = "transferred" // Atendimento assumido por um humano
	StatusClosed      Status = "closed"
)

// Role identifica o autor de uma mensagem
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Chat representa uma conversa entre um contato e o agente
type Chat struct {
	ID           string            `json:"id"`
	TenantID     string            `json:"tenant_id"`
	AgentID      string            `json:"agent_id"`
	ContactPhone string            `json:"contact_phone"`
	ContactName  string            `json:"contact_name"`
	Status       Status            `json:"status"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Message representa uma mensagem trocada dentro de um chat
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	AudioURL  string    `json:"audio_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChat cria um novo chat para um contato
func NewChat(tenantID, agentID, contactPhone, contactName string) (*Chat, error) {
	if contactPhone == "" {
		return nil, ErrEmptyContactPhone
	}

	now := time.Now()
	return &Chat{
		TenantID:     tenantID,
		AgentID:      agentID,
		ContactPhone: contactPhone,
		ContactName:  contactName,
		Status:       StatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
