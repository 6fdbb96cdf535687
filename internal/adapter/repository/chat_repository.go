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

	"github.com/matheusvb/atendai/internal/domain/chat"
)

// ChatRepository implementa a interface chat.Repository
type ChatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository cria uma nova instância de ChatRepository
func NewChatRepository(db *pgxpool.Pool) chat.Repository {
	return &ChatRepository{
		db: db,
	}
}

// CreateChat implementa chat.Repository.CreateChat
func (r *ChatRepository) CreateChat(ctx context.Context, c *chat.Chat) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("erro ao converter metadados para JSON: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO chats (
			id, tenant_id, agent_id, contact_phone, contact_name, status,
			metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.TenantID, c.AgentID, c.ContactPhone, c.ContactName,
		c.Status, metadata, c.CreatedAt, c.UpdatedAt)

	if err != nil {
		return fmt.Errorf("erro ao criar chat: %w", err)
	}

	return nil
}

// FindChatByID implementa chat.Repository.FindChatByID
func (r *ChatRepository) FindChatByID(ctx context.Context, id string) (*chat.Chat, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, tenant_id, agent_id, contact_phone, contact_name,
			status, metadata, created_at, updated_at
		FROM chats WHERE id = $1`,
		id)

	c, err := scanChat(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chat.ErrNotFound
		}
		return nil, fmt.Errorf("erro ao buscar chat: %w", err)
	}

	return c, nil
}

// FindChatByContact implementa chat.Repository.FindChatByContact.
// Retorna o chat aberto mais recente do contato com o agente.
func (r *ChatRepository) FindChatByContact(ctx context.Context, agentID, contactPhone string) (*chat.Chat, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, tenant_id, agent_id, contact_phone, contact_name,
			status, metadata, created_at, updated_at
		FROM chats
		WHERE agent_id = $1 AND contact_phone = $2 AND status = $3
		ORDER BY created_at DESC
		LIMIT 1`,
		agentID, contactPhone, chat.StatusOpen)

	c, err := scanChat(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chat.ErrNotFound
		}
		return nil, fmt.Errorf("erro ao buscar chat do contato: %w", err)
	}

	return c, nil
}

// UpdateChatStatus implementa chat.Repository.UpdateChatStatus
func (r *ChatRepository) UpdateChatStatus(ctx context.Context, id string, status chat.Status) error {
	result, err := r.db.Exec(ctx,
		`UPDATE chats SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now())
	if err != nil {
		return fmt.Errorf("erro ao atualizar status do chat: %w", err)
	}
	if result.RowsAffected() == 0 {
		return chat.ErrNotFound
	}

	return nil
}

// SaveMessage implementa chat.Repository.SaveMessage
func (r *ChatRepository) SaveMessage(ctx context.Context, m *chat.Message) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO messages (id, chat_id, role, content, audio_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.ChatID, m.Role, m.Content, m.AudioURL, m.CreatedAt)

	if err != nil {
		return fmt.Errorf("erro ao salvar mensagem: %w", err)
	}

	return nil
}

// GetHistory implementa chat.Repository.GetHistory
func (r *ChatRepository) GetHistory(ctx context.Context, chatID string, limit, offset int) ([]chat.Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, chat_id, role, content, audio_url, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		chatID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar histórico: %w", err)
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		var m chat.Message
		err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.AudioURL, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler mensagem: %w", err)
		}
		messages = append(messages, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao ler linhas: %w", err)
	}

	return messages, nil
}

// CountMessages implementa chat.Repository.CountMessages
func (r *ChatRepository) CountMessages(ctx context.Context, chatID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE chat_id = $1`, chatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("erro ao contar mensagens: %w", err)
	}

	return count, nil
}

func scanChat(row pgx.Row) (*chat.Chat, error) {
	var c chat.Chat
	var metadataJSON []byte

	err := row.Scan(
		&c.ID, &c.TenantID, &c.AgentID, &c.ContactPhone, &c.ContactName,
		&c.Status, &metadataJSON, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &c.Metadata); err != nil {
			return nil, fmt.Errorf("erro ao converter metadados: %w", err)
		}
	}

	return &c, nil
}
