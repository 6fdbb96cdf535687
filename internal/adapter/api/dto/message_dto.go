package dto

import (
	"time"

	"github.com/matheusvb/atendai/internal/domain/chat"
)

// InboundMessageRequest representa uma mensagem recebida pelo webhook
type InboundMessageRequest struct {
	AgentID      string `json:"agent_id" binding:"required"`
	ContactPhone string `json:"contact_phone" binding:"required"`
	ContactName  string `json:"contact_name"`
	Content      string `json:"content" binding:"required"`
}

// ReplyResponse representa a resposta do agente a uma mensagem
type ReplyResponse struct {
	ChatID      string `json:"chat_id"`
	Content     string `json:"content"`
	AudioBase64 string `json:"audio_base64,omitempty"`
}

// MessageResponse representa uma mensagem do histórico
type MessageResponse struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	AudioURL  string    `json:"audio_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatHistoryResponse representa o histórico paginado de um chat
type ChatHistoryResponse struct {
	ChatID   string            `json:"chat_id"`
	Messages []MessageResponse `json:"messages"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// ToMessageResponse converte uma mensagem do domínio para DTO de resposta
func ToMessageResponse(m chat.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Role:      string(m.Role),
		Content:   m.Content,
		AudioURL:  m.AudioURL,
		CreatedAt: m.CreatedAt,
	}
}

// ToChatHistoryResponse converte o histórico para DTO de resposta
func ToChatHistoryResponse(chatID string, messages []chat.Message, page, pageSize int) ChatHistoryResponse {
	data := make([]MessageResponse, len(messages))
	for i, m := range messages {
		data[i] = ToMessageResponse(m)
	}

	return ChatHistoryResponse{
		ChatID:   chatID,
		Messages: data,
		Page:     page,
		PageSize: pageSize,
	}
}
