// Package transport liga o gateway de WhatsApp ao serviço de atendimento
// via NATS request/reply.
package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/matheusvb/atendai/internal/service"
	"github.com/matheusvb/atendai/pkg/logger"
)

const (
	// SubjectInbound é o subject em que o gateway publica mensagens recebidas
	SubjectInbound = "atendai.messages.inbound"

	turnTimeout = 90 * time.Second
)

// NATSTransport recebe mensagens do gateway e responde com a saída do agente
type NATSTransport struct {
	conn    *nats.Conn
	service *service.ChatService
	logger  logger.Logger

	sub *nats.Subscription
}

// NewNATSTransport conecta ao servidor NATS
func NewNATSTransport(natsURL string, svc *service.ChatService, log logger.Logger) (*NATSTransport, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name("atendai-api"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar no NATS: %w", err)
	}

	log.Info("Conectado ao NATS", "url", natsURL)

	return &NATSTransport{
		conn:    conn,
		service: svc,
		logger:  log,
	}, nil
}

// Start assina o subject de mensagens recebidas
func (t *NATSTransport) Start() error {
	sub, err := t.conn.Subscribe(SubjectInbound, t.handleInbound)
	if err != nil {
		return fmt.Errorf("erro ao assinar %s: %w", SubjectInbound, err)
	}
	t.sub = sub

	t.logger.Info("Assinatura NATS ativa", "subject", SubjectInbound)
	return nil
}

// replyPayload é a resposta publicada de volta ao gateway
type replyPayload struct {
	ChatID      string `json:"chat_id,omitempty"`
	Content     string `json:"content,omitempty"`
	AudioBase64 string `json:"audio_base64,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (t *NATSTransport) handleInbound(msg *nats.Msg) {
	var inbound service.InboundMessage
	if err := json.Unmarshal(msg.Data, &inbound); err != nil {
		t.logger.Error("Mensagem NATS inválida", "error", err)
		t.respond(msg, &replyPayload{Error: "formato de mensagem inválido"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	reply, err := t.service.HandleMessage(ctx, &inbound)
	if err != nil {
		if errors.Is(err, service.ErrChatBusy) {
			// O gateway reenvia depois; não é erro do ponto de vista do contato
			t.logger.Debug("Turno descartado, chat ocupado", "contact", inbound.ContactPhone)
			t.respond(msg, &replyPayload{Error: service.ErrChatBusy.Error()})
			return
		}
		t.logger.Error("Erro ao processar mensagem", "contact", inbound.ContactPhone, "error", err)
		t.respond(msg, &replyPayload{Error: err.Error()})
		return
	}

	if reply == nil {
		// Chat transferido para humano: sem resposta automática
		t.respond(msg, &replyPayload{})
		return
	}

	payload := &replyPayload{ChatID: reply.ChatID, Content: reply.Content}
	if len(reply.Audio) > 0 {
		payload.AudioBase64 = base64.StdEncoding.EncodeToString(reply.Audio)
	}
	t.respond(msg, payload)
}

func (t *NATSTransport) respond(msg *nats.Msg, payload *replyPayload) {
	if msg.Reply == "" {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("Erro ao serializar resposta NATS", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		t.logger.Error("Erro ao responder mensagem NATS", "error", err)
	}
}

// Close desfaz a assinatura e fecha a conexão
func (t *NATSTransport) Close() error {
	if t.sub != nil {
		if err := t.sub.Unsubscribe(); err != nil {
			t.logger.Warn("Erro ao cancelar assinatura NATS", "error", err)
		}
	}
	if t.conn != nil {
		t.conn.Close()
		t.logger.Info("Conexão NATS encerrada")
	}
	return nil
}
