// Package service orquestra o atendimento: persistência da conversa,
// turno do motor de intenções e resposta final (texto ou voz).
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matheusvb/atendai/internal/domain/agent"
	"github.com/matheusvb/atendai/internal/domain/chat"
	"github.com/matheusvb/atendai/internal/domain/intention"
	"github.com/matheusvb/atendai/pkg/audio"
	"github.com/matheusvb/atendai/pkg/engine"
	"github.com/matheusvb/atendai/pkg/llm"
	"github.com/matheusvb/atendai/pkg/logger"
	"github.com/matheusvb/atendai/pkg/memory"
)

var (
	// ErrChatBusy indica que já existe um turno em processamento para o chat
	ErrChatBusy = errors.New("chat já possui uma mensagem em processamento")

	// ErrAgentInactive indica que o agente está desativado
	ErrAgentInactive = errors.New("agente não está ativo")
)

const (
	historyLimit = 30
	chatLockTTL  = 2 * time.Minute
)

// LocalHandlerFunc executa uma intenção do tipo LOCAL no contexto do chat
// em que ela foi detectada
type LocalHandlerFunc func(ctx context.Context, chatID string, fields map[string]interface{}) (interface{}, error)

// ChatService processa mensagens recebidas de contatos e produz a resposta
// do agente. Garante no máximo um turno em andamento por chat.
type ChatService struct {
	agents        agent.Repository
	chats         chat.Repository
	intentions    intention.Repository
	engine        *engine.Engine
	llm           llm.Client
	store         memory.Store
	synthesizer   audio.Synthesizer
	logger        logger.Logger
	localHandlers map[string]LocalHandlerFunc
}

// NewChatService cria o serviço de atendimento
func NewChatService(
	agents agent.Repository,
	chats chat.Repository,
	intentions intention.Repository,
	eng *engine.Engine,
	llmClient llm.Client,
	store memory.Store,
	synthesizer audio.Synthesizer,
	log logger.Logger,
) *ChatService {
	return &ChatService{
		agents:        agents,
		chats:         chats,
		intentions:    intentions,
		engine:        eng,
		llm:           llmClient,
		store:         store,
		synthesizer:   synthesizer,
		logger:        log,
		localHandlers: make(map[string]LocalHandlerFunc),
	}
}

// RegisterLocalHandler registra o executor de uma intenção LOCAL pelo nome
// da ferramenta. Deve ser chamado durante o bootstrap, antes de processar
// mensagens.
func (s *ChatService) RegisterLocalHandler(toolName string, handler LocalHandlerFunc) {
	s.localHandlers[toolName] = handler
}

// bindLocalHandlers vincula os handlers registrados às intenções LOCAL do
// agente, fechando sobre o chat corrente
func (s *ChatService) bindLocalHandlers(intentions []*intention.Intention, chatID string) {
	for _, intn := range intentions {
		if intn.Type != intention.TypeLocal {
			continue
		}
		handler, ok := s.localHandlers[intn.ToolName]
		if !ok {
			continue
		}
		h := handler
		intn.BindLocalHandler(func(ctx context.Context, fields map[string]interface{}) (interface{}, error) {
			return h(ctx, chatID, fields)
		})
	}
}

// InboundMessage é uma mensagem recebida do canal (WhatsApp)
type InboundMessage struct {
	TenantID     string `json:"tenant_id"`
	AgentID      string `json:"agent_id"`
	ContactPhone string `json:"contact_phone"`
	ContactName  string `json:"contact_name"`
	Content      string `json:"content"`
}

// Reply é a resposta produzida para o contato
type Reply struct {
	ChatID  string `json:"chat_id"`
	Content string `json:"content"`

	// Audio é o áudio sintetizado quando o agente tem voz habilitada;
	// nil quando a resposta é somente texto
	Audio []byte `json:"audio,omitempty"`
}

// HandleMessage processa uma mensagem de ponta a ponta e retorna a resposta
func (s *ChatService) HandleMessage(ctx context.Context, msg *InboundMessage) (*Reply, error) {
	a, err := s.agents.FindByID(ctx, msg.AgentID)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar agente: %w", err)
	}
	if a.Status != agent.StatusActive {
		return nil, ErrAgentInactive
	}

	c, err := s.resolveChat(ctx, msg)
	if err != nil {
		return nil, err
	}

	// Chats transferidos para humanos não recebem resposta automática
	if c.Status == chat.StatusTransferred {
		s.logger.Debug("Chat transferido, mensagem apenas persistida", "chat_id", c.ID)
		if err := s.chats.SaveMessage(ctx, &chat.Message{ChatID: c.ID, Role: chat.RoleUser, Content: msg.Content}); err != nil {
			return nil, err
		}
		return nil, nil
	}

	locked, err := s.store.AcquireChatLock(ctx, c.ID, chatLockTTL)
	if err != nil {
		return nil, fmt.Errorf("erro ao adquirir lock do chat: %w", err)
	}
	if !locked {
		return nil, ErrChatBusy
	}
	defer func() {
		if err := s.store.ReleaseChatLock(context.WithoutCancel(ctx), c.ID); err != nil {
			s.logger.Warn("Falha ao liberar lock do chat", "chat_id", c.ID, "error", err)
		}
	}()

	history, err := s.loadHistory(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	if err := s.chats.SaveMessage(ctx, &chat.Message{ChatID: c.ID, Role: chat.RoleUser, Content: msg.Content}); err != nil {
		return nil, fmt.Errorf("erro ao salvar mensagem recebida: %w", err)
	}

	intentions, err := s.intentions.FindByAgent(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar intenções do agente: %w", err)
	}
	s.bindLocalHandlers(intentions, c.ID)

	pending, err := s.store.LoadPending(ctx, c.ID)
	if err != nil {
		s.logger.Warn("Falha ao carregar estado pendente", "chat_id", c.ID, "error", err)
	}

	result, err := s.engine.ProcessTurn(ctx, &engine.TurnRequest{
		Agent:       a,
		Chat:        c,
		History:     history,
		Intentions:  intentions,
		UserMessage: msg.Content,
		Pending:     pending,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao processar turno: %w", err)
	}

	response := result.Response
	if result.FreeForm {
		response, err = s.freeFormReply(ctx, a, history, msg.Content)
		if err != nil {
			return nil, err
		}
	}

	if err := s.syncPendingState(ctx, c.ID, result); err != nil {
		s.logger.Warn("Falha ao sincronizar estado pendente", "chat_id", c.ID, "error", err)
	}

	if err := s.chats.SaveMessage(ctx, &chat.Message{ChatID: c.ID, Role: chat.RoleAssistant, Content: response}); err != nil {
		return nil, fmt.Errorf("erro ao salvar resposta: %w", err)
	}

	reply := &Reply{ChatID: c.ID, Content: response}

	if a.VoiceEnabled && s.synthesizer != nil {
		audioData, err := s.synthesizer.Synthesize(ctx, response, a.VoiceID)
		if err != nil {
			// Voz é melhor esforço; a resposta em texto sempre sai
			s.logger.Warn("Falha ao sintetizar áudio da resposta", "chat_id", c.ID, "error", err)
		} else {
			reply.Audio = audioData
		}
	}

	return reply, nil
}

// GetHistory retorna o histórico paginado de um chat
func (s *ChatService) GetHistory(ctx context.Context, chatID string, limit, offset int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = historyLimit
	}
	return s.chats.GetHistory(ctx, chatID, limit, offset)
}

// TransferToHuman marca o chat como assumido por um atendente humano
func (s *ChatService) TransferToHuman(ctx context.Context, chatID string) error {
	if err := s.chats.UpdateChatStatus(ctx, chatID, chat.StatusTransferred); err != nil {
		return err
	}
	if err := s.store.ClearPending(ctx, chatID); err != nil {
		s.logger.Warn("Falha ao limpar estado pendente na transferência", "chat_id", chatID, "error", err)
	}
	return nil
}

// resolveChat localiza o chat aberto do contato ou cria um novo
func (s *ChatService) resolveChat(ctx context.Context, msg *InboundMessage) (*chat.Chat, error) {
	c, err := s.chats.FindChatByContact(ctx, msg.AgentID, msg.ContactPhone)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, chat.ErrNotFound) {
		return nil, fmt.Errorf("erro ao buscar chat do contato: %w", err)
	}

	c, err = chat.NewChat(msg.TenantID, msg.AgentID, msg.ContactPhone, msg.ContactName)
	if err != nil {
		return nil, err
	}
	if err := s.chats.CreateChat(ctx, c); err != nil {
		return nil, fmt.Errorf("erro ao criar chat: %w", err)
	}

	return c, nil
}

// loadHistory carrega o histórico em ordem cronológica
func (s *ChatService) loadHistory(ctx context.Context, chatID string) ([]chat.Message, error) {
	messages, err := s.chats.GetHistory(ctx, chatID, historyLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar histórico: %w", err)
	}

	// O repositório retorna do mais novo para o mais antigo
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// syncPendingState grava ou limpa o estado de slots pendentes conforme o turno
func (s *ChatService) syncPendingState(ctx context.Context, chatID string, result *engine.TurnResult) error {
	if result.Pending != nil {
		return s.store.SavePending(ctx, chatID, result.Pending)
	}
	if result.Executed {
		return s.store.ClearPending(ctx, chatID)
	}
	return nil
}

// freeFormReply gera a resposta livre do assistente quando nenhuma intenção
// foi detectada
func (s *ChatService) freeFormReply(ctx context.Context, a *agent.Agent, history []chat.Message, userMessage string) (string, error) {
	var system strings.Builder
	if a.Persona != "" {
		system.WriteString(a.Persona)
		system.WriteString("\n")
	}
	if a.CommunicationGuide != "" {
		system.WriteString("Estilo de comunicação: ")
		system.WriteString(a.CommunicationGuide)
		system.WriteString("\n")
	}
	if a.GoalGuide != "" {
		system.WriteString("Objetivo do atendimento: ")
		system.WriteString(a.GoalGuide)
		system.WriteString("\n")
	}
	system.WriteString("Responda sempre no mesmo idioma da última mensagem do usuário.")

	var user strings.Builder
	if len(history) > 0 {
		user.WriteString("Histórico da conversa:\n")
		for _, m := range history {
			user.WriteString(fmt.Sprintf("%s: %s\n", m.Role, m.Content))
		}
		user.WriteString("\n")
	}
	user.WriteString("Nova mensagem do usuário: ")
	user.WriteString(userMessage)

	response, err := s.llm.Complete(ctx, system.String(), user.String(), a.Model)
	if err != nil {
		return "", fmt.Errorf("erro ao gerar resposta livre: %w", err)
	}

	return response, nil
}
