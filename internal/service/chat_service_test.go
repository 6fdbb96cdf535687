package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusvb/atendai/internal/domain/agent"
	"github.com/matheusvb/atendai/internal/domain/chat"
	"github.com/matheusvb/atendai/internal/domain/intention"
	"github.com/matheusvb/atendai/pkg/engine"
	"github.com/matheusvb/atendai/pkg/llm"
	"github.com/matheusvb/atendai/pkg/logger"
)

type fakeAgentRepo struct {
	agent *agent.Agent
}

func (f *fakeAgentRepo) Create(ctx context.Context, a *agent.Agent) error { return nil }
func (f *fakeAgentRepo) FindByID(ctx context.Context, id string) (*agent.Agent, error) {
	return f.agent, nil
}
func (f *fakeAgentRepo) FindByTenant(ctx context.Context, tenantID string) ([]*agent.Agent, error) {
	return []*agent.Agent{f.agent}, nil
}
func (f *fakeAgentRepo) Update(ctx context.Context, a *agent.Agent) error { return nil }
func (f *fakeAgentRepo) UpdateGoogleCredential(ctx context.Context, id string, cred agent.GoogleCredential) error {
	return nil
}
func (f *fakeAgentRepo) Delete(ctx context.Context, id string) error { return nil }

type fakeChatRepo struct {
	chat     *chat.Chat
	history  []chat.Message
	saved    []chat.Message
	statuses map[string]chat.Status
}

func (f *fakeChatRepo) CreateChat(ctx context.Context, c *chat.Chat) error {
	f.chat = c
	return nil
}
func (f *fakeChatRepo) FindChatByID(ctx context.Context, id string) (*chat.Chat, error) {
	if f.chat == nil {
		return nil, chat.ErrNotFound
	}
	return f.chat, nil
}
func (f *fakeChatRepo) FindChatByContact(ctx context.Context, agentID, contactPhone string) (*chat.Chat, error) {
	if f.chat == nil {
		return nil, chat.ErrNotFound
	}
	return f.chat, nil
}
func (f *fakeChatRepo) UpdateChatStatus(ctx context.Context, id string, status chat.Status) error {
	if f.statuses == nil {
		f.statuses = make(map[string]chat.Status)
	}
	f.statuses[id] = status
	return nil
}
func (f *fakeChatRepo) SaveMessage(ctx context.Context, m *chat.Message) error {
	f.saved = append(f.saved, *m)
	return nil
}
func (f *fakeChatRepo) GetHistory(ctx context.Context, chatID string, limit, offset int) ([]chat.Message, error) {
	return f.history, nil
}
func (f *fakeChatRepo) CountMessages(ctx context.Context, chatID string) (int, error) {
	return len(f.history) + len(f.saved), nil
}

type fakeIntentionRepo struct {
	intentions []*intention.Intention
}

func (f *fakeIntentionRepo) Create(ctx context.Context, i *intention.Intention) error { return nil }
func (f *fakeIntentionRepo) FindByID(ctx context.Context, id string) (*intention.Intention, error) {
	return nil, nil
}
func (f *fakeIntentionRepo) FindByAgent(ctx context.Context, agentID string) ([]*intention.Intention, error) {
	return f.intentions, nil
}
func (f *fakeIntentionRepo) Update(ctx context.Context, i *intention.Intention) error { return nil }
func (f *fakeIntentionRepo) Delete(ctx context.Context, id string) error              { return nil }
func (f *fakeIntentionRepo) CountByAgent(ctx context.Context, agentID string) (int, error) {
	return len(f.intentions), nil
}

type fakeStore struct {
	pending map[string]*engine.PendingState
	locked  map[string]bool

	// busy força AcquireChatLock a falhar, simulando um turno em andamento
	busy bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pending: make(map[string]*engine.PendingState),
		locked:  make(map[string]bool),
	}
}

func (f *fakeStore) SavePending(ctx context.Context, chatID string, state *engine.PendingState) error {
	f.pending[chatID] = state
	return nil
}
func (f *fakeStore) LoadPending(ctx context.Context, chatID string) (*engine.PendingState, error) {
	return f.pending[chatID], nil
}
func (f *fakeStore) ClearPending(ctx context.Context, chatID string) error {
	delete(f.pending, chatID)
	return nil
}
func (f *fakeStore) AcquireChatLock(ctx context.Context, chatID string, ttl time.Duration) (bool, error) {
	if f.busy {
		return false, nil
	}
	f.locked[chatID] = true
	return true, nil
}
func (f *fakeStore) ReleaseChatLock(ctx context.Context, chatID string) error {
	delete(f.locked, chatID)
	return nil
}
func (f *fakeStore) Ping(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                   { return nil }

type fakeLLM struct {
	toolResult       *llm.ToolResult
	completeResponse string
}

func (f *fakeLLM) ChatWithTools(ctx context.Context, prompt string, tools []llm.ToolSchema, model string) (*llm.ToolResult, error) {
	return f.toolResult, nil
}

func (f *fakeLLM) Complete(ctx context.Context, system, user, model string) (string, error) {
	return f.completeResponse, nil
}

func newService(client *fakeLLM, chats *fakeChatRepo, intentions []*intention.Intention, store *fakeStore) *ChatService {
	log := logger.NewNopLogger()
	eng := engine.New(
		engine.NewDetector(client, log),
		engine.NewExecutor(nil, nil, nil, log),
		engine.NewComposer(client, log),
		log,
	)
	return NewChatService(
		&fakeAgentRepo{agent: &agent.Agent{ID: "ag-1", Status: agent.StatusActive, Persona: "Você é a Lia."}},
		chats,
		&fakeIntentionRepo{intentions: intentions},
		eng,
		client,
		store,
		nil,
		log,
	)
}

func inbound() *InboundMessage {
	return &InboundMessage{
		TenantID:     "t-1",
		AgentID:      "ag-1",
		ContactPhone: "+5511999990000",
		ContactName:  "Ana",
		Content:      "oi, tudo bem?",
	}
}

func TestHandleMessageFreeForm(t *testing.T) {
	client := &fakeLLM{toolResult: &llm.ToolResult{}, completeResponse: "Oi Ana! Tudo ótimo, como posso ajudar?"}
	chats := &fakeChatRepo{}
	store := newFakeStore()

	s := newService(client, chats, nil, store)

	reply, err := s.HandleMessage(context.Background(), inbound())
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, "Oi Ana! Tudo ótimo, como posso ajudar?", reply.Content)
	assert.Nil(t, reply.Audio)

	// Cria o chat do contato e persiste os dois lados da conversa
	require.NotNil(t, chats.chat)
	assert.Equal(t, chat.StatusOpen, chats.chat.Status)
	require.Len(t, chats.saved, 2)
	assert.Equal(t, chat.RoleUser, chats.saved[0].Role)
	assert.Equal(t, chat.RoleAssistant, chats.saved[1].Role)

	// Lock liberado ao final do turno
	assert.Empty(t, store.locked)
}

func TestHandleMessageAgentInactive(t *testing.T) {
	client := &fakeLLM{toolResult: &llm.ToolResult{}}
	s := newService(client, &fakeChatRepo{}, nil, newFakeStore())
	s.agents = &fakeAgentRepo{agent: &agent.Agent{ID: "ag-1", Status: agent.StatusInactive}}

	_, err := s.HandleMessage(context.Background(), inbound())
	assert.ErrorIs(t, err, ErrAgentInactive)
}

func TestHandleMessageChatBusy(t *testing.T) {
	client := &fakeLLM{toolResult: &llm.ToolResult{}}
	store := newFakeStore()
	store.busy = true

	s := newService(client, &fakeChatRepo{}, nil, store)

	_, err := s.HandleMessage(context.Background(), inbound())
	assert.ErrorIs(t, err, ErrChatBusy)
}

func TestHandleMessageTransferredChatOnlyPersists(t *testing.T) {
	client := &fakeLLM{toolResult: &llm.ToolResult{}, completeResponse: "não deveria responder"}
	chats := &fakeChatRepo{
		chat: &chat.Chat{ID: "c-1", Status: chat.StatusTransferred},
	}

	s := newService(client, chats, nil, newFakeStore())

	reply, err := s.HandleMessage(context.Background(), inbound())
	require.NoError(t, err)
	assert.Nil(t, reply)

	require.Len(t, chats.saved, 1)
	assert.Equal(t, chat.RoleUser, chats.saved[0].Role)
}

func TestHandleMessageSavesPendingState(t *testing.T) {
	client := &fakeLLM{
		toolResult: &llm.ToolResult{
			ToolCall: &llm.ToolCall{Name: "book_meeting", Arguments: `{}`},
		},
		completeResponse: "Pra qual dia você quer marcar?",
	}
	chats := &fakeChatRepo{chat: &chat.Chat{ID: "c-1", Status: chat.StatusOpen}}
	store := newFakeStore()

	intentions := []*intention.Intention{{
		ID:       "int-1",
		ToolName: "book_meeting",
		Type:     intention.TypeWebhook,
		Fields: []intention.Field{
			{Name: "Data", JSONName: "date", Required: true},
		},
	}}

	s := newService(client, chats, intentions, store)

	reply, err := s.HandleMessage(context.Background(), inbound())
	require.NoError(t, err)
	assert.Equal(t, "Pra qual dia você quer marcar?", reply.Content)

	pending := store.pending["c-1"]
	require.NotNil(t, pending)
	assert.Equal(t, "int-1", pending.IntentionID)
	assert.Equal(t, []string{"date"}, pending.Missing)
}

func TestHandleMessageLocalHandlerTransfers(t *testing.T) {
	client := &fakeLLM{
		toolResult: &llm.ToolResult{
			ToolCall: &llm.ToolCall{Name: "transfer_to_human", Arguments: `{}`},
		},
		completeResponse: "Claro, já vou te passar para a nossa equipe!",
	}
	chats := &fakeChatRepo{chat: &chat.Chat{ID: "c-1", Status: chat.StatusOpen}}
	store := newFakeStore()

	intentions := []*intention.Intention{{
		ID:       "int-1",
		ToolName: "transfer_to_human",
		Type:     intention.TypeLocal,
		Fields:   []intention.Field{},
	}}

	s := newService(client, chats, intentions, store)
	s.RegisterLocalHandler("transfer_to_human", func(ctx context.Context, chatID string, fields map[string]interface{}) (interface{}, error) {
		if err := s.TransferToHuman(ctx, chatID); err != nil {
			return nil, err
		}
		return map[string]interface{}{"transferred": true}, nil
	})

	reply, err := s.HandleMessage(context.Background(), inbound())
	require.NoError(t, err)
	assert.Equal(t, "Claro, já vou te passar para a nossa equipe!", reply.Content)
	assert.Equal(t, chat.StatusTransferred, chats.statuses["c-1"])
}

func TestTransferToHumanClearsPending(t *testing.T) {
	client := &fakeLLM{}
	chats := &fakeChatRepo{}
	store := newFakeStore()
	store.pending["c-1"] = &engine.PendingState{IntentionID: "int-1"}

	s := newService(client, chats, nil, store)

	require.NoError(t, s.TransferToHuman(context.Background(), "c-1"))
	assert.Equal(t, chat.StatusTransferred, chats.statuses["c-1"])
	assert.Nil(t, store.pending["c-1"])
}
