package engine

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusvb/atendai/internal/domain/agent"
	"github.com/matheusvb/atendai/internal/domain/intention"
	"github.com/matheusvb/atendai/pkg/llm"
	"github.com/matheusvb/atendai/pkg/logger"
)

func newTestEngine(client *fakeLLM, httpClient *http.Client) *Engine {
	log := logger.NewNopLogger()
	return New(
		NewDetector(client, log),
		NewExecutor(httpClient, nil, nil, log),
		NewComposer(client, log),
		log,
	)
}

func turnAgent() *agent.Agent {
	return &agent.Agent{
		ID:     "ag-1",
		Name:   "Lia",
		Status: agent.StatusActive,
		Model:  "gpt-4o-mini",
	}
}

func TestProcessTurnFreeForm(t *testing.T) {
	client := &fakeLLM{toolResult: &llm.ToolResult{}}
	eng := newTestEngine(client, nil)

	result, err := eng.ProcessTurn(context.Background(), &TurnRequest{
		Agent:       turnAgent(),
		UserMessage: "bom dia!",
	})

	require.NoError(t, err)
	assert.True(t, result.FreeForm)
	assert.Empty(t, result.Response)
	assert.Nil(t, result.Pending)
}

func TestProcessTurnFallbackMessage(t *testing.T) {
	client := &fakeLLM{toolResult: &llm.ToolResult{Message: "Posso te ajudar com agendamentos!"}}
	eng := newTestEngine(client, nil)

	result, err := eng.ProcessTurn(context.Background(), &TurnRequest{
		Agent:       turnAgent(),
		UserMessage: "o que você faz?",
	})

	require.NoError(t, err)
	assert.False(t, result.FreeForm)
	assert.Equal(t, "Posso te ajudar com agendamentos!", result.Response)
	assert.False(t, result.Executed)
}

func TestProcessTurnMissingFieldsAsksClarification(t *testing.T) {
	client := &fakeLLM{
		toolResult: &llm.ToolResult{
			ToolCall: &llm.ToolCall{Name: "book_meeting", Arguments: `{"email": "ana@example.com"}`},
		},
		completeResponse: "Pra qual dia você quer marcar?",
	}
	eng := newTestEngine(client, nil)

	intn := &intention.Intention{
		ID:          "int-1",
		ToolName:    "book_meeting",
		Description: "agendar uma consulta",
		Type:        intention.TypeWebhook,
		URL:         "http://example.invalid",
		Fields: []intention.Field{
			{Name: "E-mail", JSONName: "email", Required: true},
			{Name: "Data", JSONName: "date", Required: true},
		},
	}

	result, err := eng.ProcessTurn(context.Background(), &TurnRequest{
		Agent:       turnAgent(),
		Intentions:  []*intention.Intention{intn},
		UserMessage: "quero marcar consulta",
	})

	require.NoError(t, err)
	assert.Equal(t, "Pra qual dia você quer marcar?", result.Response)
	assert.False(t, result.Executed)

	require.NotNil(t, result.Pending)
	assert.Equal(t, "int-1", result.Pending.IntentionID)
	assert.Equal(t, []string{"date"}, result.Pending.Missing)
	assert.Equal(t, "ana@example.com", result.Pending.Collected["email"])
}

func TestProcessTurnPendingMergeCompletesExecution(t *testing.T) {
	var receivedBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		receivedBody = string(raw)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "evt-1"}`)
	}))
	defer server.Close()

	// Neste turno o modelo extraiu só a data; o e-mail veio do turno anterior
	client := &fakeLLM{
		toolResult: &llm.ToolResult{
			ToolCall: &llm.ToolCall{Name: "book_meeting", Arguments: `{"date": "2026-03-10"}`},
		},
		completeResponse: "Consulta marcada!",
	}
	eng := newTestEngine(client, server.Client())

	intn := &intention.Intention{
		ID:          "int-1",
		ToolName:    "book_meeting",
		Description: "agendar uma consulta",
		Type:        intention.TypeWebhook,
		Method:      http.MethodPost,
		URL:         server.URL + "/book",
		Body:        `{"email": "{{email}}", "date": "{{date}}"}`,
		Fields: []intention.Field{
			{Name: "E-mail", JSONName: "email", Required: true},
			{Name: "Data", JSONName: "date", Required: true},
		},
	}

	result, err := eng.ProcessTurn(context.Background(), &TurnRequest{
		Agent:       turnAgent(),
		Intentions:  []*intention.Intention{intn},
		UserMessage: "dia 10 de março",
		Pending: &PendingState{
			IntentionID: "int-1",
			Collected:   map[string]interface{}{"email": "ana@example.com"},
			Missing:     []string{"date"},
		},
	})

	require.NoError(t, err)
	assert.True(t, result.Executed)
	assert.Nil(t, result.Pending)
	assert.Equal(t, "Consulta marcada!", result.Response)
	assert.JSONEq(t, `{"email":"ana@example.com","date":"2026-03-10"}`, receivedBody)
}

func TestProcessTurnPendingOfOtherIntentionIsIgnored(t *testing.T) {
	client := &fakeLLM{
		toolResult: &llm.ToolResult{
			ToolCall: &llm.ToolCall{Name: "book_meeting", Arguments: `{"date": "2026-03-10"}`},
		},
		completeResponse: "Qual o seu e-mail?",
	}
	eng := newTestEngine(client, nil)

	intn := &intention.Intention{
		ID:          "int-1",
		ToolName:    "book_meeting",
		Description: "agendar uma consulta",
		Type:        intention.TypeWebhook,
		URL:         "http://example.invalid",
		Fields: []intention.Field{
			{Name: "E-mail", JSONName: "email", Required: true},
			{Name: "Data", JSONName: "date", Required: true},
		},
	}

	result, err := eng.ProcessTurn(context.Background(), &TurnRequest{
		Agent:       turnAgent(),
		Intentions:  []*intention.Intention{intn},
		UserMessage: "dia 10 de março",
		Pending: &PendingState{
			IntentionID: "outra-intencao",
			Collected:   map[string]interface{}{"email": "ana@example.com"},
		},
	})

	require.NoError(t, err)
	assert.False(t, result.Executed)
	require.NotNil(t, result.Pending)
	assert.Equal(t, []string{"email"}, result.Pending.Missing)
}

func TestProcessTurnExecutionFailureComposesApology(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"error": {"message": "backend fora do ar"}}`)
	}))
	defer server.Close()

	client := &fakeLLM{
		toolResult: &llm.ToolResult{
			ToolCall: &llm.ToolCall{Name: "book_meeting", Arguments: `{"email": "a@b.com", "date": "2026-03-10"}`},
		},
		completeResponse: "Poxa, tivemos um problema. Pode tentar de novo?",
	}
	eng := newTestEngine(client, server.Client())

	intn := &intention.Intention{
		ID:          "int-1",
		ToolName:    "book_meeting",
		Description: "agendar uma consulta",
		Type:        intention.TypeWebhook,
		Method:      http.MethodPost,
		URL:         server.URL + "/book",
		Fields: []intention.Field{
			{Name: "E-mail", JSONName: "email", Required: true},
			{Name: "Data", JSONName: "date", Required: true},
		},
	}

	result, err := eng.ProcessTurn(context.Background(), &TurnRequest{
		Agent:       turnAgent(),
		Intentions:  []*intention.Intention{intn},
		UserMessage: "marca aí",
	})

	require.NoError(t, err)
	assert.False(t, result.Executed)
	assert.Equal(t, "Poxa, tivemos um problema. Pode tentar de novo?", result.Response)
	assert.Nil(t, result.Pending)
}
